package templates

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/seed"
)

type TemplateCmd struct {
	Show       ShowCmd       `cmd:"" help:"Show the checklist template with ids." default:"1"`
	Import     ImportCmd     `cmd:"" help:"Replace the template from a YAML seed file."`
	Export     ExportCmd     `cmd:"" help:"Write the template as a YAML seed file."`
	Reset      ResetCmd      `cmd:"" help:"Replace the template with the built-in default."`
	AddItem    AddItemCmd    `cmd:"" name:"add-item" help:"Add an item to a section, creating the section if needed."`
	RemoveItem RemoveItemCmd `cmd:"" name:"remove-item" help:"Remove an item from a section."`
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	tmpl, err := sess.Template()
	if err != nil {
		return err
	}
	printTemplate(ctx, tmpl)
	return nil
}

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML seed file."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	sections, err := seed.LoadFile(c.File)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm("Replace your checklist template? Today's checklist is rebuilt on next view.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	tmpl, err := sess.ImportTemplate(context.Background(), sections)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Imported %d section(s), %d item(s)\n", len(tmpl.Sections), tmpl.ItemCount())
	return nil
}

type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	tmpl, err := sess.Template()
	if err != nil {
		return err
	}
	data, err := seed.Export(tmpl)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	if c.Output == "" {
		ctx.Printf("%s", data)
		return nil
	}
	if err := os.WriteFile(c.Output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	ctx.Printf("✓ Template written to %s\n", c.Output)
	return nil
}

type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm("Reset your checklist template to the default?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}
	tmpl, err := sess.ResetTemplate(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("✓ Template reset (%d items)\n", tmpl.ItemCount())
	return nil
}

type AddItemCmd struct {
	Section string `arg:"" help:"Section id or title. A new section is created when nothing matches."`
	Label   string `arg:"" help:"Item label."`
}

func (c *AddItemCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	tmpl, err := sess.AddTemplateItem(context.Background(), c.Section, c.Label)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added %q\n", c.Label)
	printTemplate(ctx, tmpl)
	return nil
}

type RemoveItemCmd struct {
	Section string `arg:"" help:"Section id or title."`
	Item    string `arg:"" help:"Item id (see 'dragonlog template show')."`
}

func (c *RemoveItemCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	tmpl, err := sess.RemoveTemplateItem(context.Background(), c.Section, c.Item)
	if err != nil {
		return err
	}
	ctx.Println("✓ Item removed")
	printTemplate(ctx, tmpl)
	return nil
}

func printTemplate(ctx *cli.Context, tmpl models.Template) {
	if tmpl.IsEmpty() {
		ctx.Println("Template is empty.")
		return
	}
	for _, sec := range tmpl.Sections {
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		ctx.Printf("%s  [%s]\n", title, sec.ID)
		for _, item := range sec.Items {
			ctx.Printf("  - %s  [%s]\n", item.Label, item.ID)
		}
	}
}
