package checklist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/dragonlog/internal/cli"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/session"
)

type TodayCmd struct {
	Date string `help:"Show the checklist for this day (YYYY-MM-DD) instead of today."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	date := dateOrToday(sess, c.Date)
	inst, err := sess.EnsureDailyChecklist(context.Background(), date)
	if err != nil {
		return err
	}
	printInstance(ctx, inst, date == sess.Today())
	return nil
}

type CheckCmd struct {
	Section string `arg:"" help:"Section id, title or 1-based position."`
	Item    string `arg:"" help:"Item id, label or 1-based position within the section."`
	Date    string `help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	date := dateOrToday(sess, c.Date)
	inst, err := sess.EnsureDailyChecklist(context.Background(), date)
	if err != nil {
		return err
	}

	sectionID, itemID, err := Resolve(inst, c.Section, c.Item)
	if err != nil {
		return err
	}
	updated, changed, err := sess.ToggleItem(context.Background(), date, sectionID, itemID)
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("%w: nothing toggled", apperrors.ErrNotFound)
	}

	si := models.FindSection(updated.Sections, sectionID)
	item := updated.Sections[si].Items[updated.Sections[si].FindItem(itemID)]
	ctx.Printf("%s %s\n", checkbox(item.Checked), item.Label)
	if updated.IsComplete() {
		ctx.Printf("🎉 Checklist for %s is complete!\n", date)
	}
	return nil
}

func dateOrToday(sess *session.Session, date string) string {
	if date == "" || date == "today" {
		return sess.Today()
	}
	return date
}

// Resolve finds the section and item a user refers to. Sections match by
// id, case-insensitive title or 1-based position; items by id, label or
// position within the section.
func Resolve(inst models.DailyInstance, sectionRef, itemRef string) (string, string, error) {
	si := matchRef(len(inst.Sections), sectionRef, func(i int) (string, string) {
		return inst.Sections[i].ID, inst.Sections[i].Title
	})
	if si < 0 {
		return "", "", fmt.Errorf("%w: no section %q on %s", apperrors.ErrNotFound, sectionRef, inst.Date)
	}
	sec := inst.Sections[si]
	ii := matchRef(len(sec.Items), itemRef, func(i int) (string, string) {
		return sec.Items[i].ID, sec.Items[i].Label
	})
	if ii < 0 {
		return "", "", fmt.Errorf("%w: no item %q in section %q", apperrors.ErrNotFound, itemRef, sectionRef)
	}
	return sec.ID, sec.Items[ii].ID, nil
}

func matchRef(n int, ref string, at func(int) (id, name string)) int {
	ref = strings.TrimSpace(ref)
	for i := 0; i < n; i++ {
		if id, _ := at(i); id == ref {
			return i
		}
	}
	for i := 0; i < n; i++ {
		if _, name := at(i); name != "" && strings.EqualFold(name, ref) {
			return i
		}
	}
	if pos, err := strconv.Atoi(ref); err == nil && pos >= 1 && pos <= n {
		return pos - 1
	}
	return -1
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func printInstance(ctx *cli.Context, inst models.DailyInstance, today bool) {
	header := inst.Date
	if today {
		header += " (today)"
	}
	total, checked := inst.Counts()
	ctx.Printf("%s  %d/%d\n", header, checked, total)

	for si, sec := range inst.Sections {
		title := sec.Title
		if title == "" {
			title = "Untitled"
		}
		ctx.Printf("\n%d. %s\n", si+1, title)
		for ii, item := range sec.Items {
			ctx.Printf("   %d %s %s\n", ii+1, checkbox(item.Checked), item.Label)
		}
	}
}
