package system

import (
	"fmt"

	"github.com/julianstephens/dragonlog/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Open(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	before, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if err := ctx.Store.Migrate(func(msg string) { ctx.Println(msg) }); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if len(before.Pending) == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", len(before.Pending))
	}
	return nil
}
