package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/lockfile"
	"github.com/julianstephens/dragonlog/internal/logger"
	"github.com/julianstephens/dragonlog/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	// Backup after the session loads so a broken database is not snapshotted
	ctx.PerformAutomaticBackup()
	defer holdLock(ctx, "tui")()

	p := tea.NewProgram(tui.NewModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

// holdLock marks this process as holding the database until the returned
// func is called. Failure to write the lock only warns.
func holdLock(ctx *cli.Context, command string) func() {
	lock, err := lockfile.Acquire(ctx.Config.ConfigDir(), command)
	if err != nil {
		logger.Warn("Failed to write lockfile", "error", err)
	}
	return lock.Release
}
