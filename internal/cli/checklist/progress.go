package checklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/dragonlog/internal/cli"
)

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	proj, err := sess.Progress(context.Background())
	if err != nil {
		return err
	}
	longest, err := sess.LongestStreak()
	if err != nil {
		return err
	}

	ctx.Printf("%s %s\n", proj.Info.Icon, proj.Info.Title)
	ctx.Printf("   %s\n\n", proj.Info.Description)
	ctx.Printf("Streak:  %d / %d days (%.0f%%)\n", proj.Streak, proj.GoalDays, proj.Ratio*100)
	ctx.Printf("Longest: %d days\n", longest)
	if left := proj.DaysRemaining(); left > 0 {
		ctx.Printf("%d more day(s) to reach your goal.\n", left)
	} else {
		ctx.Println("Goal reached!")
	}
	return nil
}

type StatsCmd struct {
	Limit int `help:"Number of days to show (0 for all)." default:"14"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	stats, err := sess.Statistics(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		ctx.Println("No statistics yet. Check off an item first.")
		return nil
	}

	ctx.Printf("%-10s  %-7s  %-5s  %s\n", "DATE", "ITEMS", "RATE", "DONE")
	for _, s := range stats {
		done := ""
		if s.Completed {
			done = "✓"
		}
		ctx.Printf("%-10s  %3d/%-3d  %4.0f%%  %s\n", s.Date, s.ItemsChecked, s.ItemsTotal, s.CompletionRate*100, done)
	}
	return nil
}

type LogsCmd struct {
	Limit int `help:"Number of entries to show." default:"80"`
}

func (c *LogsCmd) Run(ctx *cli.Context) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	entries, err := sess.Logs(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No activity yet.")
		return nil
	}
	for _, e := range entries {
		ctx.Printf("%s  %-5s  %-20s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			strings.ToUpper(string(e.Level)),
			e.Action,
			e.Message,
		)
	}
	return nil
}
