// Package account holds the commands that sign users in and out of the CLI.
// The signed-in user id is remembered in the OS keyring.
package account

import (
	"context"
	"errors"

	"github.com/julianstephens/dragonlog/internal/auth"
	"github.com/julianstephens/dragonlog/internal/cli"
	"github.com/julianstephens/dragonlog/internal/keyring"
	"github.com/julianstephens/dragonlog/internal/models"
	"github.com/julianstephens/dragonlog/internal/progress"
)

type RegisterCmd struct {
	ID          string `arg:"" help:"User id (letters, digits, dot, underscore, hyphen)."`
	Password    string `help:"Password. Prompted when omitted." env:"DRAGONLOG_PASSWORD"`
	GoalDays    int    `help:"Streak goal in days. Defaults to DRAGONLOG_DEFAULT_GOAL_DAYS."`
	Email       string `help:"Optional email address."`
	DisplayName string `help:"Optional display name."`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Choose a password", true); err != nil {
			return err
		}
	}
	goal := c.GoalDays
	if goal == 0 {
		goal = ctx.Config.DefaultGoalDays
	}

	sess, err := ctx.NewSession()
	if err != nil {
		return err
	}
	user, err := sess.Register(context.Background(), auth.RegisterRequest{
		ID:          c.ID,
		Password:    password,
		GoalDays:    goal,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	})
	if err != nil {
		return err
	}

	remember(ctx, user.ID)
	ctx.Printf("✓ Registered %s (goal: %d days)\n", user.Name(), user.GoalDays)
	return nil
}

type LoginCmd struct {
	ID       string `arg:"" optional:"" help:"User id. Prompted when omitted."`
	Password string `help:"Password. Prompted when omitted." env:"DRAGONLOG_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	id := c.ID
	if id == "" {
		var err error
		if id, err = cli.PromptText("User id"); err != nil {
			return err
		}
	}
	password := c.Password
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Password", false); err != nil {
			return err
		}
	}

	sess, err := ctx.NewSession()
	if err != nil {
		return err
	}
	user, err := sess.Login(context.Background(), id, password)
	if err != nil {
		return err
	}

	remember(ctx, user.ID)
	ctx.Printf("✓ Logged in as %s\n", user.Name())
	return nil
}

// remember stores the session user. Without a keyring the user has to
// pass --user on later commands.
func remember(ctx *cli.Context, userID string) {
	if err := keyring.SetSessionUser(userID); err != nil {
		ctx.Printf("⚠️  Could not remember the session: %v\n", err)
		ctx.Printf("   Pass --user %s or set DRAGONLOG_USER on later commands.\n", userID)
	}
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err == nil {
		sess.Logout(context.Background())
	}
	if err := keyring.ClearSessionUser(); err != nil && !errors.Is(err, keyring.ErrKeyringUnavailable) {
		return err
	}
	ctx.Println("✓ Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	user, _ := sess.User()
	proj, err := sess.Progress(context.Background())
	if err != nil {
		return err
	}
	printProfile(ctx, user, proj)
	return nil
}

func printProfile(ctx *cli.Context, user models.UserProfile, proj progress.Projection) {
	ctx.Printf("%s %s\n", proj.Info.Icon, user.Name())
	if user.DisplayName != "" {
		ctx.Printf("  id:       %s\n", user.ID)
	}
	if user.Email != "" {
		ctx.Printf("  email:    %s\n", user.Email)
	}
	ctx.Printf("  goal:     %d days\n", user.GoalDays)
	ctx.Printf("  streak:   %d days (%s)\n", proj.Streak, proj.Info.Title)
	ctx.Printf("  joined:   %s\n", user.CreatedAt.Format("2006-01-02"))
	if user.LastChecklistDate != "" {
		ctx.Printf("  last day: %s\n", user.LastChecklistDate)
	}
}
