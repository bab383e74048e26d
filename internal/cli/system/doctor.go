package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dragonlog/internal/backup"
	"github.com/julianstephens/dragonlog/internal/cli"
	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/keyring"
	"github.com/julianstephens/dragonlog/internal/utils"
	"github.com/julianstephens/dragonlog/internal/validation"
)

type DoctorCmd struct{}

// checkResult is the outcome of one diagnostic
type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkipped
)

type diagnostic struct {
	name string
	// warnOnly checks never fail the run
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	run     func(ctx *cli.Context) error
}

var diagnostics = []diagnostic{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Checklist data", needsDB: true, run: checkChecklistData},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	for i, d := range diagnostics {
		if d.needsDB && !dbReachable {
			report(ctx, d.name, checkSkipped, nil)
			continue
		}
		err := d.run(ctx)
		switch {
		case err == nil:
			report(ctx, d.name, checkOK, nil)
			if i == 0 {
				dbReachable = true
			}
		case d.warnOnly:
			report(ctx, d.name, checkWarn, err)
		default:
			report(ctx, d.name, checkFail, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func report(ctx *cli.Context, name string, result checkResult, err error) {
	switch result {
	case checkOK:
		ctx.Printf("✓ %s: OK\n", name)
	case checkWarn:
		ctx.Printf("⚠ %s: WARNING\n", name)
		ctx.Printf("   %v\n", err)
	case checkFail:
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
	case checkSkipped:
		ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", name)
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Open(); err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ctx.Store.Ping(pingCtx)
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("schema version %d is newer than supported version %d", st.Current, st.Latest)
	}
	if st.Current == 0 {
		return fmt.Errorf("database has no schema, run 'dragonlog init'")
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if n := len(st.Pending); n > 0 {
		return fmt.Errorf("%d pending migration(s), run 'dragonlog migrate'", n)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return fmt.Errorf("backups are managed by the PostgreSQL server")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	loc, err := ctx.Config.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if today := utils.DateOf(now); !utils.ValidateDate(today) {
		return fmt.Errorf("cannot format today's date in %s", loc)
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

// checkChecklistData validates the active user's template and stored
// checklists. It passes when nobody is logged in.
func checkChecklistData(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) || errors.Is(err, keyring.ErrKeyringUnavailable) {
			return nil
		}
		return err
	}

	v := validation.New()
	tmpl, err := sess.Template()
	if err != nil {
		return err
	}
	result := v.ValidateTemplate(tmpl)
	if err := result.Err(apperrors.ErrMalformed); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	history, err := sess.History()
	if err != nil {
		return err
	}
	for _, date := range history.Dates() {
		result := v.ValidateInstance(history[date], date)
		if err := result.Err(apperrors.ErrMalformed); err != nil {
			return fmt.Errorf("checklist %s: %w", date, err)
		}
	}
	return nil
}
