package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"habit-battle-system/logger"
	"habit-battle-system/repository"
	"habit-battle-system/services"
	"habit-battle-system/workers"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Context is handed to every command's Run.
type Context struct {
	Ctx  context.Context
	Repo *repository.GormRepository
}

type MigrateCmd struct{}

func (MigrateCmd) Run(c *Context) error {
	if err := c.Repo.AutoMigrate(); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}

type SweepCmd struct{}

func (SweepCmd) Run(c *Context) error {
	n, err := services.NewBattleService(c.Repo, services.RealClock{}).SweepAll(c.Ctx)
	if err != nil {
		return err
	}
	fmt.Printf("completed %d expired battle record(s)\n", n)
	return nil
}

type RepairCmd struct {
	Habits bool `help:"Also rewrite every habit so legacy grant shapes are stored canonically."`
}

func (r RepairCmd) Run(c *Context) error {
	users := services.NewUserService(c.Repo, services.NewBcryptHasher(0), services.RealClock{})
	stats, err := workers.NewUserRepairWorker(users, 0).RunOnce(c.Ctx, r.Habits)
	if err != nil {
		return err
	}
	fmt.Printf("users=%d repaired=%d habits_rewritten=%d\n", stats.Users, stats.Repaired, stats.HabitsRewritten)
	return nil
}

var CLI struct {
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL" required:""`
	LogLevel    string `help:"Log level." env:"LOG_LEVEL" default:"info"`

	Migrate MigrateCmd `cmd:"" help:"Create or update the users and habits tables."`
	Sweep   SweepCmd   `cmd:"" help:"Complete every expired active battle once."`
	Repair  RepairCmd  `cmd:"" help:"Run one user repair pass."`
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI,
		kong.Name("habitctl"),
		kong.Description("Operator commands for the habit battle service"),
		kong.UsageOnError(),
	)

	if err := logger.Init(logger.Config{Level: CLI.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := repository.OpenPostgres(CLI.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := kctx.Run(&Context{Ctx: ctx, Repo: repo}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
