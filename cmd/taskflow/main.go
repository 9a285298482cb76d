package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/taskflow/internal/cli"
	"github.com/alexanderramin/taskflow/internal/config"
	"github.com/alexanderramin/taskflow/internal/db"
	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/alexanderramin/taskflow/internal/logging"
	"github.com/alexanderramin/taskflow/internal/notify"
	"github.com/alexanderramin/taskflow/internal/remote"
	"github.com/alexanderramin/taskflow/internal/repository"
	"github.com/alexanderramin/taskflow/internal/service"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
)

func main() {
	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
		},
	}

	var cleanup []func()
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	app.Bootstrap = func(opts cli.GlobalOptions) error {
		closers, err := wire(app, opts)
		cleanup = append(cleanup, closers...)
		return err
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeAll()
		os.Exit(1)
	}
	closeAll()
}

// wire loads configuration and builds the services behind app.
func wire(app *cli.App, opts cli.GlobalOptions) ([]func(), error) {
	var closers []func()

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = os.Getenv("TASKFLOW_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.yaml")
	}

	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		return closers, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if opts.Operator != "" {
		cfg.OperatorID = opts.Operator
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return closers, err
	}

	log, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File, os.Stderr)
	if err != nil {
		return closers, err
	}
	closers = append(closers, closeLog)

	client := remote.NewClient(remote.Config{
		SprintsURL:       cfg.Services.Sprints,
		TasksURL:         cfg.Services.Tasks,
		ProjectsURL:      cfg.Services.Projects,
		NotificationsURL: cfg.Services.Notifications,
		Token:            cfg.APIToken,
		Timeout:          cfg.Timeout(),
		MaxRetries:       cfg.MaxRetries,
	}, remote.NewLogObserver(log))

	// The journal is optional: closures still run when it cannot be opened.
	var (
		runs repository.RunRepo
		uow  db.UnitOfWork
	)
	if cfg.JournalPath != "" {
		database, err := db.OpenDB(cfg.JournalPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.JournalPath).Msg("journal unavailable")
		} else {
			closers = append(closers, func() { closeDB(database) })
			runs = repository.NewSQLiteRunRepo(database)
			uow = db.NewSQLiteUnitOfWork(database)
		}
	}

	ids := identity.Static(cfg.OperatorID)
	observer := service.NewLogUseCaseObserver(log)

	app.Closure = service.NewSprintClosureService(
		client, ids, runs, uow,
		notify.NewNotifier(client, log),
		log,
		observer,
	)
	app.Tasks = service.NewTaskQueryService(client, ids, observer)
	app.Projects = service.NewProjectService(client, ids, observer)
	app.DefaultProject = cfg.Project

	if tag, err := language.Parse(cfg.Locale); err == nil {
		app.Locale = tag
	}
	return closers, nil
}

func closeDB(database *sql.DB) {
	_ = database.Close()
}
