package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ziadkadry99/dynbook/internal/activebook"
	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/config"
	"github.com/ziadkadry99/dynbook/internal/db"
	"github.com/ziadkadry99/dynbook/internal/history"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/preferences"
	"github.com/ziadkadry99/dynbook/internal/scenario"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `dynbook init` to create a config file", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app holds what the commands share: the backend client, local storage and
// the notice sinks.
type app struct {
	cfg     *config.Config
	db      *db.DB
	client  *api.Client
	prefs   *preferences.Store
	notices *notifications.Dispatcher
	history *history.Store

	stopPersist context.CancelFunc
	persisted   <-chan struct{}
}

// openApp loads config, opens the local database and wires the client. The
// active book is saved whenever it changes; call close to flush it.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	theme, err := preferences.ParseTheme(cfg.Theme)
	if err != nil {
		theme = preferences.ThemeLight
	}
	prefs := preferences.NewStore(database, theme)

	holder := activebook.New(nil)
	client := api.NewClient(api.Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.Timeout(),
		RetryCount: cfg.RetryCount,
		UserAgent:  cfg.UserAgent + "/" + Version,
		Debug:      verbose,
	}, holder)

	pctx, stop := context.WithCancel(ctx)
	a := &app{
		cfg:         cfg,
		db:          database,
		client:      client,
		prefs:       prefs,
		notices:     notifications.NewDispatcher(notifications.NewStore(database), notifications.NewWriterNotifier(os.Stderr)),
		history:     history.NewStore(database),
		stopPersist: stop,
		persisted:   preferences.PersistActiveBook(pctx, prefs, holder),
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Backend: %s\nDatabase: %s\n", cfg.APIURL, cfg.DatabasePath())
	}
	return a, nil
}

// close flushes the active book and closes the database.
func (a *app) close() {
	a.stopPersist()
	<-a.persisted
	a.db.Close()
}

// session creates a scenario session that records generated stories.
func (a *app) session(bookID string) *scenario.Session {
	s := scenario.NewSession(a.client, a.notices, bookID)
	s.SetRecorder(a.history)
	return s
}

// bookIDArg returns args[0] or, when absent, the saved active book.
func (a *app) bookIDArg(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	id, err := a.prefs.ActiveBookID(ctx)
	if err != nil {
		return "", fmt.Errorf("reading active book: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("no book given and no active book; upload one with `dynbook upload <file>`")
	}
	return id, nil
}
