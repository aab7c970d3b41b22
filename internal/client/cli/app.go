// Package cli is the interactive terminal front end of the MedTrack
// client. It wires the config, the local snapshot database, the REST API
// client and the application services together and drives them from a
// small REPL.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mtereshin/medtrack/internal/client/api"
	"github.com/mtereshin/medtrack/internal/client/config"
	"github.com/mtereshin/medtrack/internal/client/notify"
	"github.com/mtereshin/medtrack/internal/client/repositories/snapshot"
	"github.com/mtereshin/medtrack/internal/client/services"
	"github.com/mtereshin/medtrack/internal/client/session"
	"github.com/mtereshin/medtrack/internal/client/storage"
	"github.com/mtereshin/medtrack/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger

	store         *session.Store
	auth          services.AuthService
	reminders     *services.ReminderService
	inventory     *services.InventoryService
	notifications *notify.Bootstrap
	provider      *notify.TerminalProvider

	reader *bufio.Reader
}

// NewApp builds the fully wired application: local database, session
// store, API client with the session-expiry hook, services and the push
// notification lifecycle bound to auth state changes.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	store := session.NewStore(db, log)
	store.Load(ctx)

	app := &App{
		config: cfg,
		log:    log,
		store:  store,
		reader: bufio.NewReader(os.Stdin),
	}

	client, err := api.NewClient(cfg.ServerBaseURL, cfg.RequestTimeout, log,
		api.WithSessionExpiredHook(app.onSessionExpired))
	if err != nil {
		return nil, err
	}

	repo := snapshot.NewSQLiteRepository(db)
	app.provider = notify.NewTerminalProvider(repo, app.confirm)
	app.notifications = notify.NewBootstrap(app.provider, client, repo, log, app.showPush)

	store.Subscribe(func(state session.State) {
		if err := app.notifications.HandleAuthChange(ctx, state.IsAuthenticated); err != nil {
			log.Warn(ctx, "notification bootstrap failed", "error", err)
		}
	})

	app.auth = services.NewAuthService(client, store, log)
	app.reminders = services.NewReminderService(client)
	app.inventory = services.NewInventoryService(client)

	return app, nil
}

// Run probes the server for an existing session, then hands control to
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	a.auth.Bootstrap(ctx)
	if a.isLoggedIn() {
		fmt.Printf("Welcome back, %s\n", a.store.User().Email)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	a.notifications.Teardown(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

func (a *App) getStatus() string {
	if user := a.store.User(); user != nil {
		return fmt.Sprintf("(%s)", user.Email)
	}
	return ""
}

// onSessionExpired runs when the API client gives up on the refresh
// flow: the cookie pair is gone for good and the user has to log in again.
func (a *App) onSessionExpired() {
	_ = a.store.ClearUser(context.Background())
	fmt.Println("Session expired, please log in again.")
}

func (a *App) confirm(question string) (bool, error) {
	return GetConfirm(a.reader, question, os.Stdout)
}

// showPush renders a foreground push message on the terminal.
func (a *App) showPush(msg notify.Message) {
	fmt.Printf("\n[notification] %s: %s\n", msg.Title, msg.Body)
}
