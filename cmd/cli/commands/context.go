package commands

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/clients/gmailclient"
	"github.com/jakechorley/referee-designation/pkg/clients/natsclient"
	"github.com/jakechorley/referee-designation/pkg/clients/sheetsclient"
	"github.com/jakechorley/referee-designation/pkg/core/services"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// Migrator applies pending schema migrations
type Migrator interface {
	RunMigrations(ctx context.Context) ([]string, error)
}

// AppContext holds the application dependencies shared across all commands.
// Google and NATS clients are created on first use so commands that do not
// need them never start an OAuth flow or dial the broker.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Secrets  *config.Secrets
	Database db.Database
	Migrator Migrator
	Clock    clockwork.Clock
	Logger   *zap.Logger
	Ctx      context.Context

	sheetsClient *sheetsclient.Client
	natsClient   *natsclient.Client
}

// SheetsClient returns the Sheets client, authorising with Google if needed
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// NATSClient returns the NATS client, connecting on first use
func (app *AppContext) NATSClient() (*natsclient.Client, error) {
	if app.natsClient != nil {
		return app.natsClient, nil
	}

	app.Logger.Info("Connecting to NATS", zap.String("url", app.Secrets.NATSURL))
	client, err := natsclient.Connect(app.Secrets.NATSURL, app.Logger)
	if err != nil {
		return nil, err
	}
	app.natsClient = client
	return client, nil
}

// OfferDispatcher returns the sender for the configured notification channel.
// The "none" channel returns nil, which marks offers notified without sending.
func (app *AppContext) OfferDispatcher() (services.OfferDispatcher, error) {
	switch app.Cfg.NotificationChannel {
	case config.ChannelEmail:
		sheets, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
		if err != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		// The Sheets token carries the gmail.send scope too
		app.Logger.Info("Initializing gmail client")
		client, err := gmailclient.NewClient(app.Ctx, oauthCfg, sheets.Token(), app.Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail client: %w", err)
		}
		return client, nil
	case config.ChannelNATS:
		return app.NATSClient()
	default:
		return nil, nil
	}
}

// Close releases connections opened by the commands
func (app *AppContext) Close() {
	if app.natsClient != nil {
		app.natsClient.Close()
	}
}
