// Package app wires the application together: configuration, database,
// Genkit, tools and the chat agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropdawn/dropdawn/db"
	"github.com/dropdawn/dropdawn/internal/chat"
	"github.com/dropdawn/dropdawn/internal/config"
	"github.com/dropdawn/dropdawn/internal/conversation"
	"github.com/dropdawn/dropdawn/internal/hosting"
	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/provider"
	"github.com/dropdawn/dropdawn/internal/quota"
	"github.com/dropdawn/dropdawn/internal/site"
	"github.com/dropdawn/dropdawn/internal/tools"
)

// App holds all initialized components.
type App struct {
	Config        *config.Config
	Logger        log.Logger
	Pool          *pgxpool.Pool
	Genkit        *genkit.Genkit
	Conversations *conversation.Store
	Quota         *quota.Limiter
	Agent         *chat.Agent
}

// Setup initializes the full application. Components are constructed in
// dependency order; any failure tears down what was already opened.
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	pool, err := db.Connect(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.Migrate(migrationURL(cfg.PostgresURL())); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	plugins, compat := provider.Plugins()
	if len(plugins) == 0 {
		logger.Warn("no provider API keys configured, chat requests will be refused")
	}
	g, err := genkit.Init(ctx, genkit.WithPlugins(plugins...))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing genkit: %w", err)
	}
	provider.DefineModels(g, compat)

	hostingToken := config.HostingToken()
	hostingClient := hosting.NewClient(hostingToken, logger)
	poller := hosting.NewPoller(hostingClient)
	sites := site.New(hostingToken, hostingClient, poller, logger)

	kit, err := tools.NewKit(tools.KitConfig{
		Sites:        sites,
		SearchAPIKey: config.SearchAPIKey(),
		Logger:       logger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating tool kit: %w", err)
	}
	if err := kit.Register(g); err != nil {
		pool.Close()
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	conversations, err := conversation.NewStore(pool, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating conversation store: %w", err)
	}

	limiter, err := quota.NewLimiter(pool, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating quota limiter: %w", err)
	}

	agent, err := chat.New(chat.Config{
		Genkit:        g,
		Conversations: conversations,
		Quota:         limiter,
		Tools:         kit.All(g),
		Logger:        logger,
		MaxTurns:      cfg.MaxTurns,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating chat agent: %w", err)
	}

	logger.Info("application initialized",
		"providers", len(plugins),
		"tools", len(tools.Names()),
	)

	return &App{
		Config:        cfg,
		Logger:        logger,
		Pool:          pool,
		Genkit:        g,
		Conversations: conversations,
		Quota:         limiter,
		Agent:         agent,
	}, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Close()
	}
	return nil
}

// migrationURL rewrites a postgres:// URL for the migrate pgx v5 driver.
func migrationURL(postgresURL string) string {
	return "pgx5://" + strings.TrimPrefix(postgresURL, "postgres://")
}
