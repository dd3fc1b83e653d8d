package cmd

import (
	"github.com/spf13/cobra"

	"github.com/crewdeck/crewctl/internal/cache"
	"github.com/crewdeck/crewctl/internal/config"
	"github.com/crewdeck/crewctl/internal/connect"
	"github.com/crewdeck/crewctl/internal/log"
	"github.com/crewdeck/crewctl/internal/platform"
	"github.com/crewdeck/crewctl/internal/resource"
	"github.com/crewdeck/crewctl/internal/session"
)

// app wires the full stack for one command invocation: configuration,
// logger, result cache, session store, request client, and the per-resource
// accessors. One instance per invocation, owned by the command that built
// it, with no ambient globals.
type app struct {
	cfg    config.Config
	logger *log.Logger

	cache   *cache.Cache
	session *session.Store
	client  *platform.Client

	workers      *resource.Workers
	activity     *resource.Activity
	integrations *resource.Integrations
	flow         *connect.Flow
}

// newApp builds the application stack. The client carries the persisted
// session token, if any, and routes every authorization failure through the
// session store so all consumers observe the same cleared state.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = config.Path()
	}

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		return nil, err
	}

	logConfig := log.DefaultConfig()
	logConfig.Level = log.ParseLevel(cfg.LogLevel)
	logConfig.Output = log.OutputStderr()
	logger := log.New(logConfig)

	resultCache := cache.New(
		cache.WithFreshFor(cfg.FreshFor),
		cache.WithLogger(logger),
	)

	sessionOpts := []session.Option{
		session.WithCache(resultCache),
		session.WithLogger(logger),
	}
	if cfg.TokenPassphrase != "" {
		sessionOpts = append(sessionOpts, session.WithPassphrase(cfg.TokenPassphrase))
	}
	store := session.NewStore(config.SessionPath(), sessionOpts...)

	client := platform.NewClient(cfg.APIURL,
		platform.WithTimeout(cfg.RequestTimeout),
		platform.WithLogger(logger),
		platform.WithAuthErrorHandler(store.HandleAuthError),
	)
	if token := store.Token(); token != "" {
		client = client.WithToken(token)
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		cache:        resultCache,
		session:      store,
		client:       client,
		workers:      resource.NewWorkers(client, resultCache),
		activity:     resource.NewActivity(client, resultCache, logger),
		integrations: resource.NewIntegrations(client, resultCache),
		flow: connect.NewFlow(client,
			connect.WithLogger(logger),
			connect.WithRedirectAfter(cfg.RedirectAfter)),
	}, nil
}
