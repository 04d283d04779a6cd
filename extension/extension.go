// Package extension provides the Forge extension adapter for the bonding
// engine.
//
// It implements the forge.Extension interface to integrate the engine
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions,
// via YAML configuration files under "extensions.bonding" or "bonding"
// keys, or from the environment with LoadEnvConfig.
package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/api"
	"github.com/xraph/bonding/directory"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/store/leveldb"
	"github.com/xraph/bonding/store/memory"
	"github.com/xraph/bonding/store/redis"
	"github.com/xraph/bonding/token"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "bonding"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Bonding-curve engine for provider dots"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the bonding engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *bonding.Engine
	handler    *api.Handler
	store      store.Store
	directory  directory.Directory
	tokens     token.Ledger
	engineOpts []bonding.Option
	apiOpts    []api.Option
}

// New creates a new bonding Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying engine. It is nil until Register is called.
func (e *Extension) Engine() *bonding.Engine { return e.engine }

// Handler returns the HTTP handler mounted under the configured base path,
// or nil when routes are disabled or Register has not run.
func (e *Extension) Handler() http.Handler {
	if e.handler == nil {
		return nil
	}
	return e.handler.Router(e.config.BasePath)
}

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.build(context.Background()); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*bonding.Engine, error) {
		return e.engine, nil
	}); err != nil {
		return err
	}

	if e.handler == nil {
		return nil
	}
	return vessel.Provide(fapp.Container(), func() (*api.Handler, error) {
		return e.handler, nil
	})
}

// build resolves collaborators from options and config and constructs the
// engine and, unless disabled, its HTTP handler.
func (e *Extension) build(ctx context.Context) error {
	if e.store == nil {
		s, err := openStore(ctx, e.config)
		if err != nil {
			return err
		}
		e.store = s
	}
	if e.directory == nil {
		e.directory = directory.NewRegistry()
	}
	if e.tokens == nil {
		e.tokens = token.NewMemory("")
	}

	eng, err := bonding.New(e.store, e.directory, e.tokens, e.buildEngineOpts()...)
	if err != nil {
		return err
	}
	e.engine = eng

	if !e.config.DisableRoutes {
		e.handler = api.New(eng, nil, e.apiOpts...)
	}
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("bonding: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("bonding: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs bonding.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []bonding.Option {
	opts := make([]bonding.Option, 0, len(e.engineOpts)+1)

	if e.config.Dispatcher != "" {
		opts = append(opts, bonding.WithDispatcher(e.config.Dispatcher))
	}

	// Pass-through options come last so they can override config.
	opts = append(opts, e.engineOpts...)

	return opts
}

// openStore opens the backend named by cfg.Backend.
func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendLevelDB:
		s, err := leveldb.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := redis.Open(ctx, cfg.RedisURL, redis.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return nil, fmt.Errorf("bonding: open redis store: %w", err)
		}
		return s, nil
	default:
		return memory.New(), nil
	}
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("bonding: configuration is required but not found in config files; " +
				"ensure 'extensions.bonding' or 'bonding' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("bonding: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("backend", e.config.Backend),
		forge.F("dispatcher_set", e.config.Dispatcher != ""),
	)

	return e.config.Validate()
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.bonding", "bonding"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("bonding: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("bonding: loaded config from file",
			forge.F("key", key),
		)
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.Backend == "" {
		cfg.Backend = defaults.Backend
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = defaults.RedisPrefix
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&yamlConfig.BasePath, programmaticConfig.BasePath)
	fill(&yamlConfig.Dispatcher, programmaticConfig.Dispatcher)
	fill(&yamlConfig.Backend, programmaticConfig.Backend)
	fill(&yamlConfig.LevelDBPath, programmaticConfig.LevelDBPath)
	fill(&yamlConfig.RedisURL, programmaticConfig.RedisURL)
	fill(&yamlConfig.RedisPrefix, programmaticConfig.RedisPrefix)

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
