package extension

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/api"
	"github.com/xraph/bonding/audit_hook"
	"github.com/xraph/bonding/directory"
	"github.com/xraph/bonding/observability"
	"github.com/xraph/bonding/plugin"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/token"
)

// Option configures the bonding Forge extension.
type Option func(*Extension)

// WithStore sets the store for the engine. It takes precedence over the
// configured backend.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithDirectory sets the provider directory the engine prices against.
func WithDirectory(d directory.Directory) Option {
	return func(e *Extension) {
		e.directory = d
	}
}

// WithTokenLedger sets the value ledger bonds are settled through.
func WithTokenLedger(l token.Ledger) Option {
	return func(e *Extension) {
		e.tokens = l
	}
}

// WithEngineOption passes a bonding.Option through to the underlying engine.
func WithEngineOption(opt bonding.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers an engine plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, bonding.WithPlugin(p))
	}
}

// WithMetrics registers the metrics plugin, exporting to reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(reg)))
}

// WithAuditRecorder registers the audit plugin, sending events to r.
func WithAuditRecorder(r audithook.Recorder, opts ...audithook.Option) Option {
	return WithPlugin(audithook.New(r, opts...))
}

// WithHandlerOptions passes options to the HTTP handler. Hosts use it to
// install authentication with api.WithMiddleware or api.WithIdentity;
// without either, every escrow and release over HTTP is unauthorized.
func WithHandlerOptions(opts ...api.Option) Option {
	return func(e *Extension) {
		e.apiOpts = append(e.apiOpts, opts...)
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents the HTTP handler from being built.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for bonding routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithDispatcher fixes the dispatcher identity at startup. It is the only
// way to set it; the HTTP routes never do.
func WithDispatcher(identity string) Option {
	return func(e *Extension) { e.config.Dispatcher = identity }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
