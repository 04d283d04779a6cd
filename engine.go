package bonding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/curve"
	"github.com/xraph/bonding/directory"
	"github.com/xraph/bonding/plugin"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/token"
	"github.com/xraph/bonding/types"
)

// TracerName is the instrumentation name of the engine's spans.
const TracerName = "github.com/xraph/bonding"

// Engine is the bonding engine. It owns the bond, escrow and issuance
// ledgers and consults the provider directory and value ledger for pricing
// and settlement.
type Engine struct {
	store     store.Store
	directory directory.Directory
	tokens    token.Ledger
	plugins   *plugin.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// mu serializes every state-changing operation.
	mu sync.Mutex

	idMu       sync.RWMutex
	dispatcher string
	arbiter    string
}

// New creates a new Engine over the given store, provider directory and
// value ledger.
func New(s store.Store, dir directory.Directory, tokens token.Ledger, opts ...Option) (*Engine, error) {
	switch {
	case s == nil:
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	case dir == nil:
		return nil, fmt.Errorf("%w: directory is required", ErrInvalidInput)
	case tokens == nil:
		return nil, fmt.Errorf("%w: value ledger is required", ErrInvalidInput)
	}

	e := &Engine{
		store:     s,
		directory: dir,
		tokens:    tokens,
		plugins:   plugin.NewRegistry(),
		logger:    slog.Default(),
		tracer:    otel.Tracer(TracerName),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithDispatcher fixes the dispatcher identity at construction. An empty
// identity leaves it unset.
func WithDispatcher(identity string) Option {
	return func(e *Engine) {
		e.dispatcher = identity
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithClock overrides the time source used for receipts and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Plugins returns the engine's plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Store returns the engine's store.
func (e *Engine) Store() store.Store { return e.store }

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("bonding engine started",
		"plugins", e.plugins.Count(),
		"dispatcher_set", e.Dispatcher() != "",
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	e.logger.Info("bonding engine stopped")
	return e.store.Close()
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// curveFor resolves the curve for (provider, specifier), telling an
// unregistered provider apart from a missing curve.
func (e *Engine) curveFor(ctx context.Context, provider, specifier string) (curve.Curve, error) {
	registered, err := e.directory.IsRegistered(ctx, provider, specifier)
	if err != nil {
		return curve.Curve{}, fmt.Errorf("bonding: directory lookup: %w", err)
	}
	if !registered {
		return curve.Curve{}, ErrProviderNotReady
	}

	c, ok, err := e.directory.Curve(ctx, provider, specifier)
	if err != nil {
		return curve.Curve{}, fmt.Errorf("bonding: directory lookup: %w", err)
	}
	if !ok {
		return curve.Curve{}, ErrUninitializedCurve
	}
	return c, nil
}

// load returns the stored account for key, or a zero account if none exists.
func (e *Engine) load(ctx context.Context, key account.Key) (*account.Account, error) {
	a, err := e.store.GetAccount(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return account.New(key), nil
	}
	if err != nil {
		return nil, fmt.Errorf("bonding: load account %s: %w", key, err)
	}
	return a, nil
}

// save stamps and persists the accounts in one atomic write.
func (e *Engine) save(ctx context.Context, accounts ...*account.Account) error {
	now := e.now()
	for _, a := range accounts {
		if a.IsNew() {
			a.Entity = types.NewEntity(now)
		} else {
			a.Touch(now)
		}
	}
	return e.store.SaveAccounts(ctx, accounts...)
}

func (e *Engine) startSpan(ctx context.Context, op string, key account.Key, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("bonding.holder", key.Holder),
		attribute.String("bonding.provider", key.Provider),
		attribute.String("bonding.specifier", key.Specifier),
	)
	return e.tracer.Start(ctx, "bonding."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// validateKey refuses empty parts and parts containing the ':' that
// account.Key.String joins them with, so a rendered key names one account.
func validateKey(holderField string, key account.Key) error {
	var errs MultiError
	for _, p := range []struct{ field, value string }{
		{holderField, key.Holder},
		{"provider", key.Provider},
		{"specifier", key.Specifier},
	} {
		switch {
		case p.value == "":
			errs.Add(ValidationError{Field: p.field, Message: "must not be empty"})
		case strings.Contains(p.value, ":"):
			errs.Add(ValidationError{Field: p.field, Message: "must not contain ':'"})
		}
	}
	return errs.ErrOrNil()
}

func validatePair(provider, specifier string) error {
	return validateKey("holder", account.NewKey("-", provider, specifier))
}

// add returns a+b or ErrOverflow.
func add(a, b uint64) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
