// Package api exposes the bonding engine over HTTP with a chi router.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/bonding"
)

// Engine is the subset of *bonding.Engine the handlers call.
type Engine interface {
	Bond(ctx context.Context, holder, provider, specifier string, offered uint64) (*bonding.Receipt, error)
	Unbond(ctx context.Context, holder, provider, specifier string, quantity uint64) (*bonding.Receipt, error)
	Escrow(ctx context.Context, caller, subscriber, provider, specifier string, quantity uint64) (bonding.Outcome, error)
	Release(ctx context.Context, caller, subscriber, provider, specifier string, quantity uint64) (bonding.Outcome, error)
	Dispatcher() string

	Dots(ctx context.Context, holder, provider, specifier string) (uint64, error)
	ValueBound(ctx context.Context, holder, provider, specifier string) (uint64, error)
	PendingEscrow(ctx context.Context, subscriber, provider, specifier string) (uint64, error)
	DotsIssued(ctx context.Context, subscriber, provider, specifier string) (uint64, error)

	CalcValueForDots(ctx context.Context, provider, specifier string, dots uint64) (uint64, error)
	CalcDotsForValue(ctx context.Context, provider, specifier string, value uint64) (valueUsed, dots uint64, err error)
}

var _ Engine = (*bonding.Engine)(nil)

// Handler serves the engine's operations as JSON endpoints.
//
// Escrow and release act as the caller named by the handler's IdentityFunc,
// never as anyone named in the request body. The dispatcher is configured
// on the engine and cannot be set over HTTP.
type Handler struct {
	engine     Engine
	logger     *slog.Logger
	identity   IdentityFunc
	middleware []func(http.Handler) http.Handler
}

// New constructs a handler over engine. Without WithIdentity the caller is
// read from the request context with ContextIdentity.
func New(engine Engine, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{engine: engine, logger: logger, identity: ContextIdentity}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/bond", h.HandleBond)
	r.Post("/unbond", h.HandleUnbond)
	r.Post("/escrow", h.HandleEscrow)
	r.Post("/release", h.HandleRelease)
	r.Get("/dispatcher", h.HandleGetDispatcher)

	r.Get("/dots", h.balance("holder", Engine.Dots))
	r.Get("/value-bound", h.balance("holder", Engine.ValueBound))
	r.Get("/pending-escrow", h.balance("subscriber", Engine.PendingEscrow))
	r.Get("/dots-issued", h.balance("subscriber", Engine.DotsIssued))

	r.Get("/quote/value", h.HandleQuoteValue)
	r.Get("/quote/dots", h.HandleQuoteDots)
}

// Router returns a standalone router with the endpoints mounted under
// basePath ("" or "/" mounts them at the root).
func (h *Handler) Router(basePath string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(h.middleware...)
	if basePath == "" || basePath == "/" {
		h.Register(r)
		return r
	}
	r.Route(basePath, h.Register)
	return r
}

// HandleBond handles POST /bond.
func (h *Handler) HandleBond(w http.ResponseWriter, r *http.Request) {
	var req BondRequest
	if !decode(w, r, &req) {
		return
	}
	receipt, err := h.engine.Bond(r.Context(), req.Holder, req.Provider, req.Specifier, req.Value)
	if err != nil {
		h.fail(w, r, "bond", err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// HandleUnbond handles POST /unbond.
func (h *Handler) HandleUnbond(w http.ResponseWriter, r *http.Request) {
	var req UnbondRequest
	if !decode(w, r, &req) {
		return
	}
	receipt, err := h.engine.Unbond(r.Context(), req.Holder, req.Provider, req.Specifier, req.Quantity)
	if err != nil {
		h.fail(w, r, "unbond", err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// HandleEscrow handles POST /escrow. Rejections are reported in the
// outcome field with status 200; a request without an authenticated caller
// is rejected as unauthorized.
func (h *Handler) HandleEscrow(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "escrow", h.engine.Escrow)
}

// HandleRelease handles POST /release.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, "release", h.engine.Release)
}

type settleFunc func(ctx context.Context, caller, subscriber, provider, specifier string, quantity uint64) (bonding.Outcome, error)

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, op string, fn settleFunc) {
	var req EscrowRequest
	if !decode(w, r, &req) {
		return
	}
	caller, ok := h.identity(r)
	if !ok {
		caller = ""
	}
	outcome, err := fn(r.Context(), caller, req.Subscriber, req.Provider, req.Specifier, req.Quantity)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, OutcomeResponse{Outcome: outcome})
}

// HandleGetDispatcher handles GET /dispatcher. It reports whether a
// dispatcher is configured without disclosing who it is.
func (h *Handler) HandleGetDispatcher(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, DispatcherResponse{Set: h.engine.Dispatcher() != ""})
}

type balanceFunc func(e Engine, ctx context.Context, holder, provider, specifier string) (uint64, error)

// balance serves a read keyed by (holderParam, provider, specifier).
func (h *Handler) balance(holderParam string, fn balanceFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		n, err := fn(h.engine, r.Context(), q.Get(holderParam), q.Get("provider"), q.Get("specifier"))
		if err != nil {
			h.fail(w, r, "read", err)
			return
		}
		writeJSON(w, http.StatusOK, AmountResponse{Amount: n})
	}
}

// HandleQuoteValue handles GET /quote/value?provider&specifier&dots.
func (h *Handler) HandleQuoteValue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dots, ok := uintParam(w, q, "dots")
	if !ok {
		return
	}
	value, err := h.engine.CalcValueForDots(r.Context(), q.Get("provider"), q.Get("specifier"), dots)
	if err != nil {
		h.fail(w, r, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{Value: value, Dots: dots})
}

// HandleQuoteDots handles GET /quote/dots?provider&specifier&value.
func (h *Handler) HandleQuoteDots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, ok := uintParam(w, q, "value")
	if !ok {
		return
	}
	used, dots, err := h.engine.CalcDotsForValue(r.Context(), q.Get("provider"), q.Get("specifier"), value)
	if err != nil {
		h.fail(w, r, "quote", err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{Value: used, Dots: dots})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), op+" failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, err)
}
