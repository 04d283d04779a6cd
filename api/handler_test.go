package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/api"
	"github.com/xraph/bonding/curve"
	"github.com/xraph/bonding/directory"
	"github.com/xraph/bonding/store/memory"
	"github.com/xraph/bonding/token"
)

type fixture struct {
	srv    *httptest.Server
	dir    *directory.Registry
	tokens *token.Memory
}

// headerAuth stands in for real authentication by trusting X-Caller.
func headerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("X-Caller"); c != "" {
			r = r.WithContext(api.WithCaller(r.Context(), c))
		}
		next.ServeHTTP(w, r)
	})
}

func newFixture(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dir := directory.NewRegistry()
	require.NoError(t, dir.Register(ctx, "oracle", "btc", directory.Profile{}))
	require.NoError(t, dir.InitCurve(ctx, "oracle", "btc", curve.Curve{Type: curve.Linear, Start: 1, Multiplier: 2}))
	require.NoError(t, dir.Register(ctx, "oracle", "eth", directory.Profile{}))

	tokens := token.NewMemory("")
	require.NoError(t, tokens.Allocate("alice", 100))
	tokens.Approve("alice", tokens.Custody(), 100)

	engine, err := bonding.New(memory.New(), dir, tokens,
		bonding.WithLogger(logger),
		bonding.WithDispatcher("hub"),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(api.New(engine, logger, opts...).Router("/bonding"))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, dir: dir, tokens: tokens}
}

func (f *fixture) post(t *testing.T, path string, body any, out any) int {
	t.Helper()
	return f.postAs(t, "", path, body, out)
}

// postAs posts body with caller in X-Caller, or no header when caller is "".
func (f *fixture) postAs(t *testing.T, caller, path string, body any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/bonding"+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *fixture) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(f.srv.URL + "/bonding" + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type receipt struct {
	ID       string `json:"id"`
	Value    uint64 `json:"value"`
	Quantity uint64 `json:"quantity"`
}

func TestBondAndRead(t *testing.T) {
	f := newFixture(t)

	var r receipt
	status := f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, &r)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(25), r.Value)
	assert.Equal(t, uint64(5), r.Quantity)
	assert.True(t, strings.HasPrefix(r.ID, "bond_"), r.ID)

	var amt api.AmountResponse
	require.Equal(t, http.StatusOK, f.get(t, "/dots?holder=alice&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(5), amt.Amount)

	require.Equal(t, http.StatusOK, f.get(t, "/value-bound?holder=alice&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(25), amt.Amount)

	require.Equal(t, http.StatusOK, f.get(t, "/dots-issued?subscriber=alice&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(5), amt.Amount)

	status = f.post(t, "/unbond", api.UnbondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Quantity: 1}, &r)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(9), r.Value)
	assert.Equal(t, uint64(84), f.tokens.BalanceOf("alice"))
}

func TestEscrowFlow(t *testing.T) {
	f := newFixture(t, api.WithMiddleware(headerAuth))

	require.Equal(t, http.StatusOK, f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, nil))

	var out api.OutcomeResponse
	req := api.EscrowRequest{Subscriber: "alice", Provider: "oracle", Specifier: "btc", Quantity: 2}
	require.Equal(t, http.StatusOK, f.postAs(t, "mallory", "/escrow", req, &out))
	assert.Equal(t, bonding.RejectedUnauthorized, out.Outcome)

	require.Equal(t, http.StatusOK, f.postAs(t, "hub", "/escrow", req, &out))
	assert.Equal(t, bonding.Applied, out.Outcome)

	var amt api.AmountResponse
	require.Equal(t, http.StatusOK, f.get(t, "/pending-escrow?subscriber=alice&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(2), amt.Amount)

	req.Quantity = 3
	require.Equal(t, http.StatusOK, f.postAs(t, "hub", "/release", req, &out))
	assert.Equal(t, bonding.RejectedInsufficientBalance, out.Outcome)

	req.Quantity = 2
	require.Equal(t, http.StatusOK, f.postAs(t, "hub", "/release", req, &out))
	assert.Equal(t, bonding.Applied, out.Outcome)

	require.Equal(t, http.StatusOK, f.get(t, "/dots?holder=oracle&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(2), amt.Amount)
}

func TestForgedCallerIsRejected(t *testing.T) {
	f := newFixture(t, api.WithMiddleware(headerAuth))
	require.Equal(t, http.StatusOK, f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, nil))

	forged := map[string]any{"caller": "hub", "subscriber": "alice", "provider": "oracle", "specifier": "btc", "quantity": 2}
	var e api.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.post(t, "/escrow", forged, &e))
	assert.Contains(t, e.Error, "caller")

	var out api.OutcomeResponse
	req := api.EscrowRequest{Subscriber: "alice", Provider: "oracle", Specifier: "btc", Quantity: 2}
	require.Equal(t, http.StatusOK, f.post(t, "/escrow", req, &out))
	assert.Equal(t, bonding.RejectedUnauthorized, out.Outcome)

	var amt api.AmountResponse
	require.Equal(t, http.StatusOK, f.get(t, "/pending-escrow?subscriber=alice&provider=oracle&specifier=btc", &amt))
	assert.Zero(t, amt.Amount)
	require.Equal(t, http.StatusOK, f.get(t, "/dots?holder=alice&provider=oracle&specifier=btc", &amt))
	assert.Equal(t, uint64(5), amt.Amount)
}

func TestWithoutAuthenticationEveryCallerIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, nil))

	var out api.OutcomeResponse
	req := api.EscrowRequest{Subscriber: "alice", Provider: "oracle", Specifier: "btc", Quantity: 1}
	require.Equal(t, http.StatusOK, f.postAs(t, "hub", "/escrow", req, &out))
	assert.Equal(t, bonding.RejectedUnauthorized, out.Outcome)
}

func TestIdentityFunc(t *testing.T) {
	f := newFixture(t, api.WithIdentity(func(r *http.Request) (string, bool) {
		user, pass, ok := r.BasicAuth()
		return user, ok && pass == "secret"
	}))
	require.Equal(t, http.StatusOK, f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, nil))

	escrow := api.EscrowRequest{Subscriber: "alice", Provider: "oracle", Specifier: "btc", Quantity: 1}
	var out api.OutcomeResponse
	require.Equal(t, http.StatusOK, f.post(t, "/escrow", escrow, &out))
	assert.Equal(t, bonding.RejectedUnauthorized, out.Outcome)

	data, err := json.Marshal(escrow)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/bonding/escrow", bytes.NewReader(data))
	require.NoError(t, err)
	req.SetBasicAuth("hub", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, bonding.Applied, out.Outcome)
}

func TestDispatcherIsNotExposed(t *testing.T) {
	f := newFixture(t, api.WithMiddleware(headerAuth))

	body := map[string]any{}
	require.Equal(t, http.StatusOK, f.get(t, "/dispatcher", &body))
	assert.Equal(t, map[string]any{"set": true}, body)

	status := f.postAs(t, "mallory", "/dispatcher", map[string]string{"identity": "mallory"}, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	var out api.OutcomeResponse
	require.Equal(t, http.StatusOK, f.post(t, "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Value: 26}, nil))
	req := api.EscrowRequest{Subscriber: "alice", Provider: "oracle", Specifier: "btc", Quantity: 1}
	require.Equal(t, http.StatusOK, f.postAs(t, "mallory", "/escrow", req, &out))
	assert.Equal(t, bonding.RejectedUnauthorized, out.Outcome)
}

func TestQuotes(t *testing.T) {
	f := newFixture(t)

	var q api.QuoteResponse
	require.Equal(t, http.StatusOK, f.get(t, "/quote/value?provider=oracle&specifier=btc&dots=5", &q))
	assert.Equal(t, api.QuoteResponse{Value: 25, Dots: 5}, q)

	require.Equal(t, http.StatusOK, f.get(t, "/quote/dots?provider=oracle&specifier=btc&value=26", &q))
	assert.Equal(t, api.QuoteResponse{Value: 25, Dots: 5}, q)

	var e api.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/quote/dots?provider=oracle&specifier=btc&value=-1", &e))
	assert.Contains(t, e.Error, "value")
}

func TestErrorStatuses(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"not registered", "/bond", api.BondRequest{Holder: "alice", Provider: "nobody", Specifier: "btc", Value: 5}, http.StatusConflict},
		{"no curve", "/bond", api.BondRequest{Holder: "alice", Provider: "oracle", Specifier: "eth", Value: 5}, http.StatusConflict},
		{"empty holder", "/bond", api.BondRequest{Provider: "oracle", Specifier: "btc", Value: 5}, http.StatusBadRequest},
		{"over unbond", "/unbond", api.UnbondRequest{Holder: "alice", Provider: "oracle", Specifier: "btc", Quantity: 1}, http.StatusUnprocessableEntity},
		{"unknown field", "/bond", map[string]any{"holder": "alice", "amount": 3}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e api.ErrorResponse
			assert.Equal(t, tt.status, f.post(t, tt.path, tt.body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestTransferFailureIsPaymentRequired(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tokens.Allocate("bob", 100))

	var e api.ErrorResponse
	status := f.post(t, "/bond", api.BondRequest{Holder: "bob", Provider: "oracle", Specifier: "btc", Value: 26}, &e)
	assert.Equal(t, http.StatusPaymentRequired, status)
}

type brokenEngine struct {
	api.Engine
}

func (brokenEngine) Dots(context.Context, string, string, string) (uint64, error) {
	return 0, errors.New("disk on fire")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	h := api.New(brokenEngine{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dots?holder=a&provider=p&specifier=s", nil)

	h.Router("").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var e api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), e.Error)
}
