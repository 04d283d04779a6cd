// Package audithook bridges bonding engine events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on a
// particular audit store. Callers inject a RecorderFunc adapter at wiring
// time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/id"
	"github.com/xraph/bonding/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin           = (*Extension)(nil)
	_ plugin.OnBonded         = (*Extension)(nil)
	_ plugin.OnUnbonded       = (*Extension)(nil)
	_ plugin.OnEscrowed       = (*Extension)(nil)
	_ plugin.OnReleased       = (*Extension)(nil)
	_ plugin.OnEscrowRejected = (*Extension)(nil)
	_ plugin.OnDispatcherSet  = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one audit trail entry.
type AuditEvent struct {
	ID         id.ID          `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges engine events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// OnBonded implements plugin.OnBonded.
func (e *Extension) OnBonded(ctx context.Context, key account.Key, value, quantity uint64) error {
	return e.record(ctx, ActionBonded, SeverityInfo, OutcomeSuccess,
		ResourceBond, key.String(), CategoryBonding, "",
		"holder", key.Holder,
		"provider", key.Provider,
		"specifier", key.Specifier,
		"value", value,
		"quantity", quantity,
	)
}

// OnUnbonded implements plugin.OnUnbonded.
func (e *Extension) OnUnbonded(ctx context.Context, key account.Key, value, quantity uint64) error {
	return e.record(ctx, ActionUnbonded, SeverityInfo, OutcomeSuccess,
		ResourceBond, key.String(), CategoryBonding, "",
		"holder", key.Holder,
		"provider", key.Provider,
		"specifier", key.Specifier,
		"value", value,
		"quantity", quantity,
	)
}

// OnEscrowed implements plugin.OnEscrowed.
func (e *Extension) OnEscrowed(ctx context.Context, key account.Key, quantity uint64) error {
	return e.record(ctx, ActionEscrowed, SeverityInfo, OutcomeSuccess,
		ResourceEscrow, key.String(), CategoryEscrow, "",
		"subscriber", key.Holder,
		"provider", key.Provider,
		"specifier", key.Specifier,
		"quantity", quantity,
	)
}

// OnReleased implements plugin.OnReleased.
func (e *Extension) OnReleased(ctx context.Context, key account.Key, quantity uint64) error {
	return e.record(ctx, ActionReleased, SeverityInfo, OutcomeSuccess,
		ResourceEscrow, key.String(), CategoryEscrow, "",
		"subscriber", key.Holder,
		"provider", key.Provider,
		"specifier", key.Specifier,
		"quantity", quantity,
	)
}

// OnEscrowRejected implements plugin.OnEscrowRejected.
func (e *Extension) OnEscrowRejected(ctx context.Context, op string, key account.Key, quantity uint64, reason string) error {
	action := ActionEscrowRejected
	if op == "release" {
		action = ActionReleaseRejected
	}
	return e.record(ctx, action, SeverityWarning, OutcomeFailure,
		ResourceEscrow, key.String(), CategoryEscrow, reason,
		"subscriber", key.Holder,
		"provider", key.Provider,
		"specifier", key.Specifier,
		"quantity", quantity,
	)
}

// OnDispatcherSet implements plugin.OnDispatcherSet.
func (e *Extension) OnDispatcherSet(ctx context.Context, identity string) error {
	return e.record(ctx, ActionDispatcherSet, SeverityWarning, OutcomeSuccess,
		ResourceDispatcher, identity, CategoryAccess, "",
		"dispatcher", identity,
	)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	reason string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		ID:         id.NewAuditID(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
