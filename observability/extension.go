// Package observability provides a metrics extension for the bonding engine
// that records bonding event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin           = (*MetricsExtension)(nil)
	_ plugin.OnInit           = (*MetricsExtension)(nil)
	_ plugin.OnBonded         = (*MetricsExtension)(nil)
	_ plugin.OnUnbonded       = (*MetricsExtension)(nil)
	_ plugin.OnEscrowed       = (*MetricsExtension)(nil)
	_ plugin.OnReleased       = (*MetricsExtension)(nil)
	_ plugin.OnEscrowRejected = (*MetricsExtension)(nil)
	_ plugin.OnDispatcherSet  = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records bonding engine metrics.
// Register it as an engine plugin to track bonding activity.
type MetricsExtension struct {
	factory MetricFactory

	// Bond metrics
	Bonds         Counter
	Unbonds       Counter
	DotsBonded    Counter
	DotsUnbonded  Counter
	ValueBonded   Counter
	ValueRefunded Counter
	BondQuantity  Histogram

	// Escrow metrics
	Escrows         Counter
	Releases        Counter
	DotsEscrowed    Counter
	DotsReleased    Counter
	EscrowRejected  Counter
	ReleaseRejected Counter

	// Identity metrics
	DispatcherSet Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		Bonds:         factory.Counter("bonding.bond.total"),
		Unbonds:       factory.Counter("bonding.unbond.total"),
		DotsBonded:    factory.Counter("bonding.bond.dots"),
		DotsUnbonded:  factory.Counter("bonding.unbond.dots"),
		ValueBonded:   factory.Counter("bonding.bond.value"),
		ValueRefunded: factory.Counter("bonding.unbond.value"),
		BondQuantity:  factory.Histogram("bonding.bond.quantity"),

		Escrows:         factory.Counter("bonding.escrow.total"),
		Releases:        factory.Counter("bonding.release.total"),
		DotsEscrowed:    factory.Counter("bonding.escrow.dots"),
		DotsReleased:    factory.Counter("bonding.release.dots"),
		EscrowRejected:  factory.Counter("bonding.escrow.rejected"),
		ReleaseRejected: factory.Counter("bonding.release.rejected"),

		DispatcherSet: factory.Counter("bonding.dispatcher.set"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// OnBonded implements plugin.OnBonded.
func (m *MetricsExtension) OnBonded(_ context.Context, _ account.Key, value, quantity uint64) error {
	m.Bonds.Inc()
	m.DotsBonded.Add(float64(quantity))
	m.ValueBonded.Add(float64(value))
	m.BondQuantity.Observe(float64(quantity))
	return nil
}

// OnUnbonded implements plugin.OnUnbonded.
func (m *MetricsExtension) OnUnbonded(_ context.Context, _ account.Key, value, quantity uint64) error {
	m.Unbonds.Inc()
	m.DotsUnbonded.Add(float64(quantity))
	m.ValueRefunded.Add(float64(value))
	return nil
}

// OnEscrowed implements plugin.OnEscrowed.
func (m *MetricsExtension) OnEscrowed(_ context.Context, _ account.Key, quantity uint64) error {
	m.Escrows.Inc()
	m.DotsEscrowed.Add(float64(quantity))
	return nil
}

// OnReleased implements plugin.OnReleased.
func (m *MetricsExtension) OnReleased(_ context.Context, _ account.Key, quantity uint64) error {
	m.Releases.Inc()
	m.DotsReleased.Add(float64(quantity))
	return nil
}

// OnEscrowRejected implements plugin.OnEscrowRejected.
func (m *MetricsExtension) OnEscrowRejected(_ context.Context, op string, _ account.Key, _ uint64, _ string) error {
	if op == "release" {
		m.ReleaseRejected.Inc()
	} else {
		m.EscrowRejected.Inc()
	}
	return nil
}

// OnDispatcherSet implements plugin.OnDispatcherSet.
func (m *MetricsExtension) OnDispatcherSet(_ context.Context, _ string) error {
	m.DispatcherSet.Inc()
	return nil
}
