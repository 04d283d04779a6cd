// Package bonding provides a bonding-curve engine that exchanges a deposit
// asset for "dots", the units a subscriber spends on a provider's service.
//
// Each provider publishes a curve per specifier. Bonding buys dots along that
// curve at increasing prices; unbonding sells the most recently bought dots
// back at the price they were bought for. A dispatcher identity, fixed once,
// may escrow a subscriber's dots while a request is in flight and later
// release them to the provider.
//
// The engine is a library. It is given three collaborators:
//
//   - a store.Store holding one account.Account per (holder, provider, specifier)
//   - a directory.Directory answering registration and curve lookups
//   - a token.Ledger that moves the deposit asset in and out of custody
//
// # Quick Start
//
//	reg := directory.NewRegistry()
//	_ = reg.Register(ctx, "oracle", "btc-usd", directory.Profile{Title: "Oracle"})
//	_ = reg.InitCurve(ctx, "oracle", "btc-usd", bonding.Curve{Type: bonding.Linear, Start: 1, Multiplier: 2})
//
//	eng, err := bonding.New(memory.New(), reg, tokens, bonding.WithDispatcher("dispatch"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
//	r, err := eng.Bond(ctx, "alice", "oracle", "btc-usd", 26) // 5 dots for 25
//
// # Failures
//
// Missing registration, a missing curve, unbonding more than is bonded and
// arithmetic overflow abort the call with an error and change nothing.
// Escrow and release never fail for authorization or balance reasons; they
// report an Outcome instead and leave state untouched.
//
// # Concurrency
//
// State-changing calls are serialized inside an Engine. Every call persists
// its changes with a single atomic store write.
package bonding
