// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets speedsqueak code read the time and run tickers
// through an injected value instead of the time package.
//
// Production code takes a [Clock] and is given [Real]. Tests give it a
// [FakeClock] whose time only moves when the test calls Advance, which
// makes heartbeat cadence and record timestamps deterministic:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go heartbeat.Run(ctx, fake)
//	fake.WaitForTickers(1)     // the goroutine has created its ticker
//	fake.Advance(time.Minute)  // exactly one tick is delivered
package clock
