// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: validator.go — validator interface and placeholder implementation
//
// Purpose:
//   - Defines the external collaborator interface the consumer calls once
//     per event (spec §4.5).
//   - Provides StubValidator, the placeholder described in spec §1/§9: it
//     scans the payload for JSON field names rather than performing real
//     double-entry accounting. The accounting semantics are explicitly
//     out of scope (spec §1) — this is an interface exerciser, not a
//     ledger.
//
// Notes:
//   - ProcessEvent must be safe to call exactly once per event from a
//     single thread — the consumer goroutine is that thread.
//   - "debit"/"credit" detection uses the same 8-byte probe technique as
//     constants.go's keyAddress/keyData probes in the teacher repo: a
//     fixed-width tag compared in one load at each byte offset. The
//     TradeCreated required-field check is a plain substring search.
// ─────────────────────────────────────────────────────────────────────────────

package validator

import (
	"github.com/sugawarayuuta/sonnet"

	"github.com/JulianZhan/trading-ledger/internal/frame"
)

// Validator consumes exactly one event at a time and accumulates its own
// internal statistics (spec §4.5).
type Validator interface {
	// ProcessEvent is called once per event, in file order, from a
	// single goroutine.
	ProcessEvent(ev frame.Event) error

	// Summary returns a snapshot of accumulated statistics. It is not
	// synchronized with ProcessEvent; the CLI calls it only for the final
	// report, after the consumer goroutine has exited.
	Summary() Summary
}

// Summary is a point-in-time snapshot of validator statistics.
type Summary struct {
	ProcessedByType map[frame.EventType]uint64
	SkippedUnknown  uint64
	DebitTotal      int64
	CreditTotal     int64

	// TradesValidated and ValidationErrors cover TradeCreated events
	// specifically: a trade is valid if its payload carries the
	// trade_id, symbol, and quantity fields a trade record is required
	// to have.
	TradesValidated  uint64
	ValidationErrors uint64
}

// Report renders the summary as JSON for the shutdown report line, using
// sonnet — a drop-in faster encoding/json replacement already pulled in
// by the teacher repo's RPC response decoding (syncharvester.go) —
// instead of the standard library encoder.
func (s Summary) Report() ([]byte, error) {
	return sonnet.Marshal(s)
}
