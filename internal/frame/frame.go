// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: frame.go — binary record framing and integrity checking
//
// Purpose:
//   - Decodes the file header and fixed-layout event records written by the
//     external log writer (spec §3, §4.1).
//   - Verifies the trailing CRC32 over every record it parses.
//
// Notes:
//   - Pure decode: no I/O, and ParseRecord does not copy the payload — the
//     decoded payload aliases the input. This keeps the framer
//     fuzz-testable and lets the log reader decide whether to copy payload
//     bytes out of the mapped view or not.
//   - All multi-byte integers are little-endian, per the file format.
//
// ⚠️ Never call Serialize/ParseRecord from a hot loop with large payloads
// without first deciding whether the caller needs to own the payload bytes.
// ─────────────────────────────────────────────────────────────────────────────

package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// EventType enumerates the writer-assigned event kinds (spec §3).
type EventType uint8

const (
	TradeCreated           EventType = 1
	LedgerEntriesGenerated EventType = 2
	PositionUpdated        EventType = 3
)

// String renders the event type for log lines; unknown values print as a
// numeric tag rather than panicking — unknown event_type is not a framing
// error (spec §4.1 "Numeric semantics").
func (t EventType) String() string {
	switch t {
	case TradeCreated:
		return "TRADE_CREATED"
	case LedgerEntriesGenerated:
		return "LEDGER_ENTRIES_GENERATED"
	case PositionUpdated:
		return "POSITION_UPDATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

const (
	// FileMagic is "TRAD" read as a little-endian uint32 (spec §3).
	// On disk the bytes appear as 44 41 52 54 (little-endian encoding
	// of this value); binary.LittleEndian.Uint32 of those bytes yields
	// exactly this constant.
	FileMagic uint32 = 0x54524144
	// FileVersion is the only version this framer accepts.
	FileVersion uint32 = 1

	// HeaderSize is the fixed size of the file header.
	HeaderSize = 16
	// RecordFixedSize is the size of a record's fixed-layout prefix,
	// not counting the variable-length payload or the trailing CRC.
	RecordFixedSize = 24
	// crcSize is the size of the trailing stored CRC32.
	crcSize = 4
)

// Sentinel errors for the framing error taxonomy (spec §7).
var (
	ErrBadMagic         = errors.New("frame: bad magic")
	ErrBadVersion       = errors.New("frame: bad version")
	ErrInsufficientData = errors.New("frame: insufficient data")
	ErrHeaderTooShort   = errors.New("frame: header too short")
)

// CRCMismatchError carries both the stored and recomputed CRC32 values so
// callers can log the diagnostic without re-parsing (spec §4.1).
type CRCMismatchError struct {
	Stored     uint32
	Recomputed uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("frame: crc mismatch: stored=%08x recomputed=%08x", e.Stored, e.Recomputed)
}

// FileHeader is the 16-byte header written once at the start of the log
// file (spec §3).
type FileHeader struct {
	Magic    uint32
	Version  uint32
	Reserved uint64
}

// ParseHeader decodes and validates the file header from the first
// HeaderSize bytes of b.
func ParseHeader(b []byte) (FileHeader, error) {
	if len(b) < HeaderSize {
		return FileHeader{}, ErrHeaderTooShort
	}
	h := FileHeader{
		Magic:    binary.LittleEndian.Uint32(b[0:4]),
		Version:  binary.LittleEndian.Uint32(b[4:8]),
		Reserved: binary.LittleEndian.Uint64(b[8:16]),
	}
	if h.Magic != FileMagic {
		return FileHeader{}, ErrBadMagic
	}
	if h.Version != FileVersion {
		return FileHeader{}, ErrBadVersion
	}
	return h, nil
}

// Event is an immutable decoded record (spec §3).
type Event struct {
	SequenceNum uint64
	TimestampNs uint64
	EventType   EventType
	Payload     []byte
	CRC32       uint32
}

// RecordLen returns the on-disk length of a record carrying a payload of
// payloadLen bytes: 24-byte fixed header + payload + 4-byte CRC.
func RecordLen(payloadLen uint32) uint64 {
	return uint64(RecordFixedSize) + uint64(payloadLen) + uint64(crcSize)
}

// ParseRecord decodes one record from the start of b. It requires the
// full record (fixed header + payload + CRC) to be present in b; any
// shorter prefix yields ErrInsufficientData, never a framing error — the
// caller (the log reader) treats that as "not yet available" at EOF
// (spec §4.1, §8 property 3).
//
// On success the returned Event.Payload aliases b; callers that need to
// retain it across a remap must copy it out first (spec §9, "Mapped-file
// lifetime across growth").
func ParseRecord(b []byte) (Event, error) {
	if len(b) < RecordFixedSize {
		return Event{}, ErrInsufficientData
	}

	payloadLen := binary.LittleEndian.Uint32(b[20:24])
	total := RecordLen(payloadLen)
	if uint64(len(b)) < total {
		return Event{}, ErrInsufficientData
	}

	crcCovered := RecordFixedSize + int(payloadLen)
	stored := binary.LittleEndian.Uint32(b[crcCovered : crcCovered+crcSize])
	recomputed := CRC32(b[:crcCovered])
	if recomputed != stored {
		return Event{}, &CRCMismatchError{Stored: stored, Recomputed: recomputed}
	}

	ev := Event{
		SequenceNum: binary.LittleEndian.Uint64(b[0:8]),
		TimestampNs: binary.LittleEndian.Uint64(b[8:16]),
		EventType:   EventType(b[16]),
		Payload:     b[24:crcCovered],
		CRC32:       stored,
	}
	return ev, nil
}

// CRC32 computes the ISO-HDLC / zlib-compatible checksum (reflected
// polynomial 0xEDB88320, initial 0xFFFFFFFF, final xor 0xFFFFFFFF) that
// the writer uses. hash/crc32's IEEE table is bit-for-bit that polynomial
// — no third-party CRC32 implementation exists anywhere in the retrieved
// reference pack, and reimplementing the table by hand would only add a
// second, redundant, and strictly worse copy of what the standard
// library already gets exactly right.
func CRC32(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// Serialize encodes ev as it would appear on disk, recomputing CRC32 over
// the fixed header and payload. Used by tests and by any caller that
// wants to round-trip an Event (spec §8 property 1).
func Serialize(ev Event) []byte {
	payloadLen := uint32(len(ev.Payload))
	total := RecordLen(payloadLen)
	buf := make([]byte, total)

	binary.LittleEndian.PutUint64(buf[0:8], ev.SequenceNum)
	binary.LittleEndian.PutUint64(buf[8:16], ev.TimestampNs)
	buf[16] = byte(ev.EventType)
	// buf[17:20] reserved, left zero (spec §9 open question: write zero).
	binary.LittleEndian.PutUint32(buf[20:24], payloadLen)
	copy(buf[24:24+payloadLen], ev.Payload)

	crcCovered := RecordFixedSize + int(payloadLen)
	crc := CRC32(buf[:crcCovered])
	binary.LittleEndian.PutUint32(buf[crcCovered:crcCovered+crcSize], crc)
	return buf
}

// SerializeHeader encodes a FileHeader as it would appear on disk.
func SerializeHeader(h FileHeader) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint64(buf[8:16], h.Reserved)
	return buf
}
