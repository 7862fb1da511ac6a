// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: reader.go — mmap-backed forward-only log reader
//
// Purpose:
//   - Owns a growable, read-only memory-mapped view of the event log file.
//   - Presents the log as a forward-only sequence of frame.Event values,
//     re-mapping when the writer extends the file (spec §4.2).
//
// Notes:
//   - The mapped view is owned exclusively by the calling goroutine — the
//     producer in production. Never share a *Reader across goroutines.
//   - Partial-record-at-EOF is not an error: ReadNext returns ok=false,
//     err=nil, and the caller should consult the tail notifier before
//     retrying.
// ─────────────────────────────────────────────────────────────────────────────

package logreader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/JulianZhan/trading-ledger/internal/frame"
)

// ErrTooSmall is returned by Open when the file is shorter than the
// 16-byte file header (spec §4.2).
var ErrTooSmall = errors.New("logreader: file too small for header")

// Reader presents an append-only event log as a forward-only sequence of
// records over a memory-mapped view of the file.
type Reader struct {
	f      *os.File
	data   []byte // current mapped view, length == size
	size   uint64 // size of data
	offset uint64 // current read offset into data
	Header frame.FileHeader
}

// Open opens path read-only, maps the whole file, advises the OS of
// sequential access (best-effort — absence of the advisory is not an
// error, spec §6 "Environment"), and validates the file header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("logreader: open: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("logreader: stat: %w", err)
	}
	size := uint64(st.Size())
	if size < frame.HeaderSize {
		f.Close()
		return nil, ErrTooSmall
	}

	data, err := mapFile(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("logreader: mmap: %w", err)
	}
	adviseSequential(data)

	header, err := frame.ParseHeader(data[:frame.HeaderSize])
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}

	return &Reader{
		f:      f,
		data:   data,
		size:   size,
		offset: frame.HeaderSize,
		Header: header,
	}, nil
}

func mapFile(f *os.File, size uint64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
}

func adviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	// Best-effort: failure is not an error (spec §6).
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}

// ReadNext decodes the next record at the current offset.
//
// ok=false, err=nil means no complete record is available yet — this is
// the normal "caught up to the writer" state, including a partial record
// dangling at the tail (spec §4.2, §8 property 10). The caller should not
// advance the offset and should consult the tail notifier before retrying.
//
// ok=false, err!=nil means a hard framing failure (crc_mismatch) occurred;
// per spec §7 this is fatal and the offset is left unchanged.
func (r *Reader) ReadNext() (ev frame.Event, ok bool, err error) {
	if r.offset >= r.size {
		return frame.Event{}, false, nil
	}

	remaining := r.data[r.offset:r.size]
	if uint64(len(remaining)) < frame.RecordFixedSize {
		return frame.Event{}, false, nil
	}

	parsed, perr := frame.ParseRecord(remaining)
	if perr != nil {
		if errors.Is(perr, frame.ErrInsufficientData) {
			return frame.Event{}, false, nil
		}
		// crc_mismatch or any other hard framing error: fatal, offset
		// unchanged (spec S4).
		return frame.Event{}, false, perr
	}

	recordLen := frame.RecordLen(uint32(len(parsed.Payload)))
	r.offset += recordLen
	return parsed, true, nil
}

// RemapIfGrown stats the underlying file and, if it has grown, unmaps and
// re-maps the larger range, preserving the current offset (spec §4.2).
func (r *Reader) RemapIfGrown() (bool, error) {
	st, err := r.f.Stat()
	if err != nil {
		return false, fmt.Errorf("logreader: stat: %w", err)
	}
	newSize := uint64(st.Size())
	if newSize <= r.size {
		return false, nil
	}

	if err := unix.Munmap(r.data); err != nil {
		return false, fmt.Errorf("logreader: munmap: %w", err)
	}
	data, err := mapFile(r.f, newSize)
	if err != nil {
		return false, fmt.Errorf("logreader: remap: %w", err)
	}
	adviseSequential(data)

	r.data = data
	r.size = newSize
	return true, nil
}

// SkipBadRecord advances past the record sitting at the current offset
// whose CRC failed to verify, using the declared payload length from the
// still-intact fixed header rather than trusting any of the payload or
// CRC bytes. It is only meaningful immediately after ReadNext has
// returned a *frame.CRCMismatchError: that error implies the full record
// (fixed header + payload + CRC) was present in the mapping, so the
// length field itself is readable even though the checksum did not
// verify. This is how an implementation's optional lenient mode (spec
// §7) steps past corruption instead of halting the whole pipeline.
func (r *Reader) SkipBadRecord() error {
	if r.offset+frame.RecordFixedSize > r.size {
		return fmt.Errorf("logreader: cannot skip: insufficient data at offset %d", r.offset)
	}
	payloadLen := binary.LittleEndian.Uint32(r.data[r.offset+20 : r.offset+24])
	recordLen := frame.RecordLen(payloadLen)
	if r.offset+recordLen > r.size {
		return fmt.Errorf("logreader: cannot skip: record at offset %d extends past mapped size", r.offset)
	}
	r.offset += recordLen
	return nil
}

// EOF reports whether the current offset has caught up to the mapped
// size.
func (r *Reader) EOF() bool {
	return r.offset >= r.size
}

// Offset returns the current read offset into the file.
func (r *Reader) Offset() uint64 {
	return r.offset
}

// FileSize returns the size of the file as of the last successful map or
// remap.
func (r *Reader) FileSize() uint64 {
	return r.size
}

// Close unmaps the view and closes the file descriptor. Safe to call
// once; subsequent calls are no-ops beyond returning the close error.
func (r *Reader) Close() error {
	var err error
	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}
	if cerr := r.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
