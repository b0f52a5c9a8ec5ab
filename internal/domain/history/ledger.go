package history

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/matstat/internal/domain/matrix"
	"github.com/GriffinCanCode/matstat/internal/shared/id"
)

// DefaultCapacity is the number of entries retained before eviction.
const DefaultCapacity = 100

// TimeFormat renders entry timestamps (ISO-8601, millisecond precision, UTC).
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Entry records one successful computation.
type Entry struct {
	ID               id.EntryID           `json:"id"`
	Timestamp        time.Time            `json:"timestamp"`
	Source           string               `json:"source"`
	MatrixDimensions string               `json:"matrixDimensions"`
	Stats            matrix.Stats         `json:"stats"`
	Diagonal         *matrix.DiagonalInfo `json:"diagonalInfo,omitempty"`
}

type entryJSON struct {
	ID               id.EntryID           `json:"id"`
	Timestamp        string               `json:"timestamp"`
	Source           string               `json:"source"`
	MatrixDimensions string               `json:"matrixDimensions"`
	Stats            matrix.Stats         `json:"stats"`
	Diagonal         *matrix.DiagonalInfo `json:"diagonalInfo,omitempty"`
}

// MarshalJSON writes Timestamp in TimeFormat.
func (e Entry) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(entryJSON{
		ID:               e.ID,
		Timestamp:        e.Timestamp.UTC().Format(TimeFormat),
		Source:           e.Source,
		MatrixDimensions: e.MatrixDimensions,
		Stats:            e.Stats,
		Diagonal:         e.Diagonal,
	})
}

// clone returns a copy that shares no memory with e.
func (e Entry) clone() Entry {
	out := e
	if e.Diagonal != nil {
		d := e.Diagonal.Clone()
		out.Diagonal = &d
	}
	return out
}

// Ledger is a bounded, append-only log of entries. Once full, recording a new
// entry evicts the oldest one. All methods are safe for concurrent use and
// return copies, never the ledger's own storage.
type Ledger struct {
	mu        sync.RWMutex
	entries   []Entry
	capacity  int
	evictions uint64
}

// NewLedger creates an empty ledger. A non-positive capacity selects
// DefaultCapacity.
func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Record appends e, evicting the oldest entry past capacity. It returns the
// number of entries evicted (0 or 1).
func (l *Ledger) Record(e Entry) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e.clone())

	evicted := 0
	if over := len(l.entries) - l.capacity; over > 0 {
		// Shift in place so the backing array does not grow without bound.
		n := copy(l.entries, l.entries[over:])
		for i := n; i < len(l.entries); i++ {
			l.entries[i] = Entry{}
		}
		l.entries = l.entries[:n]
		evicted = over
		l.evictions += uint64(over)
	}
	return evicted
}

// History returns all entries, oldest first.
func (l *Ledger) History() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return cloneAll(l.entries)
}

// Recent returns up to n most recent entries, oldest first.
func (l *Ledger) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 {
		return []Entry{}
	}
	start := max(len(l.entries)-n, 0)
	return cloneAll(l.entries[start:])
}

// Latest returns the most recently recorded entry.
func (l *Ledger) Latest() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1].clone(), true
}

// BySource returns the entries recorded with the given source, oldest first.
func (l *Ledger) BySource(source string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Entry{}
	for _, e := range l.entries {
		if e.Source == source {
			out = append(out, e.clone())
		}
	}
	return out
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Capacity returns the maximum number of retained entries.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// Evictions returns how many entries have been evicted since creation or the
// last Clear.
func (l *Ledger) Evictions() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.evictions
}

// Clear removes all entries.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make([]Entry, 0, l.capacity)
	l.evictions = 0
}

func cloneAll(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}
