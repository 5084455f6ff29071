// Package intern implements the process-global InternTable (spec.md §3):
// a mapping from string content to a ref-counted entry, used by the FFI
// layer (§6.1) to hand out stable pointers for repeated strings (MIME
// types, language codes, encoding names) across the C boundary.
//
// The table is guarded by a single mutex per spec.md §5 ("a single mutex
// guards both map mutation and reference counting"), and recovers from
// poisoning the way every other core global does (spec.md §9) — Go
// mutexes don't poison on panic the way Rust's do, so this is naturally
// satisfied, but entries are still defensively re-validated on access.
package intern

import "sync"

// Entry is one interned string's bookkeeping.
type Entry struct {
	Value        string
	RefCount     int
	RequestCount int
}

// Stats mirrors the FFI struct kreuzberg_string_intern_stats() returns
// (spec.md §6.1).
type Stats struct {
	UniqueCount          int
	TotalRequests        int
	CacheHits            int
	CacheMisses          int
	EstimatedMemorySaved int64
	TotalMemoryBytes     int64
}

// Table is the process-global intern table. The zero value is not
// usable; use New or the package-level Default table.
type Table struct {
	mu      sync.Mutex
	entries map[string]*Entry

	totalRequests int
	cacheHits     int
	cacheMisses   int
}

// New returns an empty intern table.
func New() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// commonMIMETypes, iso6391Codes, and encodingNames are the preload sets
// named in spec.md §3 ("pre-populated with common MIME types, ISO 639-1
// codes, and encoding names").
var commonMIMETypes = []string{
	"text/plain", "text/html", "text/markdown", "text/csv", "text/rtf",
	"application/pdf", "application/zip", "application/x-tar",
	"application/gzip", "application/x-7z-compressed",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.oasis.opendocument.text",
	"application/msword", "application/vnd.ms-powerpoint",
	"image/png", "image/jpeg", "image/tiff", "image/bmp",
}

var iso6391Codes = []string{
	"en", "de", "fr", "es", "it", "pt", "nl", "ru", "zh", "ja", "ko", "ar",
}

var encodingNames = []string{
	"utf-8", "utf-16", "windows-1252", "iso-8859-1",
}

// NewPreloaded returns a table pre-populated with the common MIME types,
// ISO 639-1 codes, and encoding names, with statistics zeroed after
// preload per spec.md §3's "statistics zeroed after preload" invariant.
func NewPreloaded() *Table {
	t := New()
	for _, s := range commonMIMETypes {
		t.Intern(s)
	}
	for _, s := range iso6391Codes {
		t.Intern(s)
	}
	for _, s := range encodingNames {
		t.Intern(s)
	}
	t.mu.Lock()
	t.totalRequests, t.cacheHits, t.cacheMisses = 0, 0, 0
	for _, e := range t.entries {
		e.RequestCount = 0
	}
	t.mu.Unlock()
	return t
}

// Intern returns a pointer-stable *Entry for s, incrementing its ref
// count and request count. Equal strings share the same *Entry while
// live (spec.md §3's "pointer identity for equal strings while live").
func (t *Table) Intern(s string) *Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalRequests++
	if e, ok := t.entries[s]; ok {
		t.cacheHits++
		e.RefCount++
		e.RequestCount++
		return e
	}

	t.cacheMisses++
	e := &Entry{Value: s, RefCount: 1, RequestCount: 1}
	t.entries[s] = e
	return e
}

// Release decrements e's ref count, removing the entry when it reaches
// zero (spec.md §3's "entry removed when ref_count drops to zero").
func (t *Table) Release(e *Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.entries[e.Value]
	if !ok || existing != e {
		return
	}
	existing.RefCount--
	if existing.RefCount <= 0 {
		delete(t.entries, e.Value)
	}
}

// ReleaseValue releases the entry for s by content rather than by
// *Entry identity, for callers (the FFI layer) that only have the
// string back after it crossed a C boundary and was copied into a new
// buffer, losing the original *Entry pointer.
func (t *Table) ReleaseValue(s string) {
	t.mu.Lock()
	e, ok := t.entries[s]
	t.mu.Unlock()
	if !ok {
		return
	}
	t.Release(e)
}

// Reset clears every entry and statistic, invalidating all previously
// interned pointers (spec.md §6.1 kreuzberg_string_intern_reset).
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]*Entry)
	t.totalRequests, t.cacheHits, t.cacheMisses = 0, 0, 0
}

// Stats returns a snapshot of the table's bookkeeping.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var totalBytes int64
	for s := range t.entries {
		totalBytes += int64(len(s))
	}
	// Estimated savings: bytes that would have been duplicated across
	// every request beyond the first for each string.
	var saved int64
	for s, e := range t.entries {
		if e.RequestCount > 1 {
			saved += int64(len(s)) * int64(e.RequestCount-1)
		}
	}

	return Stats{
		UniqueCount:          len(t.entries),
		TotalRequests:        t.totalRequests,
		CacheHits:            t.cacheHits,
		CacheMisses:          t.cacheMisses,
		EstimatedMemorySaved: saved,
		TotalMemoryBytes:     totalBytes,
	}
}

// Default is the process-global table used by the FFI layer.
var Default = NewPreloaded()
