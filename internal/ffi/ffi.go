package ffi

import (
	"github.com/kreuzberg-go/kreuzberg/internal/intern"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

var configs = newHandleTable[*kreuzberg.ExtractionConfig]()

// ConfigFromJSONHandle parses data and stores the result in the config
// handle table, returning a handle and clearing/setting the last error
// as appropriate. Returns handle 0 on failure (kreuzberg_config_from_json
// returns null in that case).
func ConfigFromJSONHandle(data []byte) uint64 {
	cfg, err := ConfigFromJSON(data)
	if err != nil {
		SetLastError(err.Error())
		return 0
	}
	SetLastError("")
	return configs.Put(cfg)
}

// ConfigIsValidJSON reports 1/0 per spec.md §6.1's integer boolean
// convention (kreuzberg_config_is_valid).
func ConfigIsValidJSON(data []byte) int {
	ok, err := ConfigIsValid(data)
	if err != nil {
		SetLastError(err.Error())
		return 0
	}
	SetLastError("")
	if ok {
		return 1
	}
	return 0
}

// ConfigGet resolves a handle previously returned by
// ConfigFromJSONHandle.
func ConfigGet(handle uint64) (*kreuzberg.ExtractionConfig, bool) {
	return configs.Get(handle)
}

// ConfigFree releases a config handle (kreuzberg_config_free).
func ConfigFree(handle uint64) {
	configs.Free(handle)
}

// InternString interns s in the shared intern table, returning the
// ref-counted entry (kreuzberg_intern_string). The FFI shim copies the
// Entry's Value into a newly allocated C string on every call, so two
// calls with equal strings return distinct pointers.
func InternString(s string) *intern.Entry {
	return intern.Default.Intern(s)
}

// ReleaseInternedString releases a previously interned entry
// (kreuzberg_free_interned_string).
func ReleaseInternedString(e *intern.Entry) {
	intern.Default.Release(e)
}

// ReleaseInternedValue releases a previously interned entry by its
// string content, for callers that only have the value back (the cgo
// shim recovers it from the C string it copied out, not the original
// *Entry pointer).
func ReleaseInternedValue(s string) {
	intern.Default.ReleaseValue(s)
}

// InternStats returns the shared intern table's statistics
// (kreuzberg_string_intern_stats).
func InternStats() intern.Stats {
	return intern.Default.Stats()
}

// InternReset clears the shared intern table
// (kreuzberg_string_intern_reset), invalidating all previously interned
// pointers per spec.md §6.1.
func InternReset() {
	intern.Default.Reset()
}
