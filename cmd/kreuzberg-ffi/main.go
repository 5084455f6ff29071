// Command kreuzberg-ffi builds as a C shared library (go build
// -buildmode=c-shared) exposing the C ABI of spec.md §6.1. It is a thin
// cgo shim: every exported function marshals its C arguments, delegates
// to internal/ffi, and marshals the result back, never letting a Go
// panic cross the boundary (recover turns one into kreuzberg_last_error
// instead, per spec.md §7's "no exceptions or panics may cross the FFI
// boundary").
package main

/*
#include <stdlib.h>

typedef struct kreuzberg_intern_stats {
	long long unique_count;
	long long total_requests;
	long long cache_hits;
	long long cache_misses;
	long long estimated_memory_saved;
	long long total_memory_bytes;
} kreuzberg_intern_stats;
*/
import "C"

import (
	"unsafe"

	"github.com/kreuzberg-go/kreuzberg/internal/ffi"
)

func recoverToLastError() {
	if r := recover(); r != nil {
		ffi.SetLastError(panicMessage(r))
	}
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return "panic: " + err.Error()
	}
	return "panic: unexpected internal error"
}

//export kreuzberg_config_from_json
func kreuzberg_config_from_json(json *C.char) C.ulonglong {
	defer recoverToLastError()
	if json == nil {
		ffi.SetLastError("kreuzberg_config_from_json: json must not be null")
		return 0
	}
	return C.ulonglong(ffi.ConfigFromJSONHandle([]byte(C.GoString(json))))
}

//export kreuzberg_config_is_valid
func kreuzberg_config_is_valid(json *C.char) C.int {
	defer recoverToLastError()
	if json == nil {
		ffi.SetLastError("kreuzberg_config_is_valid: json must not be null")
		return 0
	}
	return C.int(ffi.ConfigIsValidJSON([]byte(C.GoString(json))))
}

//export kreuzberg_config_free
func kreuzberg_config_free(handle C.ulonglong) {
	defer recoverToLastError()
	ffi.ConfigFree(uint64(handle))
}

//export kreuzberg_intern_string
func kreuzberg_intern_string(s *C.char) *C.char {
	defer recoverToLastError()
	if s == nil {
		ffi.SetLastError("kreuzberg_intern_string: s must not be null")
		return nil
	}
	entry := ffi.InternString(C.GoString(s))
	return C.CString(entry.Value)
}

//export kreuzberg_free_interned_string
func kreuzberg_free_interned_string(s *C.char) {
	defer recoverToLastError()
	if s == nil {
		return
	}
	ffi.ReleaseInternedValue(C.GoString(s))
	C.free(unsafe.Pointer(s))
}

//export kreuzberg_string_intern_stats
func kreuzberg_string_intern_stats() C.kreuzberg_intern_stats {
	defer recoverToLastError()
	stats := ffi.InternStats()
	return C.kreuzberg_intern_stats{
		unique_count:            C.longlong(stats.UniqueCount),
		total_requests:          C.longlong(stats.TotalRequests),
		cache_hits:              C.longlong(stats.CacheHits),
		cache_misses:            C.longlong(stats.CacheMisses),
		estimated_memory_saved:  C.longlong(stats.EstimatedMemorySaved),
		total_memory_bytes:      C.longlong(stats.TotalMemoryBytes),
	}
}

//export kreuzberg_string_intern_reset
func kreuzberg_string_intern_reset() {
	defer recoverToLastError()
	ffi.InternReset()
}

//export kreuzberg_last_error
func kreuzberg_last_error() *C.char {
	msg := ffi.LastError()
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

func main() {}
