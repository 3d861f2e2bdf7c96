//go:build cgo

package store

// The libsql driver requires cgo; register it only in cgo builds so the
// package still compiles when CGO_ENABLED=0 (matching store_cgo_test.go).
import _ "github.com/tursodatabase/go-libsql"
