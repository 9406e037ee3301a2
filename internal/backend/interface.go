package backend

import (
	"context"
	"time"

	"ledger/internal/mirror"
)

// CleanupFunc releases whatever the mirror holds open.
type CleanupFunc func() error

// Result contains the mirror instance and optional cleanup function
type Result struct {
	Mirror  mirror.Mirror
	Cleanup CleanupFunc
}

// Factory creates mirrors based on configuration
type Factory interface {
	CreateMirror(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for mirror creation
type Config struct {
	Type Type

	// HTTP persistence service
	CreateURL string
	ExportURL string
	Token     string
	Timeout   time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// Type names a mirror implementation.
type Type string

const (
	NoneMirror   Type = "none"
	MemoryMirror Type = "memory"
	HTTPMirror   Type = "http"
	SheetsMirror Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the mirror type is known
func (t Type) IsValid() bool {
	switch t {
	case NoneMirror, MemoryMirror, HTTPMirror, SheetsMirror:
		return true
	default:
		return false
	}
}
