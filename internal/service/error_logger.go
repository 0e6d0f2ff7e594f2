package service

import (
	"context"
	"log"
)

// Diagnostics is a lightweight structured logger for failures that don't
// belong in an HTTP response — a snapshot ingest that failed validation, an
// attribution run that fell back to a degraded confidence tier, an import
// line that errored. It logs to stdout rather than a store; operators tail
// the process logs, the same way the import command's summary line does.
type Diagnostics struct{}

// NewDiagnostics creates a Diagnostics logger.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) log(ctx context.Context, category, message, details string) {
	if details != "" {
		log.Printf("[%s] %s: %s", category, message, details)
		return
	}
	log.Printf("[%s] %s", category, message)
}

// Error logs a failure with an optional underlying error.
func (d *Diagnostics) Error(ctx context.Context, category, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	d.log(ctx, category, message, details)
}

// Warn logs a degraded-but-recovered condition, such as a baseline falling
// back to conservative defaults for lack of creator history.
func (d *Diagnostics) Warn(ctx context.Context, category, message string) {
	d.log(ctx, category, message, "")
}

// LogSnapshotError logs a snapshot-ingest failure.
func LogSnapshotError(ctx context.Context, message string, err error) {
	NewDiagnostics().Error(ctx, "snapshot", message, err)
}

// LogAttributionWarning logs a degraded-confidence attribution run.
func LogAttributionWarning(ctx context.Context, message string) {
	NewDiagnostics().Warn(ctx, "attribution", message)
}

// LogImportError logs an ingest-pipeline record failure.
func LogImportError(ctx context.Context, message string, err error) {
	NewDiagnostics().Error(ctx, "import", message, err)
}
