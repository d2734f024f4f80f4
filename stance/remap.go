package stance

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel marks a provider label outside the documented taxonomy.
var ErrUnknownLabel = errors.New("unknown provider label")

// IngestionError wraps a per-record ingestion failure. Callers skip the
// record, count the error, and continue; it is never fatal on its own.
type IngestionError struct {
	RecordID string
	Reason   error
}

func (e *IngestionError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("ingestion: %v", e.Reason)
	}
	return fmt.Sprintf("ingestion: record %s: %v", e.RecordID, e.Reason)
}

func (e *IngestionError) Unwrap() error { return e.Reason }

// RemapLabel converts the dataset provider's native taxonomy
// {support, deny, neutral} to the stance taxonomy. The provider labels
// rumours about vaccine harm, so "support" maps to anti and "deny" to pro.
func RemapLabel(raw string) (Stance, error) {
	switch raw {
	case "support":
		return Anti, nil
	case "deny":
		return Pro, nil
	case "neutral":
		return Neutral, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, raw)
}
