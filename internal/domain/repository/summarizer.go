package repository

import (
	"context"

	"skypulse-engine/internal/domain/entity"
)

// Summarizer is the language-model collaborator that turns a scored match
// into a short human-readable explanation. Calls may fail or time out; the
// engine tolerates absence with a deterministic fallback.
type Summarizer interface {
	Summarize(ctx context.Context, req *entity.SummaryRequest) (string, error)
}
