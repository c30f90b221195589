// internal/domain/entity/feed_message.go
package entity

import (
	"time"
)

// Feed Message Process Status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// FeedMessage is one raw message pulled from a deal-feed inbox. The body
// carries a normalized JSON deal payload produced upstream; the engine never
// parses newsletter HTML itself.
type FeedMessage struct {
	MessageID     string                 `bson:"messageId"`
	From          string                 `bson:"from"`
	Subject       string                 `bson:"subject"`
	Body          string                 `bson:"body"`
	ReceivedAt    time.Time              `bson:"receivedAt"`
	ProcessedAt   time.Time              `bson:"processedAt,omitempty"`
	ProcessStatus string                 `bson:"processStatus"`
	ErrorDetail   string                 `bson:"errorDetail,omitempty"`
	ExtractedData map[string]interface{} `bson:"extractedData,omitempty"`
}
