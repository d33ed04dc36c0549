package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// ActivityEventRow mirrors the platform_events BigQuery schema. One row per
// outbox event; the full payload rides along as JSON for ad-hoc queries.
type ActivityEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	ActorUserID   *string            `bigquery:"actor_user_id"`
	ActorRole     *string            `bigquery:"actor_role"`
	SubjectUserID *string            `bigquery:"subject_user_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}
