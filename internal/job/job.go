package job

import "time"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Job is the record of work committed to after admin approval. At most
// one exists per quote request; creation happens inside the approval
// transaction and never again.
type Job struct {
	ID             string     `json:"id"`
	RequestID      string     `json:"requestId"`
	Status         Status     `json:"status"`
	ScheduledStart *time.Time `json:"scheduledStart,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEnd,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
