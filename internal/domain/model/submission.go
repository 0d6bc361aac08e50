package model

import "time"

// Submission is a raw candidate record received for ingestion.
// SubmissionID makes redelivery idempotent.
type Submission struct {
	SubmissionID string
	Candidate    RawCandidate
	ReceivedAt   time.Time
}
