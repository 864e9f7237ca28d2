package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the moderation state of a wish. A wish starts out pending and is
// decided exactly once; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is a moderator's verdict on a pending wish.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Wish is a guest's photo-plus-caption submission.
type Wish struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImageRef    string             `bson:"image_ref" json:"image_ref"`
	Message     string             `bson:"message" json:"message"`
	SubmitterID int64              `bson:"submitter_id,omitempty" json:"submitter_id,omitempty"`
	Status      Status             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	DecidedAt   time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	// DisplayRank breaks created_at ties in the public listing. Assigned once
	// at insert so the order never reshuffles between requests.
	DisplayRank float64 `bson:"display_rank" json:"-"`
}

// StatusFor maps a moderator decision to the status it applies.
func (d Decision) StatusFor() (Status, error) {
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown decision %q: %w", string(d), ErrValidation)
	}
}
