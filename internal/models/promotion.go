package models

import (
	"time"
)

// PromotionStatus is the lifecycle state of a promotion.
type PromotionStatus string

// Promotion statuses.
const (
	PromotionDraft     PromotionStatus = "draft"
	PromotionSubmitted PromotionStatus = "submitted"
	PromotionApproved  PromotionStatus = "approved"
	PromotionRejected  PromotionStatus = "rejected"
)

// Decision values for recording a promotion decision.
const (
	DecisionApprove = "approve"
)

// Promotion bundles accepted badge applications toward one template. Path and
// level bounds are copied from the template at creation for denormalized
// display; the template itself stays immutable while referenced.
type Promotion struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	CreatorID    uint              `gorm:"not null;index" json:"creator_id"`
	TemplateID   uint              `gorm:"not null;index" json:"template_id"`
	Template     PromotionTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Path         PromotionPath     `gorm:"size:32;not null" json:"path"`
	FromLevel    string            `gorm:"size:32;not null" json:"from_level"`
	ToLevel      string            `gorm:"size:32;not null" json:"to_level"`
	Status       PromotionStatus   `gorm:"size:32;not null;index;default:'draft'" json:"status"`
	SubmittedAt  *time.Time        `json:"submitted_at,omitempty"`
	DecidedBy    *uint             `json:"decided_by,omitempty"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
	RejectReason string            `gorm:"type:text" json:"reject_reason,omitempty"`
	Executed     bool              `gorm:"not null;default:false" json:"executed"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	Reservations []Reservation `gorm:"foreignKey:PromotionID" json:"reservations,omitempty"`
}

// TableName specifies the table name for Promotion model.
func (Promotion) TableName() string {
	return "promotions"
}

// Reservation is the exclusive claim of one accepted badge application by one
// promotion. The partial unique index on badge_application_id over
// non-consumed rows is the storage-level guarantee that a badge is never
// double-booked: two promotions racing to reserve the same badge resolve at
// insert time, not via an application-level check.
type Reservation struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	PromotionID        uint             `gorm:"not null;index" json:"promotion_id"`
	BadgeApplicationID uint             `gorm:"not null;index;uniqueIndex:uniq_active_reservation,where:consumed = false" json:"badge_application_id"`
	BadgeApplication   BadgeApplication `gorm:"foreignKey:BadgeApplicationID" json:"badge_application,omitempty"`
	AssignedBy         uint             `gorm:"not null" json:"assigned_by"`
	Consumed           bool             `gorm:"not null;default:false" json:"consumed"`
	CreatedAt          time.Time        `json:"created_at"`
}

// TableName specifies the table name for Reservation model.
func (Reservation) TableName() string {
	return "reservations"
}
