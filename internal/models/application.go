package models

import (
	"time"
)

// ApplicationStatus is the lifecycle state of a badge application.
type ApplicationStatus string

// Badge application statuses.
const (
	ApplicationDraft           ApplicationStatus = "draft"
	ApplicationSubmitted       ApplicationStatus = "submitted"
	ApplicationAccepted        ApplicationStatus = "accepted"
	ApplicationRejected        ApplicationStatus = "rejected"
	ApplicationUsedInPromotion ApplicationStatus = "used_in_promotion"
)

// Review decisions.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// BadgeApplication is one engineer's dated, reasoned claim against a catalog
// badge, subject to admin review. The stored Status column never reflects an
// undecided reservation; while a draft promotion holds the badge the
// reservation row is the source of truth and EffectiveStatus derives the
// reserved state from it. Status becomes used_in_promotion permanently only
// when the owning promotion is approved.
//
// CatalogBadgeVersion, CatalogBadgeCategory and CatalogBadgeLevel are
// snapshotted together when the application references a badge. Eligibility
// validation reads the snapshot, never the live catalog row, so later catalog
// edits cannot change what an already-decided application means.
type BadgeApplication struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	ApplicantID          uint              `gorm:"not null;index" json:"applicant_id"`
	CatalogBadgeID       uint              `gorm:"not null;index" json:"catalog_badge_id"`
	CatalogBadge         CatalogBadge      `gorm:"foreignKey:CatalogBadgeID" json:"catalog_badge,omitempty"`
	CatalogBadgeVersion  int               `gorm:"not null" json:"catalog_badge_version"`
	CatalogBadgeCategory BadgeCategory     `gorm:"size:32;not null" json:"catalog_badge_category"`
	CatalogBadgeLevel    BadgeLevel        `gorm:"size:16;not null" json:"catalog_badge_level"`
	DateOfApplication    time.Time         `gorm:"not null" json:"date_of_application"`
	DateOfFulfillment    *time.Time        `json:"date_of_fulfillment,omitempty"`
	Reason               string            `gorm:"type:text" json:"reason"`
	Status               ApplicationStatus `gorm:"size:32;not null;index;default:'draft'" json:"status"`
	SubmittedAt          *time.Time        `json:"submitted_at,omitempty"`
	ReviewerID           *uint             `json:"reviewer_id,omitempty"`
	ReviewedAt           *time.Time        `json:"reviewed_at,omitempty"`
	ReviewReason         string            `gorm:"type:text" json:"review_reason,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// TableName specifies the table name for BadgeApplication model.
func (BadgeApplication) TableName() string {
	return "badge_applications"
}

// SnapshotCatalogBadge pins the referenced badge's version, category and
// level onto the application.
func (a *BadgeApplication) SnapshotCatalogBadge(badge *CatalogBadge) {
	a.CatalogBadgeID = badge.ID
	a.CatalogBadgeVersion = badge.Version
	a.CatalogBadgeCategory = badge.Category
	a.CatalogBadgeLevel = badge.Level
}

// EffectiveStatus returns the status callers should see. An accepted
// application with an active reservation reports used_in_promotion even
// though the column still says accepted.
func (a *BadgeApplication) EffectiveStatus(reserved bool) ApplicationStatus {
	if a.Status == ApplicationAccepted && reserved {
		return ApplicationUsedInPromotion
	}
	return a.Status
}
