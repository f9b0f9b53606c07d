// Package models defines domain models for the promotion board system.
package models

import (
	"time"
)

// BadgeCategory classifies what kind of skill a catalog badge certifies.
type BadgeCategory string

// Badge categories.
const (
	CategoryTechnical      BadgeCategory = "technical"
	CategoryOrganizational BadgeCategory = "organizational"
	CategorySoftskilled    BadgeCategory = "softskilled"
)

// ValidCategory reports whether c is a known badge category.
func ValidCategory(c BadgeCategory) bool {
	switch c {
	case CategoryTechnical, CategoryOrganizational, CategorySoftskilled:
		return true
	}
	return false
}

// BadgeLevel is the weight of a catalog badge.
type BadgeLevel string

// Badge levels.
const (
	LevelGold   BadgeLevel = "gold"
	LevelSilver BadgeLevel = "silver"
	LevelBronze BadgeLevel = "bronze"
)

// ValidLevel reports whether l is a known badge level.
func ValidLevel(l BadgeLevel) bool {
	switch l {
	case LevelGold, LevelSilver, LevelBronze:
		return true
	}
	return false
}

// CatalogBadge statuses.
const (
	CatalogBadgeActive   = "active"
	CatalogBadgeInactive = "inactive"
)

// CatalogBadge is an admin-defined credential type. Editing a badge bumps
// Version; applications snapshot the version they were written against so
// later edits never change a decided application's meaning.
type CatalogBadge struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Category    BadgeCategory `gorm:"size:32;not null;index" json:"category"`
	Level       BadgeLevel    `gorm:"size:16;not null;index" json:"level"`
	Version     int           `gorm:"not null;default:1" json:"version"`
	Status      string        `gorm:"size:16;not null;default:'active'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for CatalogBadge model.
func (CatalogBadge) TableName() string {
	return "catalog_badges"
}

// IsActive reports whether the badge may be referenced by new applications.
func (b *CatalogBadge) IsActive() bool {
	return b.Status == CatalogBadgeActive
}
