// Package catalog provides admin management of the catalog badge store.
package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/repository"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Repository interface for catalog badge operations.
type Repository interface {
	Create(badge *models.CatalogBadge) error
	GetByID(id uint) (*models.CatalogBadge, error)
	GetByName(name string) (*models.CatalogBadge, error)
	List(includeInactive bool) ([]models.CatalogBadge, error)
	Update(badge *models.CatalogBadge) error
}

// Service handles catalog badge administration.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a new catalog service.
func NewService(repo *repository.CatalogRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// NewServiceWithInterfaces creates a new catalog service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateInput holds the fields for a new catalog badge.
type CreateInput struct {
	Name        string
	Description string
	Category    models.BadgeCategory
	Level       models.BadgeLevel
}

// List returns catalog badges. Inactive badges are only visible to admins.
func (s *Service) List(ctx context.Context, includeInactive, isAdmin bool) ([]models.CatalogBadge, error) {
	return s.repo.List(includeInactive && isAdmin)
}

// Get returns one catalog badge.
func (s *Service) Get(ctx context.Context, id uint) (*models.CatalogBadge, error) {
	badge, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeCatalogBadgeNotFound, "catalog badge %d not found", id)
		}
		return nil, apperrors.Internal(err)
	}
	return badge, nil
}

// Create creates a new catalog badge at version 1. Admin only.
func (s *Service) Create(ctx context.Context, in CreateInput, isAdmin bool) (*models.CatalogBadge, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage the badge catalog")
	}
	if in.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperrors.Validation("unknown badge category %q", in.Category)
	}
	if !models.ValidLevel(in.Level) {
		return nil, apperrors.Validation("unknown badge level %q", in.Level)
	}

	badge := &models.CatalogBadge{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Level:       in.Level,
		Version:     1,
		Status:      models.CatalogBadgeActive,
	}
	if err := s.repo.Create(badge); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(apperrors.CodeDuplicateName, "catalog badge %q already exists", in.Name)
		}
		return nil, apperrors.Internal(err)
	}

	s.log.Info().
		Uint("catalog_badge_id", badge.ID).
		Str("name", badge.Name).
		Msg("Catalog badge created")
	return badge, nil
}

// UpdateInput patches a catalog badge. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *models.BadgeCategory
	Level       *models.BadgeLevel
}

// Update edits a catalog badge and bumps its version so existing
// applications keep pointing at the definition they were written against.
// Admin only.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, isAdmin bool) (*models.CatalogBadge, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage the badge catalog")
	}

	badge, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Name != nil && *in.Name != badge.Name {
		if *in.Name == "" {
			return nil, apperrors.Validation("name is required")
		}
		badge.Name = *in.Name
		changed = true
	}
	if in.Description != nil && *in.Description != badge.Description {
		badge.Description = *in.Description
		changed = true
	}
	if in.Category != nil && *in.Category != badge.Category {
		if !models.ValidCategory(*in.Category) {
			return nil, apperrors.Validation("unknown badge category %q", *in.Category)
		}
		badge.Category = *in.Category
		changed = true
	}
	if in.Level != nil && *in.Level != badge.Level {
		if !models.ValidLevel(*in.Level) {
			return nil, apperrors.Validation("unknown badge level %q", *in.Level)
		}
		badge.Level = *in.Level
		changed = true
	}

	if !changed {
		return badge, nil
	}

	badge.Version++
	if err := s.repo.Update(badge); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().
		Uint("catalog_badge_id", badge.ID).
		Int("version", badge.Version).
		Msg("Catalog badge updated")
	return badge, nil
}

// Deactivate hides a catalog badge from new applications. Existing
// applications are unaffected; deletion is never offered. Admin only.
func (s *Service) Deactivate(ctx context.Context, id uint, isAdmin bool) (*models.CatalogBadge, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage the badge catalog")
	}

	badge, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if badge.Status == models.CatalogBadgeInactive {
		return badge, nil
	}

	badge.Status = models.CatalogBadgeInactive
	if err := s.repo.Update(badge); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().Uint("catalog_badge_id", badge.ID).Msg("Catalog badge deactivated")
	return badge, nil
}
