// Package templates manages promotion rule templates. A template becomes
// immutable the moment any promotion references it; deactivation is the only
// destructive action ever allowed.
package templates

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/repository"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Repository interface for template operations.
type Repository interface {
	Create(tpl *models.PromotionTemplate) error
	GetByID(id uint) (*models.PromotionTemplate, error)
	GetByStep(path models.PromotionPath, from, to string) (*models.PromotionTemplate, error)
	List(includeInactive bool) ([]models.PromotionTemplate, error)
	Update(tpl *models.PromotionTemplate) error
}

// PromotionCounter reports how many promotions reference a template.
type PromotionCounter interface {
	CountByTemplate(templateID uint) (int64, error)
}

// Service handles promotion template administration.
type Service struct {
	repo       Repository
	promotions PromotionCounter
	log        *logger.Logger
}

// NewService creates a new template service.
func NewService(repo *repository.TemplateRepository, promotions *repository.PromotionRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, promotions: promotions, log: log}
}

// NewServiceWithInterfaces creates a new template service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, promotions PromotionCounter, log *logger.Logger) *Service {
	return &Service{repo: repo, promotions: promotions, log: log}
}

// CreateInput holds the fields for a new template. ToLevel is derived from
// the path ladder, never supplied: a promotion always targets the immediate
// next rung.
type CreateInput struct {
	Path      models.PromotionPath
	FromLevel string
	Rules     []models.TemplateRule
}

// List returns templates. Deactivated ones are only visible to admins.
func (s *Service) List(ctx context.Context, includeInactive, isAdmin bool) ([]models.PromotionTemplate, error) {
	return s.repo.List(includeInactive && isAdmin)
}

// Get returns one template.
func (s *Service) Get(ctx context.Context, id uint) (*models.PromotionTemplate, error) {
	tpl, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeTemplateNotFound, "template %d not found", id)
		}
		return nil, apperrors.Internal(err)
	}
	return tpl, nil
}

// Create creates a new template for the next rung above FromLevel. Admin only.
func (s *Service) Create(ctx context.Context, in CreateInput, isAdmin bool) (*models.PromotionTemplate, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage promotion templates")
	}
	if !models.ValidPath(in.Path) {
		return nil, apperrors.Validation("unknown promotion path %q", in.Path)
	}
	toLevel, ok := models.NextLevel(in.Path, in.FromLevel)
	if !ok {
		return nil, apperrors.Validation("no next level above %q on path %q", in.FromLevel, in.Path)
	}
	if err := validateRules(in.Rules); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(in.Rules)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	tpl := &models.PromotionTemplate{
		Path:      in.Path,
		FromLevel: in.FromLevel,
		ToLevel:   toLevel,
		Rules:     raw,
		IsActive:  true,
	}
	if err := s.repo.Create(tpl); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().
		Uint("template_id", tpl.ID).
		Str("path", string(tpl.Path)).
		Str("from", tpl.FromLevel).
		Str("to", tpl.ToLevel).
		Int("rules", len(in.Rules)).
		Msg("Promotion template created")
	return tpl, nil
}

// UpdateRules replaces a template's rules. Rejected with TemplateInUse once
// any promotion references the template; admins create a new template for
// the step instead. Admin only.
func (s *Service) UpdateRules(ctx context.Context, id uint, rules []models.TemplateRule, isAdmin bool) (*models.PromotionTemplate, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage promotion templates")
	}

	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	refs, err := s.promotions.CountByTemplate(id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if refs > 0 {
		return nil, apperrors.Conflict(apperrors.CodeTemplateInUse,
			"template %d is referenced by %d promotion(s) and cannot be edited", id, refs)
	}

	if err := validateRules(rules); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	tpl.Rules = raw
	if err := s.repo.Update(tpl); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().Uint("template_id", tpl.ID).Msg("Promotion template rules updated")
	return tpl, nil
}

// Deactivate hides a template from new promotions. Always allowed, even when
// referenced; existing promotions keep displaying their copied step. Admin only.
func (s *Service) Deactivate(ctx context.Context, id uint, isAdmin bool) (*models.PromotionTemplate, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may manage promotion templates")
	}

	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return tpl, nil
	}

	tpl.IsActive = false
	if err := s.repo.Update(tpl); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().Uint("template_id", tpl.ID).Msg("Promotion template deactivated")
	return tpl, nil
}

func validateRules(rules []models.TemplateRule) error {
	if len(rules) == 0 {
		return apperrors.Validation("a template needs at least one rule")
	}
	for i, r := range rules {
		if r.Category != models.RuleCategoryAny && !models.ValidCategory(models.BadgeCategory(r.Category)) {
			return apperrors.Validation("rule %d: unknown category %q", i, r.Category)
		}
		if !models.ValidLevel(r.Level) {
			return apperrors.Validation("rule %d: unknown level %q", i, r.Level)
		}
		if r.Count < 1 {
			return apperrors.Validation("rule %d: count must be at least 1", i)
		}
	}
	return nil
}
