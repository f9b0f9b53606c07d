// Package promotions owns the promotion lifecycle and the reservation
// mechanism that attaches accepted badge applications to a draft promotion
// without ever double-booking a badge.
package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/cache"
	"github.com/aimd54/promotion-board/internal/metrics"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/repository"
	"github.com/aimd54/promotion-board/internal/service/eligibility"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Repository interface for promotion operations.
type Repository interface {
	Create(p *models.Promotion) error
	GetByID(id uint) (*models.Promotion, error)
	ListByCreator(creatorID uint) ([]models.Promotion, error)
	Update(p *models.Promotion) error
	DeleteDraftCascade(id uint) error
	Approve(p *models.Promotion, adminID uint, now time.Time) error
	Reject(p *models.Promotion, adminID uint, reason string, now time.Time) error
}

// TemplateRepository interface for template lookups.
type TemplateRepository interface {
	GetByID(id uint) (*models.PromotionTemplate, error)
}

// ApplicationRepository interface for badge application lookups.
type ApplicationRepository interface {
	GetByIDs(ids []uint) ([]models.BadgeApplication, error)
}

// ReservationRepository interface for reservation operations.
type ReservationRepository interface {
	CreateBatch(reservations []models.Reservation) error
	FindActiveByBadgeApplication(badgeApplicationID uint) (*models.Reservation, error)
	ListByPromotion(promotionID uint) ([]models.Reservation, error)
	DeleteByPromotionAndBadges(promotionID uint, badgeApplicationIDs []uint) (int64, error)
	CountActive() (int64, error)
}

// Service handles the promotion state machine and badge reservations.
type Service struct {
	repo         Repository
	templates    TemplateRepository
	applications ApplicationRepository
	reservations ReservationRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	log          *logger.Logger
}

// NewService creates a new promotion service. A nil cache disables the
// validation preview cache.
func NewService(
	repo *repository.PromotionRepository,
	templates *repository.TemplateRepository,
	applications *repository.ApplicationRepository,
	reservations *repository.ReservationRepository,
	previewCache cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		templates:    templates,
		applications: applications,
		reservations: reservations,
		cache:        previewCache,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new promotion service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	repo Repository,
	templates TemplateRepository,
	applications ApplicationRepository,
	reservations ReservationRepository,
	previewCache cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		templates:    templates,
		applications: applications,
		reservations: reservations,
		cache:        previewCache,
		cacheTTL:     cacheTTL,
		log:          log,
	}
}

// Create opens a draft promotion against a template, copying the template's
// step for denormalized display. A missing and an inactive template produce
// the same error so callers cannot probe which templates exist.
func (s *Service) Create(ctx context.Context, templateID, creatorID uint) (*models.Promotion, error) {
	tpl, err := s.templates.GetByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeTemplateNotFound, "template %d not found", templateID)
		}
		return nil, apperrors.Internal(err)
	}
	if !tpl.IsActive {
		return nil, apperrors.NotFound(apperrors.CodeTemplateNotFound, "template %d not found", templateID)
	}

	p := &models.Promotion{
		CreatorID:  creatorID,
		TemplateID: tpl.ID,
		Path:       tpl.Path,
		FromLevel:  tpl.FromLevel,
		ToLevel:    tpl.ToLevel,
		Status:     models.PromotionDraft,
		Executed:   false,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().
		Uint("promotion_id", p.ID).
		Uint("creator_id", creatorID).
		Uint("template_id", tpl.ID).
		Msg("Promotion created")
	return p, nil
}

// Get returns one promotion with reservations. Creators and admins only;
// anyone else sees not-found.
func (s *Service) Get(ctx context.Context, id, requesterID uint, isAdmin bool) (*models.Promotion, error) {
	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != requesterID && !isAdmin {
		return nil, apperrors.NotFound(apperrors.CodePromotionNotFound, "promotion %d not found", id)
	}
	return p, nil
}

// List returns the requester's promotions.
func (s *Service) List(ctx context.Context, requesterID uint) ([]models.Promotion, error) {
	ps, err := s.repo.ListByCreator(requesterID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return ps, nil
}

// Delete removes a draft promotion and releases every reservation it holds.
// The error stays generic on purpose: callers cannot tell a wrong owner from
// a wrong status.
func (s *Service) Delete(ctx context.Context, id, requesterID uint) error {
	p, err := s.load(id)
	if err != nil {
		return err
	}
	if p.CreatorID != requesterID || p.Status != models.PromotionDraft {
		return apperrors.Forbidden("promotion %d cannot be deleted", id)
	}

	if err := s.repo.DeleteDraftCascade(id); err != nil {
		return apperrors.Internal(err)
	}

	s.invalidatePreview(ctx, id)
	s.updateReservationGauge()
	s.log.Info().
		Uint("promotion_id", id).
		Int("released", len(p.Reservations)).
		Msg("Promotion deleted, reservations released")
	return nil
}

// AddResult reports a successful badge attachment.
type AddResult struct {
	Added    int    `json:"added"`
	BadgeIDs []uint `json:"badge_application_ids"`
}

// AddBadges reserves the given accepted badge applications for a draft
// promotion. The whole batch is inserted in one atomic statement: either
// every badge is reserved or none is. A collision with another promotion's
// active reservation returns a structured conflict naming the owner. The
// pre-insert checks give friendly errors but the partial unique index is
// what actually prevents two racing promotions from both succeeding.
func (s *Service) AddBadges(ctx context.Context, id uint, badgeApplicationIDs []uint, requesterID uint) (*AddResult, error) {
	if len(badgeApplicationIDs) == 0 {
		return nil, apperrors.Validation("at least one badge application id is required")
	}

	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != requesterID {
		return nil, apperrors.Forbidden("promotion %d does not belong to the requester", id)
	}
	if p.Status != models.PromotionDraft {
		return nil, apperrors.Conflict(apperrors.CodeNotInDraftStatus,
			"promotion %d is not in draft status", id)
	}

	apps, err := s.applications.GetByIDs(badgeApplicationIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	byID := make(map[uint]*models.BadgeApplication, len(apps))
	for i := range apps {
		byID[apps[i].ID] = &apps[i]
	}
	for _, badgeID := range badgeApplicationIDs {
		app, ok := byID[badgeID]
		if !ok {
			return nil, apperrors.NotFound(apperrors.CodeApplicationNotFound,
				"badge application %d not found", badgeID)
		}
		if app.Status != models.ApplicationAccepted {
			return nil, apperrors.Conflict(apperrors.CodeApplicationNotAccepted,
				"badge application %d is not accepted (status %q)", badgeID, app.Status)
		}
	}

	reservations := make([]models.Reservation, 0, len(badgeApplicationIDs))
	for _, badgeID := range badgeApplicationIDs {
		reservations = append(reservations, models.Reservation{
			PromotionID:        id,
			BadgeApplicationID: badgeID,
			AssignedBy:         requesterID,
		})
	}

	if err := s.reservations.CreateBatch(reservations); err != nil {
		if errors.Is(err, repository.ErrDuplicateReservation) {
			return nil, s.reservationConflict(badgeApplicationIDs)
		}
		return nil, apperrors.Internal(err)
	}

	s.invalidatePreview(ctx, id)
	s.updateReservationGauge()
	s.log.Info().
		Uint("promotion_id", id).
		Int("added", len(badgeApplicationIDs)).
		Msg("Badges reserved for promotion")
	return &AddResult{Added: len(badgeApplicationIDs), BadgeIDs: badgeApplicationIDs}, nil
}

// RemoveBadges releases the promotion's reservations on the given badges.
func (s *Service) RemoveBadges(ctx context.Context, id uint, badgeApplicationIDs []uint, requesterID uint) error {
	if len(badgeApplicationIDs) == 0 {
		return apperrors.Validation("at least one badge application id is required")
	}

	p, err := s.load(id)
	if err != nil {
		return err
	}
	if p.CreatorID != requesterID {
		return apperrors.Forbidden("promotion %d does not belong to the requester", id)
	}
	if p.Status != models.PromotionDraft {
		return apperrors.Conflict(apperrors.CodeNotInDraftStatus,
			"promotion %d is not in draft status", id)
	}

	held := make(map[uint]bool, len(p.Reservations))
	for _, res := range p.Reservations {
		held[res.BadgeApplicationID] = true
	}
	for _, badgeID := range badgeApplicationIDs {
		if !held[badgeID] {
			return apperrors.Conflict(apperrors.CodeBadgeNotInPromotion,
				"badge application %d is not attached to promotion %d", badgeID, id)
		}
	}

	if _, err := s.reservations.DeleteByPromotionAndBadges(id, badgeApplicationIDs); err != nil {
		return apperrors.Internal(err)
	}

	s.invalidatePreview(ctx, id)
	s.updateReservationGauge()
	s.log.Info().
		Uint("promotion_id", id).
		Int("removed", len(badgeApplicationIDs)).
		Msg("Badges released from promotion")
	return nil
}

// Validate computes the eligibility preview for a promotion. Read-only,
// side-effect-free and cheap: the UI polls it after every add/remove, so the
// result is cached until the next mutation.
func (s *Service) Validate(ctx context.Context, id, requesterID uint, isAdmin bool) (*eligibility.Result, error) {
	p, err := s.Get(ctx, id, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	return s.validate(ctx, p)
}

func (s *Service) validate(ctx context.Context, p *models.Promotion) (*eligibility.Result, error) {
	key := previewKey(p.ID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached eligibility.Result
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	start := time.Now()
	tpl, err := s.templates.GetByID(p.TemplateID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	rules, err := tpl.ParsedRules()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	reservations, err := s.reservations.ListByPromotion(p.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	// The application's snapshot, not the live catalog row: a catalog edit
	// must not change what an already-accepted badge means here.
	badges := make([]eligibility.ReservedBadge, 0, len(reservations))
	for _, res := range reservations {
		badges = append(badges, eligibility.ReservedBadge{
			Category: res.BadgeApplication.CatalogBadgeCategory,
			Level:    res.BadgeApplication.CatalogBadgeLevel,
		})
	}

	result := eligibility.Validate(rules, badges)
	metrics.ObserveValidationDuration(time.Since(start).Seconds())

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, string(raw), s.cacheTTL)
		}
	}
	return &result, nil
}

// Submit moves a draft promotion to submitted, gated on the eligibility
// validator. An invalid promotion fails with the missing-requirements list.
func (s *Service) Submit(ctx context.Context, id, requesterID uint) (*models.Promotion, error) {
	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != requesterID {
		return nil, apperrors.Forbidden("promotion %d does not belong to the requester", id)
	}
	if p.Status != models.PromotionDraft {
		return nil, apperrors.InvalidTransition(
			"promotion %d cannot be submitted from status %q", id, p.Status)
	}

	result, err := s.validate(ctx, p)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		missing := make([]apperrors.MissingRequirement, 0, len(result.Missing))
		for _, m := range result.Missing {
			missing = append(missing, apperrors.MissingRequirement{
				Category: m.Category,
				Level:    string(m.Level),
				Count:    m.Count,
			})
		}
		return nil, &apperrors.ValidationFailedError{Missing: missing}
	}

	now := time.Now()
	p.Status = models.PromotionSubmitted
	p.SubmittedAt = &now
	if err := s.repo.Update(p); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidatePreview(ctx, id)
	metrics.RecordPromotionSubmitted()
	s.log.Info().
		Uint("promotion_id", p.ID).
		Uint("creator_id", p.CreatorID).
		Msg("Promotion submitted")
	return p, nil
}

// RecordDecision records the admin decision on a submitted promotion.
// Approval permanently consumes every reservation; rejection releases them
// so the badges become reservable again.
func (s *Service) RecordDecision(ctx context.Context, id, adminID uint, isAdmin bool, decision, rejectReason string) (*models.Promotion, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may decide promotions")
	}

	p, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PromotionSubmitted {
		return nil, apperrors.InvalidTransition(
			"promotion %d cannot be decided from status %q", id, p.Status)
	}

	now := time.Now()
	switch decision {
	case models.DecisionApprove:
		if err := s.repo.Approve(p, adminID, now); err != nil {
			return nil, apperrors.Internal(err)
		}
	case models.DecisionReject:
		if rejectReason == "" {
			return nil, apperrors.Validation("a reason is required to reject a promotion")
		}
		if err := s.repo.Reject(p, adminID, rejectReason, now); err != nil {
			return nil, apperrors.Internal(err)
		}
	default:
		return nil, apperrors.Validation("unknown promotion decision %q", decision)
	}

	s.invalidatePreview(ctx, id)
	s.updateReservationGauge()
	metrics.RecordPromotionDecided(decision)
	s.log.Info().
		Uint("promotion_id", p.ID).
		Uint("admin_id", adminID).
		Str("decision", decision).
		Msg("Promotion decision recorded")
	return p, nil
}

// reservationConflict finds which requested badge is already held and by
// whom. The batch insert failed as a whole, so any active reservation found
// on a requested badge belongs to the winning promotion.
func (s *Service) reservationConflict(badgeApplicationIDs []uint) error {
	metrics.RecordReservationConflict()
	for _, badgeID := range badgeApplicationIDs {
		existing, err := s.reservations.FindActiveByBadgeApplication(badgeID)
		if err != nil {
			return apperrors.Internal(err)
		}
		if existing != nil {
			return &apperrors.ReservationConflictError{
				BadgeApplicationID: badgeID,
				OwningPromotionID:  existing.PromotionID,
			}
		}
	}
	// The collider released its claim between our insert and this lookup;
	// the caller can simply retry.
	return apperrors.Conflict(apperrors.CodeBadgeAlreadyReserved,
		"a requested badge application was reserved concurrently")
}

func (s *Service) load(id uint) (*models.Promotion, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodePromotionNotFound, "promotion %d not found", id)
		}
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

func (s *Service) invalidatePreview(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, previewKey(id)); err != nil {
		s.log.Warn().Err(err).Uint("promotion_id", id).Msg("Failed to invalidate validation preview")
	}
}

func (s *Service) updateReservationGauge() {
	count, err := s.reservations.CountActive()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to count active reservations")
		return
	}
	metrics.SetActiveReservations(float64(count))
}

func previewKey(id uint) string {
	return fmt.Sprintf("promotion:%d:validation", id)
}
