// Package applications owns the badge application lifecycle: an engineer's
// draft claim against a catalog badge, its submission, and the admin review
// that accepts or rejects it.
package applications

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/metrics"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/internal/repository"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Repository interface for application operations.
type Repository interface {
	Create(app *models.BadgeApplication) error
	GetByID(id uint) (*models.BadgeApplication, error)
	ListByApplicant(applicantID uint) ([]models.BadgeApplication, error)
	ListAll() ([]models.BadgeApplication, error)
	Update(app *models.BadgeApplication) error
	Delete(id uint) error
}

// CatalogRepository interface for catalog badge lookups.
type CatalogRepository interface {
	GetByID(id uint) (*models.CatalogBadge, error)
}

// ReservationRepository interface for reservation lookups.
type ReservationRepository interface {
	FindActiveByBadgeApplication(badgeApplicationID uint) (*models.Reservation, error)
	HasAnyForBadgeApplication(badgeApplicationID uint) (bool, error)
}

// Service handles the badge application state machine.
type Service struct {
	repo         Repository
	catalog      CatalogRepository
	reservations ReservationRepository
	log          *logger.Logger
}

// NewService creates a new application service.
func NewService(
	repo *repository.ApplicationRepository,
	catalog *repository.CatalogRepository,
	reservations *repository.ReservationRepository,
	log *logger.Logger,
) *Service {
	return &Service{repo: repo, catalog: catalog, reservations: reservations, log: log}
}

// NewServiceWithInterfaces creates a new application service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	repo Repository,
	catalog CatalogRepository,
	reservations ReservationRepository,
	log *logger.Logger,
) *Service {
	return &Service{repo: repo, catalog: catalog, reservations: reservations, log: log}
}

// View is an application together with its derived effective status.
type View struct {
	models.BadgeApplication
	EffectiveStatus models.ApplicationStatus `json:"effective_status"`
}

// CreateInput holds the fields for a new draft application.
type CreateInput struct {
	CatalogBadgeID    uint
	DateOfApplication time.Time
	DateOfFulfillment *time.Time
	Reason            string
}

// Create opens a new draft application for the requester, snapshotting the
// catalog badge's current version, category and level. The snapshot is what
// eligibility validation reads later, so catalog edits after this point do
// not change the application's meaning.
func (s *Service) Create(ctx context.Context, in CreateInput, applicantID uint) (*models.BadgeApplication, error) {
	badge, err := s.activeCatalogBadge(in.CatalogBadgeID)
	if err != nil {
		return nil, err
	}
	if err := validateDates(in.DateOfApplication, in.DateOfFulfillment); err != nil {
		return nil, err
	}

	app := &models.BadgeApplication{
		ApplicantID:       applicantID,
		DateOfApplication: in.DateOfApplication,
		DateOfFulfillment: in.DateOfFulfillment,
		Reason:            in.Reason,
		Status:            models.ApplicationDraft,
	}
	app.SnapshotCatalogBadge(badge)
	if err := s.repo.Create(app); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().
		Uint("application_id", app.ID).
		Uint("applicant_id", applicantID).
		Uint("catalog_badge_id", badge.ID).
		Int("catalog_badge_version", badge.Version).
		Msg("Badge application created")
	return app, nil
}

// Get returns one application with its effective status. Owners and admins
// only; anyone else sees not-found rather than learning the record exists.
func (s *Service) Get(ctx context.Context, id, requesterID uint, isAdmin bool) (*View, error) {
	app, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != requesterID && !isAdmin {
		return nil, apperrors.NotFound(apperrors.CodeApplicationNotFound, "badge application %d not found", id)
	}
	return s.view(app)
}

// List returns the requester's applications, or every application when an
// admin asks for all.
func (s *Service) List(ctx context.Context, requesterID uint, isAdmin, all bool) ([]View, error) {
	var (
		apps []models.BadgeApplication
		err  error
	)
	if all && isAdmin {
		apps, err = s.repo.ListAll()
	} else {
		apps, err = s.repo.ListByApplicant(requesterID)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	views := make([]View, 0, len(apps))
	for i := range apps {
		v, err := s.view(&apps[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateInput patches a draft application. Nil fields are left unchanged.
type UpdateInput struct {
	CatalogBadgeID    *uint
	DateOfApplication *time.Time
	DateOfFulfillment *time.Time
	ClearFulfillment  bool
	Reason            *string
}

// Update patches an application. Only the owner may patch, and only while
// the application is still a draft; the admin exception applies to review
// decisions, not to editing someone else's claim. Changing the catalog badge
// reference re-checks the badge is active and re-snapshots its version,
// category and level.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput, requesterID uint, isAdmin bool) (*models.BadgeApplication, error) {
	app, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != requesterID {
		return nil, apperrors.Forbidden("badge application %d cannot be edited", id)
	}
	if app.Status != models.ApplicationDraft {
		return nil, apperrors.Forbidden("badge application %d cannot be edited", id)
	}

	if in.CatalogBadgeID != nil && *in.CatalogBadgeID != app.CatalogBadgeID {
		badge, err := s.activeCatalogBadge(*in.CatalogBadgeID)
		if err != nil {
			return nil, err
		}
		app.SnapshotCatalogBadge(badge)
	}
	if in.DateOfApplication != nil {
		app.DateOfApplication = *in.DateOfApplication
	}
	if in.ClearFulfillment {
		app.DateOfFulfillment = nil
	} else if in.DateOfFulfillment != nil {
		app.DateOfFulfillment = in.DateOfFulfillment
	}
	if in.Reason != nil {
		app.Reason = *in.Reason
	}

	if err := validateDates(app.DateOfApplication, app.DateOfFulfillment); err != nil {
		return nil, err
	}

	if err := s.repo.Update(app); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info().Uint("application_id", app.ID).Msg("Badge application updated")
	return app, nil
}

// Submit moves a draft to submitted. This is the last transition available
// to the applicant; afterwards the record is read-only for them.
func (s *Service) Submit(ctx context.Context, id, requesterID uint) (*models.BadgeApplication, error) {
	app, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != requesterID {
		return nil, apperrors.Forbidden("badge application %d cannot be submitted", id)
	}
	if app.Status != models.ApplicationDraft {
		return nil, apperrors.InvalidTransition(
			"badge application %d cannot be submitted from status %q", id, app.Status)
	}

	// The catalog badge may have been deactivated since the draft was opened.
	if _, err := s.activeCatalogBadge(app.CatalogBadgeID); err != nil {
		return nil, err
	}

	now := time.Now()
	app.Status = models.ApplicationSubmitted
	app.SubmittedAt = &now
	if err := s.repo.Update(app); err != nil {
		return nil, apperrors.Internal(err)
	}

	metrics.RecordApplicationSubmitted()
	s.log.Info().
		Uint("application_id", app.ID).
		Uint("applicant_id", app.ApplicantID).
		Msg("Badge application submitted")
	return app, nil
}

// Review records the admin decision on a submitted application. Rejection
// requires a reason.
func (s *Service) Review(ctx context.Context, id, reviewerID uint, isAdmin bool, decision, reason string) (*models.BadgeApplication, error) {
	if !isAdmin {
		return nil, apperrors.Forbidden("only admins may review badge applications")
	}

	app, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationSubmitted {
		return nil, apperrors.InvalidTransition(
			"badge application %d cannot be reviewed from status %q", id, app.Status)
	}

	switch decision {
	case models.DecisionAccept:
		app.Status = models.ApplicationAccepted
	case models.DecisionReject:
		if reason == "" {
			return nil, apperrors.Validation("a reason is required to reject a badge application")
		}
		app.Status = models.ApplicationRejected
	default:
		return nil, apperrors.Validation("unknown review decision %q", decision)
	}

	now := time.Now()
	app.ReviewerID = &reviewerID
	app.ReviewedAt = &now
	app.ReviewReason = reason
	if err := s.repo.Update(app); err != nil {
		return nil, apperrors.Internal(err)
	}

	metrics.RecordApplicationReviewed(decision)
	s.log.Info().
		Uint("application_id", app.ID).
		Uint("reviewer_id", reviewerID).
		Str("decision", decision).
		Msg("Badge application reviewed")
	return app, nil
}

// Delete removes an application. Only the owner may delete, and only while
// it is a draft. A draft should never hold reservations, but the guard stays
// in case the invariant is ever violated elsewhere.
func (s *Service) Delete(ctx context.Context, id, requesterID uint, isAdmin bool) error {
	app, err := s.load(id)
	if err != nil {
		return err
	}
	if app.ApplicantID != requesterID {
		return apperrors.Forbidden("badge application %d cannot be deleted", id)
	}
	if app.Status != models.ApplicationDraft {
		return apperrors.Forbidden("badge application %d cannot be deleted", id)
	}

	referenced, err := s.reservations.HasAnyForBadgeApplication(id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if referenced {
		return apperrors.Conflict(apperrors.CodeReferencedByPromotion,
			"badge application %d is referenced by a promotion", id)
	}

	if err := s.repo.Delete(id); err != nil {
		return apperrors.Internal(err)
	}

	s.log.Info().Uint("application_id", id).Msg("Badge application deleted")
	return nil
}

func (s *Service) load(id uint) (*models.BadgeApplication, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeApplicationNotFound, "badge application %d not found", id)
		}
		return nil, apperrors.Internal(err)
	}
	return app, nil
}

func (s *Service) view(app *models.BadgeApplication) (*View, error) {
	reserved := false
	if app.Status == models.ApplicationAccepted {
		res, err := s.reservations.FindActiveByBadgeApplication(app.ID)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		reserved = res != nil
	}
	return &View{BadgeApplication: *app, EffectiveStatus: app.EffectiveStatus(reserved)}, nil
}

func (s *Service) activeCatalogBadge(id uint) (*models.CatalogBadge, error) {
	badge, err := s.catalog.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(apperrors.CodeCatalogBadgeNotFound, "catalog badge %d not found", id)
		}
		return nil, apperrors.Internal(err)
	}
	if !badge.IsActive() {
		return nil, apperrors.Conflict(apperrors.CodeCatalogBadgeInactive, "catalog badge %d is inactive", id)
	}
	return badge, nil
}

func validateDates(application time.Time, fulfillment *time.Time) error {
	if application.IsZero() {
		return apperrors.Validation("date of application is required")
	}
	if fulfillment != nil && fulfillment.Before(application) {
		return apperrors.Validation("date of fulfillment must not precede date of application")
	}
	return nil
}
