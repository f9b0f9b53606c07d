package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/models"
)

// ErrDuplicateReservation is returned by CreateBatch when the partial unique
// index rejects the insert because some badge application already has an
// active reservation. Callers look up the owner to build the structured
// conflict.
var ErrDuplicateReservation = errors.New("reservation already exists for badge application")

// ReservationRepository handles reservation database operations.
type ReservationRepository struct {
	db *DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateBatch inserts all reservations in a single statement. The insert is
// all-or-nothing: if any row collides with the uniq_active_reservation index
// none are written. The index, not a read-then-write check, is what makes two
// concurrent claims of the same badge impossible.
func (r *ReservationRepository) CreateBatch(reservations []models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	err := r.db.Create(&reservations).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReservation
		}
		return err
	}
	return nil
}

// FindActiveByBadgeApplication returns the single non-consumed reservation
// holding the badge application, or nil when the badge is free.
func (r *ReservationRepository) FindActiveByBadgeApplication(badgeApplicationID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.
		Where("badge_application_id = ? AND consumed = ?", badgeApplicationID, false).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// ListByPromotion retrieves the promotion's reservations with the badge
// applications preloaded, in attachment order. The application carries its
// own catalog snapshot, so the live catalog row is not joined in.
func (r *ReservationRepository) ListByPromotion(promotionID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.
		Where("promotion_id = ?", promotionID).
		Preload("BadgeApplication").
		Order("created_at ASC").
		Find(&reservations).Error
	return reservations, err
}

// DeleteByPromotionAndBadges removes the non-consumed reservations a draft
// promotion holds on the given badge applications. Returns the number of
// rows removed.
func (r *ReservationRepository) DeleteByPromotionAndBadges(promotionID uint, badgeApplicationIDs []uint) (int64, error) {
	res := r.db.
		Where("promotion_id = ? AND badge_application_id IN ? AND consumed = ?", promotionID, badgeApplicationIDs, false).
		Delete(&models.Reservation{})
	return res.RowsAffected, res.Error
}

// HasAnyForBadgeApplication reports whether any reservation row, consumed or
// not, references the badge application.
func (r *ReservationRepository) HasAnyForBadgeApplication(badgeApplicationID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Reservation{}).
		Where("badge_application_id = ?", badgeApplicationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActive returns the number of non-consumed reservations.
func (r *ReservationRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Reservation{}).
		Where("consumed = ?", false).
		Count(&count).Error
	return count, err
}
