package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/models"
)

// PromotionRepository handles promotion database operations, including the
// transactional lifecycle writes that must update the promotion, its
// reservations and the underlying applications together.
type PromotionRepository struct {
	db *DB
}

// NewPromotionRepository creates a new promotion repository.
func NewPromotionRepository(db *DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// Create creates a new promotion.
func (r *PromotionRepository) Create(p *models.Promotion) error {
	return r.db.Create(p).Error
}

// GetByID retrieves a promotion with its reservations preloaded.
func (r *PromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var p models.Promotion
	err := r.db.
		Preload("Reservations").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCreator retrieves all promotions created by one engineer.
func (r *PromotionRepository) ListByCreator(creatorID uint) ([]models.Promotion, error) {
	var ps []models.Promotion
	err := r.db.
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&ps).Error
	return ps, err
}

// Update saves changes to an existing promotion.
func (r *PromotionRepository) Update(p *models.Promotion) error {
	return r.db.Save(p).Error
}

// CountByTemplate returns how many promotions reference a template. Used to
// enforce template immutability.
func (r *PromotionRepository) CountByTemplate(templateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Promotion{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

// DeleteDraftCascade deletes a draft promotion and releases every reservation
// it holds in one transaction. The underlying applications keep their
// accepted status and re-enter the reservable pool.
func (r *PromotionRepository) DeleteDraftCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ? AND consumed = ?", id, false).
			Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Promotion{}, id).Error
	})
}

// Approve marks the promotion approved and permanently consumes every held
// reservation: consumed flips to true and the underlying applications move to
// used_in_promotion, all in one transaction. No release is possible after
// this commits.
func (r *PromotionRepository) Approve(p *models.Promotion, adminID uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var badgeIDs []uint
		if err := tx.Model(&models.Reservation{}).
			Where("promotion_id = ?", p.ID).
			Pluck("badge_application_id", &badgeIDs).Error; err != nil {
			return err
		}

		p.Status = models.PromotionApproved
		p.DecidedBy = &adminID
		p.DecidedAt = &now
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Reservation{}).
			Where("promotion_id = ?", p.ID).
			Update("consumed", true).Error; err != nil {
			return err
		}

		if len(badgeIDs) == 0 {
			return nil
		}
		return tx.Model(&models.BadgeApplication{}).
			Where("id IN ?", badgeIDs).
			Update("status", models.ApplicationUsedInPromotion).Error
	})
}

// Reject marks the promotion rejected and releases every held reservation so
// the badges become reservable again.
func (r *PromotionRepository) Reject(p *models.Promotion, adminID uint, reason string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		p.Status = models.PromotionRejected
		p.DecidedBy = &adminID
		p.DecidedAt = &now
		p.RejectReason = reason
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		return tx.Where("promotion_id = ? AND consumed = ?", p.ID, false).
			Delete(&models.Reservation{}).Error
	})
}
