package repository

import (
	"github.com/aimd54/promotion-board/internal/models"
)

// CatalogRepository handles catalog badge database operations.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Create creates a new catalog badge.
func (r *CatalogRepository) Create(badge *models.CatalogBadge) error {
	return r.db.Create(badge).Error
}

// GetByID retrieves a catalog badge by its ID.
func (r *CatalogRepository) GetByID(id uint) (*models.CatalogBadge, error) {
	var badge models.CatalogBadge
	if err := r.db.First(&badge, id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetByName retrieves a catalog badge by its unique name.
func (r *CatalogRepository) GetByName(name string) (*models.CatalogBadge, error) {
	var badge models.CatalogBadge
	if err := r.db.Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// List retrieves catalog badges, optionally including inactive ones.
func (r *CatalogRepository) List(includeInactive bool) ([]models.CatalogBadge, error) {
	var badges []models.CatalogBadge
	q := r.db.Order("created_at ASC")
	if !includeInactive {
		q = q.Where("status = ?", models.CatalogBadgeActive)
	}
	err := q.Find(&badges).Error
	return badges, err
}

// Update saves changes to an existing catalog badge.
func (r *CatalogRepository) Update(badge *models.CatalogBadge) error {
	return r.db.Save(badge).Error
}
