package repository

import (
	"github.com/aimd54/promotion-board/internal/models"
)

// ApplicationRepository handles badge application database operations.
type ApplicationRepository struct {
	db *DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create creates a new badge application.
func (r *ApplicationRepository) Create(app *models.BadgeApplication) error {
	return r.db.Create(app).Error
}

// GetByID retrieves a badge application by its ID.
func (r *ApplicationRepository) GetByID(id uint) (*models.BadgeApplication, error) {
	var app models.BadgeApplication
	if err := r.db.Preload("CatalogBadge").First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByIDs batch-loads badge applications. The result may be shorter than ids
// when some are missing; callers detect the first missing id themselves.
func (r *ApplicationRepository) GetByIDs(ids []uint) ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	err := r.db.Where("id IN ?", ids).Find(&apps).Error
	return apps, err
}

// ListByApplicant retrieves all applications owned by one engineer.
func (r *ApplicationRepository) ListByApplicant(applicantID uint) ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	err := r.db.
		Where("applicant_id = ?", applicantID).
		Preload("CatalogBadge").
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// ListAll retrieves every application, newest first.
func (r *ApplicationRepository) ListAll() ([]models.BadgeApplication, error) {
	var apps []models.BadgeApplication
	err := r.db.Preload("CatalogBadge").Order("created_at DESC").Find(&apps).Error
	return apps, err
}

// Update saves changes to an existing application.
func (r *ApplicationRepository) Update(app *models.BadgeApplication) error {
	return r.db.Save(app).Error
}

// Delete deletes an application by its ID.
func (r *ApplicationRepository) Delete(id uint) error {
	return r.db.Delete(&models.BadgeApplication{}, id).Error
}
