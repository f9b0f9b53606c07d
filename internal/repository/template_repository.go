package repository

import (
	"github.com/aimd54/promotion-board/internal/models"
)

// TemplateRepository handles promotion template database operations.
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new promotion template.
func (r *TemplateRepository) Create(tpl *models.PromotionTemplate) error {
	return r.db.Create(tpl).Error
}

// GetByID retrieves a template by its ID.
func (r *TemplateRepository) GetByID(id uint) (*models.PromotionTemplate, error) {
	var tpl models.PromotionTemplate
	if err := r.db.First(&tpl, id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetByStep retrieves the template for one path/from/to step, if any.
func (r *TemplateRepository) GetByStep(path models.PromotionPath, from, to string) (*models.PromotionTemplate, error) {
	var tpl models.PromotionTemplate
	err := r.db.
		Where("path = ? AND from_level = ? AND to_level = ?", path, from, to).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List retrieves templates, optionally including deactivated ones.
func (r *TemplateRepository) List(includeInactive bool) ([]models.PromotionTemplate, error) {
	var tpls []models.PromotionTemplate
	q := r.db.Order("path ASC, created_at ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&tpls).Error
	return tpls, err
}

// Update saves changes to an existing template.
func (r *TemplateRepository) Update(tpl *models.PromotionTemplate) error {
	return r.db.Save(tpl).Error
}
