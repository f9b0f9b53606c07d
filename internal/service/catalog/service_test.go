package catalog

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Mock repository for testing
type mockRepository struct {
	badges map[uint]*models.CatalogBadge
	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{badges: make(map[uint]*models.CatalogBadge), nextID: 1}
}

func (m *mockRepository) Create(badge *models.CatalogBadge) error {
	for _, b := range m.badges {
		if b.Name == badge.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	badge.ID = m.nextID
	m.nextID++
	stored := *badge
	m.badges[badge.ID] = &stored
	return nil
}

func (m *mockRepository) GetByID(id uint) (*models.CatalogBadge, error) {
	if badge, ok := m.badges[id]; ok {
		copied := *badge
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) GetByName(name string) (*models.CatalogBadge, error) {
	for _, b := range m.badges {
		if b.Name == name {
			copied := *b
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) List(includeInactive bool) ([]models.CatalogBadge, error) {
	var result []models.CatalogBadge
	for _, b := range m.badges {
		if includeInactive || b.Status == models.CatalogBadgeActive {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockRepository) Update(badge *models.CatalogBadge) error {
	stored := *badge
	m.badges[badge.ID] = &stored
	return nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewServiceWithInterfaces(repo, logger.NewNop()), repo
}

func validInput() CreateInput {
	return CreateInput{
		Name:        "kubernetes-operator",
		Description: "Wrote a production operator",
		Category:    models.CategoryTechnical,
		Level:       models.LevelGold,
	}
}

func TestCreate_StartsAtVersionOne(t *testing.T) {
	svc, _ := newTestService()

	badge, err := svc.Create(context.Background(), validInput(), true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if badge.Version != 1 {
		t.Errorf("Expected version 1, got %d", badge.Version)
	}
	if badge.Status != models.CatalogBadgeActive {
		t.Errorf("Expected active status, got %q", badge.Status)
	}
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), validInput(), false)
	if apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Errorf("Expected forbidden for non-admin, got %v", err)
	}
}

func TestCreate_ValidatesCategoryAndLevel(t *testing.T) {
	svc, _ := newTestService()

	in := validInput()
	in.Category = "managerial"
	if _, err := svc.Create(context.Background(), in, true); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("Expected validation error for bad category, got %v", err)
	}

	in = validInput()
	in.Level = "platinum"
	if _, err := svc.Create(context.Background(), in, true); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("Expected validation error for bad level, got %v", err)
	}

	in = validInput()
	in.Name = ""
	if _, err := svc.Create(context.Background(), in, true); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("Expected validation error for empty name, got %v", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), validInput(), true); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	_, err := svc.Create(context.Background(), validInput(), true)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeDuplicateName {
		t.Errorf("Expected duplicate_name conflict, got %v", err)
	}
}

func TestUpdate_BumpsVersionOnChange(t *testing.T) {
	svc, _ := newTestService()
	badge, err := svc.Create(context.Background(), validInput(), true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	desc := "Rewritten criteria"
	updated, err := svc.Update(context.Background(), badge.ID, UpdateInput{Description: &desc}, true)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Expected version bump to 2, got %d", updated.Version)
	}

	// A no-op patch leaves the version alone.
	same, err := svc.Update(context.Background(), badge.ID, UpdateInput{Description: &desc}, true)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if same.Version != 2 {
		t.Errorf("Expected version to stay at 2 for no-op update, got %d", same.Version)
	}
}

func TestDeactivate_IsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	badge, err := svc.Create(context.Background(), validInput(), true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	deactivated, err := svc.Deactivate(context.Background(), badge.ID, true)
	if err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	if deactivated.Status != models.CatalogBadgeInactive {
		t.Errorf("Expected inactive status, got %q", deactivated.Status)
	}
	version := deactivated.Version

	again, err := svc.Deactivate(context.Background(), badge.ID, true)
	if err != nil {
		t.Fatalf("Second Deactivate() failed: %v", err)
	}
	if again.Version != version {
		t.Errorf("Expected repeated deactivation to change nothing, version went %d -> %d", version, again.Version)
	}
}

func TestList_HidesInactiveFromNonAdmins(t *testing.T) {
	svc, _ := newTestService()
	badge, err := svc.Create(context.Background(), validInput(), true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := svc.Deactivate(context.Background(), badge.ID, true); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}

	visible, err := svc.List(context.Background(), true, false)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("Expected non-admin to see 0 badges, got %d", len(visible))
	}

	all, err := svc.List(context.Background(), true, true)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected admin to see 1 badge, got %d", len(all))
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 42)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("Expected not-found, got %v", err)
	}
}
