package templates

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/aimd54/promotion-board/internal/apperrors"
	"github.com/aimd54/promotion-board/internal/models"
	"github.com/aimd54/promotion-board/pkg/logger"
)

// Mock repositories for testing
type mockRepository struct {
	templates map[uint]*models.PromotionTemplate
	nextID    uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{templates: make(map[uint]*models.PromotionTemplate), nextID: 1}
}

func (m *mockRepository) Create(tpl *models.PromotionTemplate) error {
	tpl.ID = m.nextID
	m.nextID++
	stored := *tpl
	m.templates[tpl.ID] = &stored
	return nil
}

func (m *mockRepository) GetByID(id uint) (*models.PromotionTemplate, error) {
	if tpl, ok := m.templates[id]; ok {
		copied := *tpl
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) GetByStep(path models.PromotionPath, from, to string) (*models.PromotionTemplate, error) {
	for _, tpl := range m.templates {
		if tpl.Path == path && tpl.FromLevel == from && tpl.ToLevel == to {
			copied := *tpl
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) List(includeInactive bool) ([]models.PromotionTemplate, error) {
	var result []models.PromotionTemplate
	for _, tpl := range m.templates {
		if includeInactive || tpl.IsActive {
			result = append(result, *tpl)
		}
	}
	return result, nil
}

func (m *mockRepository) Update(tpl *models.PromotionTemplate) error {
	stored := *tpl
	m.templates[tpl.ID] = &stored
	return nil
}

type mockPromotionCounter struct {
	counts map[uint]int64
}

func (m *mockPromotionCounter) CountByTemplate(templateID uint) (int64, error) {
	return m.counts[templateID], nil
}

func newTestService() (*Service, *mockRepository, *mockPromotionCounter) {
	repo := newMockRepository()
	counter := &mockPromotionCounter{counts: make(map[uint]int64)}
	return NewServiceWithInterfaces(repo, counter, logger.NewNop()), repo, counter
}

func goldRule() []models.TemplateRule {
	return []models.TemplateRule{{Category: "technical", Level: models.LevelGold, Count: 2}}
}

func TestCreate_DerivesToLevelFromLadder(t *testing.T) {
	svc, _, _ := newTestService()

	tpl, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     goldRule(),
	}, true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if tpl.ToLevel != "middle" {
		t.Errorf("Expected derived to_level middle, got %q", tpl.ToLevel)
	}
	if !tpl.IsActive {
		t.Error("Expected new template to be active")
	}

	rules, err := tpl.ParsedRules()
	if err != nil {
		t.Fatalf("ParsedRules() failed: %v", err)
	}
	if len(rules) != 1 || rules[0].Count != 2 {
		t.Errorf("Expected stored rules to round-trip, got %+v", rules)
	}
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     goldRule(),
	}, false)
	if apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Errorf("Expected forbidden for non-admin, got %v", err)
	}
}

func TestCreate_RejectsTopOfLadder(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "principal",
		Rules:     goldRule(),
	}, true)
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("Expected validation error above the top rung, got %v", err)
	}
}

func TestCreate_RejectsUnknownPath(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Path:      "astrology",
		FromLevel: "junior",
		Rules:     goldRule(),
	}, true)
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("Expected validation error for unknown path, got %v", err)
	}
}

func TestCreate_ValidatesRules(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name  string
		rules []models.TemplateRule
	}{
		{"empty", nil},
		{"bad category", []models.TemplateRule{{Category: "alchemy", Level: models.LevelGold, Count: 1}}},
		{"bad level", []models.TemplateRule{{Category: "technical", Level: "platinum", Count: 1}}},
		{"zero count", []models.TemplateRule{{Category: "technical", Level: models.LevelGold, Count: 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreateInput{
				Path:      models.PathTechnical,
				FromLevel: "junior",
				Rules:     tc.rules,
			}, true)
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_AcceptsAnyCategoryRule(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     []models.TemplateRule{{Category: models.RuleCategoryAny, Level: models.LevelSilver, Count: 3}},
	}, true)
	if err != nil {
		t.Fatalf("Create() failed for any-category rule: %v", err)
	}
}

func TestUpdateRules_BlockedOnceReferenced(t *testing.T) {
	svc, _, counter := newTestService()

	tpl, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     goldRule(),
	}, true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	newRules := []models.TemplateRule{{Category: "technical", Level: models.LevelGold, Count: 5}}
	if _, err := svc.UpdateRules(context.Background(), tpl.ID, newRules, true); err != nil {
		t.Fatalf("UpdateRules() on unreferenced template failed: %v", err)
	}

	counter.counts[tpl.ID] = 1
	_, err = svc.UpdateRules(context.Background(), tpl.ID, newRules, true)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeTemplateInUse {
		t.Errorf("Expected template_in_use conflict, got %v", err)
	}
}

func TestDeactivate_AllowedEvenWhenReferenced(t *testing.T) {
	svc, _, counter := newTestService()

	tpl, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     goldRule(),
	}, true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	counter.counts[tpl.ID] = 3

	deactivated, err := svc.Deactivate(context.Background(), tpl.ID, true)
	if err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}
	if deactivated.IsActive {
		t.Error("Expected template to be inactive")
	}

	// Idempotent.
	if _, err := svc.Deactivate(context.Background(), tpl.ID, true); err != nil {
		t.Fatalf("Second Deactivate() failed: %v", err)
	}
}

func TestList_HidesInactiveFromNonAdmins(t *testing.T) {
	svc, _, _ := newTestService()

	tpl, err := svc.Create(context.Background(), CreateInput{
		Path:      models.PathTechnical,
		FromLevel: "junior",
		Rules:     goldRule(),
	}, true)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := svc.Deactivate(context.Background(), tpl.ID, true); err != nil {
		t.Fatalf("Deactivate() failed: %v", err)
	}

	visible, err := svc.List(context.Background(), true, false)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("Expected non-admin to see 0 templates, got %d", len(visible))
	}

	all, err := svc.List(context.Background(), true, true)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected admin to see 1 template, got %d", len(all))
	}
}
