package models

import (
	"encoding/json"
	"time"
)

// PromotionPath is a career ladder a template belongs to.
type PromotionPath string

// Promotion paths.
const (
	PathTechnical  PromotionPath = "technical"
	PathFinancial  PromotionPath = "financial"
	PathManagement PromotionPath = "management"
)

// pathLadders holds the ordered rungs per path. A promotion always targets
// the single immediate next rung, enforced at template creation.
var pathLadders = map[PromotionPath][]string{
	PathTechnical:  {"junior", "middle", "senior", "staff", "principal"},
	PathFinancial:  {"junior", "middle", "senior", "staff", "principal"},
	PathManagement: {"junior", "middle", "senior", "staff", "principal"},
}

// ValidPath reports whether p is a known promotion path.
func ValidPath(p PromotionPath) bool {
	_, ok := pathLadders[p]
	return ok
}

// NextLevel returns the rung immediately above from on the given path.
func NextLevel(path PromotionPath, from string) (string, bool) {
	ladder, ok := pathLadders[path]
	if !ok {
		return "", false
	}
	for i, rung := range ladder {
		if rung == from && i+1 < len(ladder) {
			return ladder[i+1], true
		}
	}
	return "", false
}

// RuleCategoryAny matches badges of the required level in any category.
const RuleCategoryAny = "any"

// TemplateRule is one requirement line of a promotion template: count badges
// of the given level, either in one exact category or across all of them.
type TemplateRule struct {
	Category string     `json:"category"`
	Level    BadgeLevel `json:"level"`
	Count    int        `json:"count"`
}

// PromotionTemplate is the declarative rule set a promotion must satisfy
// before it can be submitted. Templates are immutable once referenced by a
// promotion; deactivation is the only destructive action.
type PromotionTemplate struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Path      PromotionPath   `gorm:"size:32;not null;index" json:"path"`
	FromLevel string          `gorm:"size:32;not null" json:"from_level"`
	ToLevel   string          `gorm:"size:32;not null" json:"to_level"`
	Rules     json.RawMessage `gorm:"type:jsonb;not null" json:"rules"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for PromotionTemplate model.
func (PromotionTemplate) TableName() string {
	return "promotion_templates"
}

// ParsedRules decodes the stored rule list, preserving template order.
func (t *PromotionTemplate) ParsedRules() ([]TemplateRule, error) {
	var rules []TemplateRule
	if err := json.Unmarshal(t.Rules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
