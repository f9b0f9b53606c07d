// Package eligibility implements the rule-matching engine that decides
// whether a promotion's reserved badges satisfy its template.
package eligibility

import (
	"github.com/aimd54/promotion-board/internal/models"
)

// ReservedBadge is the category/level pair of one reserved badge. Consumed
// and non-consumed reservations both count while attached.
type ReservedBadge struct {
	Category models.BadgeCategory `json:"category"`
	Level    models.BadgeLevel    `json:"level"`
}

// Requirement is the per-rule breakdown of one template rule. Current is the
// number of reserved badges available to this rule after earlier rules took
// their share.
type Requirement struct {
	Category  string            `json:"category"`
	Level     models.BadgeLevel `json:"level"`
	Required  int               `json:"required"`
	Current   int               `json:"current"`
	Satisfied bool              `json:"satisfied"`
}

// Missing is one unmet rule, expressed as the shortfall.
type Missing struct {
	Category string            `json:"category"`
	Level    models.BadgeLevel `json:"level"`
	Count    int               `json:"count"`
}

// Result is the full validation breakdown. Requirements preserve template
// rule order so the UI renders deterministically.
type Result struct {
	IsValid      bool          `json:"is_valid"`
	Requirements []Requirement `json:"requirements"`
	Missing      []Missing     `json:"missing"`
}

type countKey struct {
	category models.BadgeCategory
	level    models.BadgeLevel
}

// drawOrder fixes which category an "any" rule drains first, so validation
// is deterministic regardless of badge insertion order.
var drawOrder = []models.BadgeCategory{
	models.CategoryTechnical,
	models.CategoryOrganizational,
	models.CategorySoftskilled,
}

// Validate is a pure function mapping template rules and reserved badges to
// a per-rule breakdown. Matching is exact: a gold badge never substitutes
// for a silver requirement, and a category-specific rule never counts badges
// from other categories. A rule with category "any" draws from every
// category at its exact level. The count map is built once per call and
// rules consume from it in template order, so one physical badge is never
// counted toward two rules in the same pass.
func Validate(rules []models.TemplateRule, badges []ReservedBadge) Result {
	counts := make(map[countKey]int, len(badges))
	for _, b := range badges {
		counts[countKey{b.Category, b.Level}]++
	}

	result := Result{
		IsValid:      true,
		Requirements: make([]Requirement, 0, len(rules)),
		Missing:      []Missing{},
	}

	for _, rule := range rules {
		var current int
		if rule.Category == models.RuleCategoryAny {
			for _, c := range drawOrder {
				current += counts[countKey{c, rule.Level}]
			}
		} else {
			current = counts[countKey{models.BadgeCategory(rule.Category), rule.Level}]
		}

		satisfied := current >= rule.Count
		result.Requirements = append(result.Requirements, Requirement{
			Category:  rule.Category,
			Level:     rule.Level,
			Required:  rule.Count,
			Current:   current,
			Satisfied: satisfied,
		})

		if !satisfied {
			result.IsValid = false
			result.Missing = append(result.Missing, Missing{
				Category: rule.Category,
				Level:    rule.Level,
				Count:    rule.Count - current,
			})
		}

		// Consume what this rule used so later rules cannot count the
		// same badges again.
		take := rule.Count
		if current < take {
			take = current
		}
		if rule.Category == models.RuleCategoryAny {
			for _, c := range drawOrder {
				if take == 0 {
					break
				}
				key := countKey{c, rule.Level}
				n := counts[key]
				if n > take {
					n = take
				}
				counts[key] -= n
				take -= n
			}
		} else {
			counts[countKey{models.BadgeCategory(rule.Category), rule.Level}] -= take
		}
	}

	return result
}
