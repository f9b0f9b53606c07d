package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/promotion-board/internal/models"
)

func reserved(category models.BadgeCategory, level models.BadgeLevel, n int) []ReservedBadge {
	badges := make([]ReservedBadge, n)
	for i := range badges {
		badges[i] = ReservedBadge{Category: category, Level: level}
	}
	return badges
}

func TestValidate_ExactMatchIgnoresHigherLevels(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: "technical", Level: models.LevelSilver, Count: 6},
	}
	badges := append(
		reserved(models.CategoryTechnical, models.LevelSilver, 6),
		reserved(models.CategoryTechnical, models.LevelGold, 3)...,
	)

	result := Validate(rules, badges)

	require.Len(t, result.Requirements, 1)
	assert.Equal(t, 6, result.Requirements[0].Current, "gold badges must not count toward a silver rule")
	assert.True(t, result.Requirements[0].Satisfied)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Missing)
}

func TestValidate_AnyWildcardSumsAcrossCategories(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: models.RuleCategoryAny, Level: models.LevelGold, Count: 1},
	}
	badges := reserved(models.CategoryOrganizational, models.LevelGold, 1)

	result := Validate(rules, badges)

	require.Len(t, result.Requirements, 1)
	assert.Equal(t, 1, result.Requirements[0].Current)
	assert.True(t, result.IsValid)
}

func TestValidate_SpecificRuleNeverMatchesOtherCategories(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: "technical", Level: models.LevelGold, Count: 1},
	}
	badges := reserved(models.CategoryOrganizational, models.LevelGold, 2)

	result := Validate(rules, badges)

	assert.False(t, result.IsValid)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, 1, result.Missing[0].Count)
}

func TestValidate_FullTemplateScenario(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: "technical", Level: models.LevelSilver, Count: 6},
		{Category: models.RuleCategoryAny, Level: models.LevelGold, Count: 1},
		{Category: models.RuleCategoryAny, Level: models.LevelSilver, Count: 4},
	}

	badges := reserved(models.CategoryTechnical, models.LevelSilver, 6)
	badges = append(badges, reserved(models.CategoryOrganizational, models.LevelGold, 1)...)
	badges = append(badges, reserved(models.CategorySoftskilled, models.LevelSilver, 4)...)

	result := Validate(rules, badges)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Missing)

	// Remove one softskilled silver badge. The six technical silvers are
	// already consumed by the first rule, so the "any silver" rule only
	// sees the remaining three.
	short := reserved(models.CategoryTechnical, models.LevelSilver, 6)
	short = append(short, reserved(models.CategoryOrganizational, models.LevelGold, 1)...)
	short = append(short, reserved(models.CategorySoftskilled, models.LevelSilver, 3)...)

	result = Validate(rules, short)
	assert.False(t, result.IsValid)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, Missing{Category: "any", Level: models.LevelSilver, Count: 1}, result.Missing[0])
}

func TestValidate_BadgeNeverCountedTwiceAcrossRules(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: "technical", Level: models.LevelGold, Count: 1},
		{Category: models.RuleCategoryAny, Level: models.LevelGold, Count: 1},
	}
	badges := reserved(models.CategoryTechnical, models.LevelGold, 1)

	result := Validate(rules, badges)

	require.Len(t, result.Requirements, 2)
	assert.True(t, result.Requirements[0].Satisfied)
	assert.False(t, result.Requirements[1].Satisfied, "the single gold badge was spent on the first rule")
	assert.False(t, result.IsValid)
}

func TestValidate_MissingShortfallArithmetic(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: models.RuleCategoryAny, Level: models.LevelSilver, Count: 4},
	}
	badges := reserved(models.CategorySoftskilled, models.LevelSilver, 3)

	result := Validate(rules, badges)

	assert.False(t, result.IsValid)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, Missing{Category: "any", Level: models.LevelSilver, Count: 1}, result.Missing[0])
}

func TestValidate_RequirementOrderFollowsTemplate(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: models.RuleCategoryAny, Level: models.LevelBronze, Count: 2},
		{Category: "technical", Level: models.LevelGold, Count: 1},
		{Category: "softskilled", Level: models.LevelSilver, Count: 3},
	}

	result := Validate(rules, nil)

	require.Len(t, result.Requirements, 3)
	assert.Equal(t, "any", result.Requirements[0].Category)
	assert.Equal(t, "technical", result.Requirements[1].Category)
	assert.Equal(t, "softskilled", result.Requirements[2].Category)
}

func TestValidate_EmptyRulesIsValid(t *testing.T) {
	result := Validate(nil, reserved(models.CategoryTechnical, models.LevelGold, 2))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Requirements)
}

func TestValidate_Idempotent(t *testing.T) {
	rules := []models.TemplateRule{
		{Category: "technical", Level: models.LevelSilver, Count: 2},
		{Category: models.RuleCategoryAny, Level: models.LevelGold, Count: 1},
	}
	badges := reserved(models.CategoryTechnical, models.LevelSilver, 2)

	first := Validate(rules, badges)
	second := Validate(rules, badges)
	assert.Equal(t, first, second)
}
