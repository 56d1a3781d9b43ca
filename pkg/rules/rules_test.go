package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func policyRuleIDs() map[string]bool {
	ids := make(map[string]bool, len(PolicyRules))
	for _, rule := range PolicyRules {
		ids[rule.ID] = true
	}
	return ids
}

func TestCoercionRuleTable(t *testing.T) {
	require.NotEmpty(t, CoercionRules)

	for _, rule := range CoercionRules {
		assert.NotNil(t, rule.Pattern)
		assert.NotEmpty(t, rule.Citation, rule.Pattern.String())
		assert.Contains(t, []string{SeverityMedium, SeverityHigh}, rule.Severity, rule.Pattern.String())
		assert.Len(t, rule.Alternatives, 3, rule.Pattern.String())
	}

	assert.Len(t, CoercionImmediateActions, 5)
	assert.Len(t, CoercionDocumentation, 5)
	assert.Equal(t, 24, CoercionDeadlineHours)
	assert.True(t, policyRuleIDs()[CoercionPolicyRuleID])
}

func TestRiskTriggersReferenceExistingPolicyRules(t *testing.T) {
	ids := policyRuleIDs()

	for _, trigger := range RiskTriggers {
		assert.NotEmpty(t, trigger.Keywords, trigger.Name)
		assert.NotEmpty(t, trigger.Action, trigger.Name)
		assert.Contains(t, []string{SeverityMedium, SeverityHigh}, trigger.Level, trigger.Name)
		assert.True(t, ids[trigger.PolicyRuleID], "%s references unknown rule %s", trigger.Name, trigger.PolicyRuleID)
	}
}

func TestPolicyRuleTable(t *testing.T) {
	require.Len(t, PolicyRules, 8)

	seen := make(map[string]bool)
	for _, rule := range PolicyRules {
		assert.False(t, seen[rule.ID], "duplicate rule id %s", rule.ID)
		seen[rule.ID] = true

		assert.True(t, strings.HasPrefix(rule.ID, "DVA-"), rule.ID)
		assert.NotEmpty(t, rule.Triggers, rule.ID)
		assert.Len(t, rule.Requirements, 4, rule.ID)
		assert.NotEmpty(t, rule.Responsible, rule.ID)
	}
}

func TestCapabilityModuleTable(t *testing.T) {
	require.Len(t, CapabilityModules, 6)

	total := 0
	for i, module := range CapabilityModules {
		assert.Equal(t, i+1, module.ID)
		assert.NotEmpty(t, module.Keywords, module.Name)
		assert.Greater(t, module.MaxPoints, 0, module.Name)
		total += module.MaxPoints
	}
	assert.Equal(t, 100, total)

	for topic := 1; topic <= 6; topic++ {
		assert.NotEmpty(t, TopicAreas[topic], "topic %d", topic)
	}
}

// Keyword tables are matched by substring; a table entry that is a
// substring of common clinical vocabulary would flag harmless notes.
func TestSexualizedKeywordsAvoidClinicalCollisions(t *testing.T) {
	harmless := []string{
		"musik", "klinik", "gott sei dank", "blasenkatheter",
		"am abend", "besuch am nachmittag",
	}

	for _, text := range harmless {
		for _, keyword := range SexualizedKeywords {
			assert.NotContains(t, text, keyword, "keyword %q collides with %q", keyword, text)
		}
	}
}

func TestKeywordTablesAreLowercase(t *testing.T) {
	tables := map[string][]string{
		"threat":     ThreatKeywords,
		"physical":   PhysicalViolenceKeywords,
		"sexualized": SexualizedKeywords,
		"neglect":    NeglectKeywords,
		"vulgar":     VulgarKeywords,
		"harmless":   HarmlessKeywords,
		"dementia":   DementiaKeywords,
		"injury":     InjuryKeywords,
		"witness":    WitnessKeywords,
		"action":     ActionKeywords,
		"emotion":    EmotionPhrases,
		"mobility":   MobilityKeywords,
	}

	for name, keywords := range tables {
		require.NotEmpty(t, keywords, name)
		for _, keyword := range keywords {
			assert.Equal(t, strings.ToLower(keyword), keyword, "%s keyword %q must be lowercase", name, keyword)
		}
	}
}

func TestFirstPersonReplacements(t *testing.T) {
	require.Len(t, FirstPersonReplacements, 3)
	for _, replacement := range FirstPersonReplacements {
		assert.NotEmpty(t, replacement.From)
		assert.Contains(t, replacement.To, "Pflegekraft")
	}
}
