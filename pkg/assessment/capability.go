package assessment

import (
	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// ScoreCapabilities grades the six-module capability taxonomy against a
// note. Points are fixed per matched keyword and capped at the module
// maximum; modules without any match are omitted.
func ScoreCapabilities(note string) []CapabilityModule {
	var modules []CapabilityModule

	for _, rule := range rules.CapabilityModules {
		matched := matcher.FindAll(note, rule.Keywords)
		if len(matched) == 0 {
			continue
		}

		points := rules.PointsPerCapabilityKeyword * len(matched)
		if points > rule.MaxPoints {
			points = rule.MaxPoints
		}

		modules = append(modules, CapabilityModule{
			ID:              rule.ID,
			Name:            rule.Name,
			Points:          points,
			MaxPoints:       rule.MaxPoints,
			Category:        dependencyCategory(points, rule.MaxPoints),
			MatchedKeywords: matched,
		})
	}

	return modules
}

// dependencyCategory grades a module by its points ratio. The thresholds
// are quartile bounds over points/max.
func dependencyCategory(points, maxPoints int) DependencyCategory {
	ratio := float64(points) / float64(maxPoints)
	switch {
	case ratio < 0.25:
		return Independent
	case ratio < 0.50:
		return MostlyIndependent
	case ratio < 0.75:
		return MostlyDependent
	default:
		return Dependent
	}
}

// CollectStructuredInfo derives topic-area entries from a note. Currently
// only the mobility topic is auto-detected; the remaining topic areas are
// filled in by hand in the documentation system.
func CollectStructuredInfo(note string) []StructuredInfoEntry {
	var entries []StructuredInfoEntry

	if _, ok := matcher.ContainsAny(note, rules.MobilityKeywords); ok {
		entries = append(entries, StructuredInfoEntry{
			Topic:      2,
			Title:      rules.TopicAreas[2],
			Text:       "Automatisch erkannt aus Aufnahmegespräch",
			Risks:      []string{"Sturzrisiko"},
			Resources:  []string{"Motivation vorhanden"},
			Preference: "Selbstständigkeit erhalten",
			PlannedMeasures: []string{
				"Physiotherapie prüfen",
				"Hilfsmittelversorgung",
			},
		})
	}

	return entries
}
