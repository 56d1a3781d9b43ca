// Package safecare classifies violence and safety incidents in free-text
// notes about resident behavior toward staff, and turns them into
// objective incident reports. Classification runs a strict priority chain;
// a dementia context can soften sexualized language but never physical
// violence or threats.
package safecare

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"careintake-server/pkg/errors"
	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// ViolenceCategory is the ordinal incident category; higher is more
// severe. Neglect suspicions are not a category of their own, they
// classify as CRITICAL_PHYSICAL with the neglect incident type.
type ViolenceCategory int

const (
	CategoryHarmless ViolenceCategory = iota
	CategoryVulgar
	CategoryCriticalVerbal
	CategoryCriticalPhysical
	CategoryEmergency
)

var violenceCategoryLabels = [...]string{
	"harmless", "vulgar", "critical_verbal", "critical_physical", "emergency",
}

func (c ViolenceCategory) String() string {
	if c < CategoryHarmless || c > CategoryEmergency {
		return "unknown"
	}
	return violenceCategoryLabels[c]
}

// ParseViolenceCategory maps a label back to its ordinal value.
func ParseViolenceCategory(label string) (ViolenceCategory, error) {
	for i, candidate := range violenceCategoryLabels {
		if candidate == label {
			return ViolenceCategory(i), nil
		}
	}
	return CategoryHarmless, errors.NewUnknownCategory(label).WithField("enum", "violence_category")
}

func (c ViolenceCategory) MarshalJSON() ([]byte, error) {
	if c < CategoryHarmless || c > CategoryEmergency {
		return nil, errors.NewUnknownCategory(c.String()).WithField("enum", "violence_category")
	}
	return json.Marshal(c.String())
}

func (c *ViolenceCategory) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseViolenceCategory(label)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IncidentType names the reportable nature of an incident independently of
// its severity category.
type IncidentType int

const (
	IncidentVerbalAggression IncidentType = iota
	IncidentSexualHarassment
	IncidentPhysicalViolence
	IncidentThreat
	IncidentNeglect
)

var incidentTypeLabels = [...]string{
	"verbal_aggression", "sexual_harassment",
	"physical_violence", "threat", "neglect_suspicion",
}

func (t IncidentType) String() string {
	if t < IncidentVerbalAggression || t > IncidentNeglect {
		return "unknown"
	}
	return incidentTypeLabels[t]
}

// ParseIncidentType maps a label back to its ordinal value.
func ParseIncidentType(label string) (IncidentType, error) {
	for i, candidate := range incidentTypeLabels {
		if candidate == label {
			return IncidentType(i), nil
		}
	}
	return IncidentVerbalAggression, errors.NewUnknownCategory(label).WithField("enum", "incident_type")
}

func (t IncidentType) MarshalJSON() ([]byte, error) {
	if t < IncidentVerbalAggression || t > IncidentNeglect {
		return nil, errors.NewUnknownCategory(t.String()).WithField("enum", "incident_type")
	}
	return json.Marshal(t.String())
}

func (t *IncidentType) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseIncidentType(label)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AlertLevel is the escalation level attached to a classification.
type AlertLevel int

const (
	LevelNone AlertLevel = iota
	LevelInfo
	LevelWarning
	LevelCritical
	LevelEmergency
)

var alertLevelLabels = [...]string{"none", "info", "warning", "critical", "emergency"}

func (l AlertLevel) String() string {
	if l < LevelNone || l > LevelEmergency {
		return "unknown"
	}
	return alertLevelLabels[l]
}

// ParseAlertLevel maps a label back to its ordinal value.
func ParseAlertLevel(label string) (AlertLevel, error) {
	for i, candidate := range alertLevelLabels {
		if candidate == label {
			return AlertLevel(i), nil
		}
	}
	return LevelNone, errors.NewUnknownCategory(label).WithField("enum", "alert_level")
}

func (l AlertLevel) MarshalJSON() ([]byte, error) {
	if l < LevelNone || l > LevelEmergency {
		return nil, errors.NewUnknownCategory(l.String()).WithField("enum", "alert_level")
	}
	return json.Marshal(l.String())
}

func (l *AlertLevel) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseAlertLevel(label)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Sanitization tokens. Sexualized language gets its own token so the
// reader of a forwarded note knows what was removed without seeing it.
const (
	offensiveToken  = "[BELEIDIGENDE ÄUSSERUNG]"
	sexualizedToken = "[SEXUALISIERTE ÄUSSERUNG]"
)

// ViolenceAlert is the classification of one behavior note. SanitizedText
// carries the forwardable form of the note; classification itself always
// reasons over OriginalText.
type ViolenceAlert struct {
	Category               ViolenceCategory `json:"category"`
	Level                  AlertLevel       `json:"level"`
	Type                   IncidentType     `json:"incident_type"`
	MatchedKeywords        []string         `json:"matched_keywords,omitempty"`
	DementiaContext        bool             `json:"dementia_context"`
	OriginalText           string           `json:"original_text"`
	SanitizedText          string           `json:"sanitized_text"`
	Timestamp              time.Time        `json:"timestamp"`
	RequiresIncidentReport bool             `json:"requires_incident_report"`
	NotifyAuthority        bool             `json:"notify_authority"`
	NotifySupervisor       bool             `json:"notify_supervisor"`
	OfferSupport           bool             `json:"offer_support"`
	Recommendation         string           `json:"recommendation"`
}

// classificationRule is one step of the priority chain: the keyword set
// that fires it and the builder that shapes the alert. A rule with
// needsDementia set only fires inside a dementia context.
type classificationRule struct {
	name          string
	keywords      []string
	needsDementia bool
	build         func(text string, matched []string, dementia bool) ViolenceAlert
}

// Classifier runs the priority chain over behavior notes.
type Classifier struct {
	logger *logrus.Entry
	chain  []classificationRule
	now    func() time.Time
}

// NewClassifier creates a classifier with the full priority chain. Chain
// order is the contract: threats before physical violence before
// sexualized language before neglect before profanity before dementia
// insults.
func NewClassifier(logger *logrus.Logger) *Classifier {
	c := &Classifier{
		logger: logger.WithField("component", "violence_classifier"),
		now:    time.Now,
	}
	c.chain = []classificationRule{
		{name: "threat", keywords: rules.ThreatKeywords, build: buildThreat},
		{name: "physical", keywords: rules.PhysicalViolenceKeywords, build: buildPhysical},
		{name: "sexualized", keywords: rules.SexualizedKeywords, build: buildSexualized},
		{name: "neglect", keywords: rules.NeglectKeywords, build: buildNeglect},
		{name: "vulgar", keywords: rules.VulgarKeywords, build: buildVulgar},
		{name: "harmless", keywords: rules.HarmlessKeywords, needsDementia: true, build: buildHarmless},
	}
	return c
}

// Classify runs the chain; the first rule with a keyword match decides the
// category. Total over arbitrary input: a note matching nothing returns
// the baseline alert with the text passed through untouched.
func (c *Classifier) Classify(text string, knownDementia bool) ViolenceAlert {
	dementia := knownDementia
	if !dementia {
		_, dementia = matcher.ContainsAny(text, rules.DementiaKeywords)
	}

	for _, rule := range c.chain {
		if rule.needsDementia && !dementia {
			continue
		}
		matched := matcher.FindAll(text, rule.keywords)
		if len(matched) == 0 {
			continue
		}

		alert := rule.build(text, matched, dementia)
		alert.OriginalText = text
		alert.Timestamp = c.now()

		c.logger.WithFields(logrus.Fields{
			"rule":     rule.name,
			"category": alert.Category.String(),
			"level":    alert.Level.String(),
			"dementia": dementia,
			"matches":  len(matched),
		}).Info("Behavior note classified")

		return alert
	}

	return ViolenceAlert{
		Category:        CategoryHarmless,
		Level:           LevelNone,
		Type:            IncidentVerbalAggression,
		DementiaContext: dementia,
		OriginalText:    text,
		SanitizedText:   text,
		Timestamp:       c.now(),
	}
}

func buildThreat(text string, matched []string, dementia bool) ViolenceAlert {
	return ViolenceAlert{
		Category:               CategoryEmergency,
		Level:                  LevelEmergency,
		Type:                   IncidentThreat,
		MatchedKeywords:        matched,
		DementiaContext:        dementia,
		SanitizedText:          matcher.Redact(text, matched, offensiveToken),
		RequiresIncidentReport: true,
		NotifyAuthority:        true,
		NotifySupervisor:       true,
		OfferSupport:           true,
		Recommendation:         "Sofort Hilfe holen, Raum verlassen, Polizei (110) verständigen",
	}
}

func buildPhysical(text string, matched []string, dementia bool) ViolenceAlert {
	// Physical violence is never downgraded, dementia context or not.
	return ViolenceAlert{
		Category:               CategoryCriticalPhysical,
		Level:                  LevelCritical,
		Type:                   IncidentPhysicalViolence,
		MatchedKeywords:        matched,
		DementiaContext:        dementia,
		SanitizedText:          matcher.Redact(text, matched, offensiveToken),
		RequiresIncidentReport: true,
		NotifyAuthority:        true,
		NotifySupervisor:       true,
		OfferSupport:           true,
		Recommendation:         "Eigenschutz beachten, Vorfall dokumentieren, ärztliche Untersuchung anbieten",
	}
}

func buildSexualized(text string, matched []string, dementia bool) ViolenceAlert {
	alert := ViolenceAlert{
		Category:               CategoryCriticalVerbal,
		Level:                  LevelCritical,
		Type:                   IncidentSexualHarassment,
		MatchedKeywords:        matched,
		DementiaContext:        dementia,
		SanitizedText:          matcher.Redact(text, matched, sexualizedToken),
		RequiresIncidentReport: true,
		NotifyAuthority:        true,
		NotifySupervisor:       true,
		OfferSupport:           true,
		Recommendation:         "Grenzen klar benennen, Vorfall melden, Unterstützungsangebote nutzen",
	}
	if dementia {
		// Only this category softens under dementia.
		alert.Level = LevelWarning
		alert.NotifyAuthority = false
		alert.Recommendation = "Verhalten im Kontext der Demenzerkrankung bewerten, Pflegeplanung anpassen"
	}
	return alert
}

func buildNeglect(text string, matched []string, dementia bool) ViolenceAlert {
	// Neglect evidence is never redacted; the wording is the evidence.
	// Supervisor and quality management handle it, no authority report.
	return ViolenceAlert{
		Category:               CategoryCriticalPhysical,
		Level:                  LevelCritical,
		Type:                   IncidentNeglect,
		MatchedKeywords:        matched,
		DementiaContext:        dementia,
		SanitizedText:          text,
		RequiresIncidentReport: true,
		NotifySupervisor:       true,
		Recommendation:         "Qualitätsmanagement einschalten, Pflegedokumentation sichern",
	}
}

func buildVulgar(text string, matched []string, dementia bool) ViolenceAlert {
	level := LevelWarning
	if dementia {
		level = LevelInfo
	}
	return ViolenceAlert{
		Category:        CategoryVulgar,
		Level:           level,
		Type:            IncidentVerbalAggression,
		MatchedKeywords: matched,
		DementiaContext: dementia,
		SanitizedText:   matcher.Redact(text, matched, offensiveToken),
		Recommendation:  "Dokumentieren, nicht persönlich nehmen, bei Häufung im Team ansprechen",
	}
}

func buildHarmless(text string, matched []string, dementia bool) ViolenceAlert {
	// Only reached inside a dementia context; without one the note falls
	// through to the baseline result.
	return ViolenceAlert{
		Category:        CategoryHarmless,
		Level:           LevelNone,
		Type:            IncidentVerbalAggression,
		MatchedKeywords: matched,
		DementiaContext: dementia,
		SanitizedText:   matcher.Redact(text, matched, offensiveToken),
		Recommendation:  "Äußerung im Rahmen der Demenzerkrankung, Validation anwenden, nicht persönlich nehmen",
	}
}
