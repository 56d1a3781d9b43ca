package safecare

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// IncidentReport is the objective record of one incident. The statement is
// the emotion-filtered dictation; the description is generated, never
// dictated.
type IncidentReport struct {
	ID                 string       `json:"id"`
	Timestamp          time.Time    `json:"timestamp"`
	Reporter           string       `json:"reporter"`
	SubjectID          string       `json:"subject_id"`
	SubjectName        string       `json:"subject_name"`
	Type               IncidentType `json:"type"`
	Description        string       `json:"description"`
	Statement          string       `json:"statement,omitempty"`
	Witnesses          []string     `json:"witnesses,omitempty"`
	Injuries           []string     `json:"injuries,omitempty"`
	ImmediateActions   []string     `json:"immediate_actions,omitempty"`
	FollowUpRequired   bool         `json:"follow_up_required"`
	FollowUpDeadline   time.Time    `json:"follow_up_deadline"`
	AuthorityNotified  bool         `json:"authority_notified"`
	SupervisorNotified bool         `json:"supervisor_notified"`
}

// incidentDescriptions are the fixed objective description templates.
var incidentDescriptions = map[IncidentType]string{
	IncidentVerbalAggression: "Bewohner äußerte sich verbal aggressiv gegenüber Pflegekraft.",
	IncidentSexualHarassment: "Bewohner äußerte sich in sexualisierter Weise gegenüber Pflegekraft.",
	IncidentPhysicalViolence: "Bewohner zeigte körperlich aggressives Verhalten gegenüber Pflegekraft.",
	IncidentThreat:           "Bewohner sprach Bedrohungen gegenüber Pflegekraft aus.",
	IncidentNeglect:          "Hinweise auf mögliche Vernachlässigung wurden dokumentiert.",
}

const dementiaContextSentence = " Verhalten steht mutmaßlich im Zusammenhang mit der demenziellen Erkrankung."

// BuildIncidentReport turns a classification plus the staff dictation into
// an objective incident report. The dictation is emotion-filtered and
// mined for witnesses, injuries and already-taken actions; the follow-up
// deadline is fixed at 24h.
func BuildIncidentReport(alert ViolenceAlert, dictation, reporter, subjectID, subjectName string, now time.Time) IncidentReport {
	description := incidentDescriptions[alert.Type]
	if alert.DementiaContext {
		description += dementiaContextSentence
	}

	return IncidentReport{
		ID:                 fmt.Sprintf("INC-%s-%s", now.Format("20060102-150405"), uuid.NewString()[:8]),
		Timestamp:          now,
		Reporter:           reporter,
		SubjectID:          subjectID,
		SubjectName:        subjectName,
		Type:               alert.Type,
		Description:        description,
		Statement:          FilterEmotions(dictation),
		Witnesses:          matcher.FindAll(dictation, rules.WitnessKeywords),
		Injuries:           matcher.FindAll(dictation, rules.InjuryKeywords),
		ImmediateActions:   matcher.FindAll(dictation, rules.ActionKeywords),
		FollowUpRequired:   alert.RequiresIncidentReport,
		FollowUpDeadline:   now.Add(24 * time.Hour),
		AuthorityNotified:  alert.NotifyAuthority,
		SupervisorNotified: alert.NotifySupervisor,
	}
}

// FilterEmotions strips emotional phrases from a dictation and rewrites
// first-person references to "die Pflegekraft". The result is suitable for
// an official report; the original dictation is not retained.
func FilterEmotions(dictation string) string {
	filtered := matcher.Redact(dictation, rules.EmotionPhrases, "")
	for _, replacement := range rules.FirstPersonReplacements {
		filtered = matcher.Redact(filtered, []string{replacement.From}, replacement.To)
	}
	return strings.Join(strings.Fields(filtered), " ")
}

// SupportOption is one staff support offer attached to critical incidents.
type SupportOption struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// SupportOptionsFor lists the support offers for an incident type. Types
// without OfferSupport semantics return nil.
func SupportOptionsFor(incidentType IncidentType) []SupportOption {
	switch incidentType {
	case IncidentThreat, IncidentPhysicalViolence:
		return []SupportOption{
			{Name: "Betriebsärztlicher Dienst", Contact: "Durchwahl 112 (intern)"},
			{Name: "Kriseninterventionsteam", Contact: "24h Rufbereitschaft"},
			{Name: "Berufsgenossenschaft", Contact: "Unfallmeldung innerhalb 3 Tagen"},
			{Name: "Supervision im Team", Contact: "über Pflegedienstleitung"},
		}
	case IncidentSexualHarassment:
		return []SupportOption{
			{Name: "Vertrauensperson", Contact: "über Betriebsrat"},
			{Name: "Mitarbeiterberatung (EAP)", Contact: "anonyme Hotline"},
			{Name: "Supervision im Team", Contact: "über Pflegedienstleitung"},
		}
	case IncidentNeglect:
		return []SupportOption{
			{Name: "Qualitätsmanagement", Contact: "über Heimleitung"},
		}
	default:
		return nil
	}
}
