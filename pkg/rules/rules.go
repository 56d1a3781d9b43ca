// Package rules holds the static trigger tables the intake classifiers run
// on. Everything here is immutable, loaded once at process start and shared
// read-only across all analyses. Trigger phrases and legal citations are kept
// in German because they match the documentation language of the facilities
// this system serves; identifiers and rule ids are stable API.
package rules

import "regexp"

// Severity labels used by the coercion rule table. They map onto the ordinal
// risk levels in pkg/assessment.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// CoercionPolicyRuleID is the policy rule every coercion detection is tagged
// with. It must match the id of the restrictive-measures rule in PolicyRules.
const CoercionPolicyRuleID = "DVA-006"

// CoercionDeadlineHours is the fixed response deadline for every coercion
// alert, independent of the matched pattern.
const CoercionDeadlineHours = 24

// CoercionRule describes one restrictive-measure indicator: a regex pattern
// searched anywhere in the normalized text, the legal citation it triggers,
// and the alternative interventions that must be offered.
type CoercionRule struct {
	Pattern      *regexp.Regexp
	Citation     string
	Severity     string
	Alternatives []string
}

// CoercionRules is the restrictive-measure indicator table. Order is stable;
// each pattern produces at most one alert per analysis (first match wins).
var CoercionRules = []CoercionRule{
	{
		Pattern:  regexp.MustCompile(`bettgitter`),
		Citation: "BGH XII ZB 24/12 - § 239 StGB Freiheitsberaubung",
		Severity: SeverityHigh,
		Alternatives: []string{
			"Sensor-Matte statt Bettgitter",
			"Niedrigbett (max. 20cm Höhe)",
			"Sturzprophylaxe-Matratze",
		},
	},
	{
		Pattern:  regexp.MustCompile(`fixier(t|ung)`),
		Citation: "BVerfG 2 BvR 309/15 - Richtervorbehalt",
		Severity: SeverityHigh,
		Alternatives: []string{
			"Nachtwache erhöhen",
			"Bewegungsdrang umleiten",
			"Validation statt Fixierung",
		},
	},
	{
		Pattern:  regexp.MustCompile(`gefesselt`),
		Citation: "§ 33 StGB Körperverletzung",
		Severity: SeverityHigh,
		Alternatives: []string{
			"Weiche Polsterung",
			"1:1 Betreuung",
			"Sedierung nur nach ärztl. Anordnung",
		},
	},
	{
		Pattern:  regexp.MustCompile(`gurt(e|en)?`),
		Citation: "§ 240 StGB Nötigung",
		Severity: SeverityHigh,
		Alternatives: []string{
			"Sitzkissen mit Lagerungshilfe",
			"Angepasster Rollstuhl",
			"Therapeutische Sitzschale",
		},
	},
	{
		Pattern:  regexp.MustCompile(`tür.{0,20}(abgeschlossen|verschlossen)`),
		Citation: "§ 239 StGB Freiheitsberaubung",
		Severity: SeverityHigh,
		Alternatives: []string{
			"GPS-Tracker",
			"Demenz-WG mit freiheitlichem Konzept",
			"Begleitung bei Spaziergängen",
		},
	},
	{
		Pattern:  regexp.MustCompile(`nicht (hinaus|raus)`),
		Citation: "§ 1834 BGB - 24h Anmeldepflicht",
		Severity: SeverityMedium,
		Alternatives: []string{
			"Begleiteter Ausgang",
			"Strukturierter Tagesablauf",
			"Beschäftigungsangebote",
		},
	},
	{
		Pattern:  regexp.MustCompile(`festgehalten`),
		Citation: "§ 240 StGB Nötigung",
		Severity: SeverityMedium,
		Alternatives: []string{
			"Deeskalation",
			"Raum zum Abreagieren",
			"Bezugspflege intensivieren",
		},
	},
	{
		Pattern:  regexp.MustCompile(`eingesperrt`),
		Citation: "§ 239 StGB Freiheitsberaubung",
		Severity: SeverityHigh,
		Alternatives: []string{
			"Offene Türen mit Sensor",
			"Betreutes Wohnen",
			"Bauliche Anpassungen",
		},
	},
}

// CoercionImmediateActions is the fixed mandatory checklist attached to every
// coercion alert regardless of the matched pattern.
var CoercionImmediateActions = []string{
	"Anmeldung beim Betreuungsgericht innerhalb 24h",
	"Richterlicher Beschluss innerhalb 72h einholen",
	"Rechtfertigenden Notstand (§ 34 StGB) prüfen",
	"Heimleitung informieren",
	"Angehörige kontaktieren",
}

// CoercionDocumentation is the fixed documentation checklist attached to
// every coercion alert.
var CoercionDocumentation = []string{
	"Gefährdungslage dokumentieren",
	"Alternativen erwogen und dokumentiert",
	"Zeitpunkt der Antragstellung",
	"Unterschrift Heimleitung",
	"Bestätigung Gerichtsbeschluss",
}

// RiskTrigger maps a named clinical risk to its trigger keywords, severity,
// recommended action and the policy rule it references.
type RiskTrigger struct {
	Name         string
	Keywords     []string
	Level        string
	Action       string
	PolicyRuleID string
}

// RiskTriggers is the risk-assessment trigger table. Per trigger, the first
// matching keyword wins and no further keywords of the same trigger are
// evaluated.
var RiskTriggers = []RiskTrigger{
	{
		Name:         "Sturz",
		Keywords:     []string{"sturz", "gestürzt", "hingefallen"},
		Level:        SeverityHigh,
		Action:       "Sturzprotokoll anlegen, Arzt informieren, Sturzrisikoassessment",
		PolicyRuleID: "DVA-001",
	},
	{
		Name:         "Dekubitus",
		Keywords:     []string{"dekubitus", "druckstelle", "rötung kategorie"},
		Level:        SeverityHigh,
		Action:       "Wunddokumentation, Weichlagerung, Wundbehandlung nach Standard",
		PolicyRuleID: "DVA-002",
	},
	{
		Name:         "Mangelernährung",
		Keywords:     []string{"mangelernährung", "gewichtsverlust", "bmi unter"},
		Level:        SeverityMedium,
		Action:       "MNA-Screening, Ernährungsplan, ggf. Arzt/Diätassistenz",
		PolicyRuleID: "DVA-004",
	},
	{
		Name:         "Exsikkose",
		Keywords:     []string{"dehydration", "trinkt zu wenig", "trockene haut"},
		Level:        SeverityMedium,
		Action:       "Trinkprotokoll, Flüssigkeitsbilanz, ggf. i.v. Flüssigkeit",
		PolicyRuleID: "DVA-004",
	},
	{
		Name:         "Schmerzen",
		Keywords:     []string{"schmerz", "schmerzmittel", "leidet"},
		Level:        SeverityMedium,
		Action:       "Schmerzassessment (NRS/BESD), Schmerzmanagement, Arzt",
		PolicyRuleID: "DVA-003",
	},
	{
		Name:         "Infektion",
		Keywords:     []string{"infektion", "fieber", "mrsa", "vre"},
		Level:        SeverityHigh,
		Action:       "Isolation, Hygieneplan, Gesundheitsamt melden",
		PolicyRuleID: "DVA-008",
	},
}

// PolicyRule describes one institutional standard-operating-procedure rule.
type PolicyRule struct {
	ID           string
	Title        string
	Triggers     []string
	Requirements []string
	Responsible  string
}

// PolicyRules is the procedural rule table. A rule is applicable iff any of
// its trigger keywords occurs in the text.
var PolicyRules = []PolicyRule{
	{
		ID:       "DVA-001",
		Title:    "Sturzprophylaxe",
		Triggers: []string{"sturz", "gestürzt", "sturzrisiko", "unsicher beim gehen"},
		Requirements: []string{
			"Sturzrisikoassessment innerhalb 24h",
			"Einrichtung Sturzprotokoll",
			"Angehörige informieren",
			"Ggf. Arztbrief bei Verletzung",
		},
		Responsible: "Pflegefachkraft/Wohnbereichsleitung",
	},
	{
		ID:       "DVA-002",
		Title:    "Dekubitusprophylaxe",
		Triggers: []string{"dekubitus", "druckstelle", "bettlägerig", "rollstuhl"},
		Requirements: []string{
			"Dekubitusrisikoassessment (Braden/Norton)",
			"Lagerungsplan erstellen (2h-Rhythmus)",
			"Weichlagerung dokumentieren",
			"Hautinspektion täglich",
		},
		Responsible: "Pflegefachkraft",
	},
	{
		ID:       "DVA-003",
		Title:    "Medikamentenmanagement",
		Triggers: []string{"medikament", "tabletten", "insulin", "schmerzmittel"},
		Requirements: []string{
			"Aktuelle Medikationsliste",
			"Ärztliche Verordnung vorliegen",
			"6-R-Regel beachten",
			"Doppelkontrolle bei Hochrisiko-Medikamenten",
		},
		Responsible: "Examinierte Pflegekraft",
	},
	{
		ID:       "DVA-004",
		Title:    "Ernährungsmanagement",
		Triggers: []string{"mangelernährung", "gewichtsverlust", "trinkt zu wenig", "schluckstörung"},
		Requirements: []string{
			"Screening mit MNA/PEMU",
			"Trinkprotokoll bei Dehydratation",
			"Logopädie bei Dysphagie",
			"Wöchentliche Gewichtskontrolle",
		},
		Responsible: "Pflegefachkraft",
	},
	{
		ID:       "DVA-005",
		Title:    "Wundmanagement",
		Triggers: []string{"wunde", "ulcus", "verbandswechsel"},
		Requirements: []string{
			"Wunddokumentation mit Foto",
			"Ärztliche Anordnung für Behandlung",
			"Steril arbeiten",
			"Verlaufskontrolle wöchentlich",
		},
		Responsible: "Wundexpertin/Pflegefachkraft",
	},
	{
		ID:       "DVA-006",
		Title:    "Freiheitsentziehende Maßnahmen",
		Triggers: []string{"bettgitter", "fixierung", "gurte", "tür verschlossen"},
		Requirements: []string{
			"Sofort Richterbeschluss einholen",
			"Alternativen dokumentieren",
			"§ 34 StGB Notstand prüfen",
			"Täglich überprüfen und dokumentieren",
		},
		Responsible: "Heimleitung/Pflegedienstleitung",
	},
	{
		ID:       "DVA-007",
		Title:    "Demenzielle Erkrankung",
		Triggers: []string{"demenz", "verwirrt", "desorientiert", "vergisst"},
		Requirements: []string{
			"Demenz-Screening (MMST/DemTect)",
			"Biografie-Arbeit",
			"Validation anwenden",
			"Angehörigenschulung anbieten",
		},
		Responsible: "Pflegefachkraft/Gerontopsych. Fachkraft",
	},
	{
		ID:       "DVA-008",
		Title:    "Hygiene & Infektionsschutz",
		Triggers: []string{"infektion", "mrsa", "vre", "fieber", "durchfall"},
		Requirements: []string{
			"Isolationsmaßnahmen nach RKI",
			"Hygieneplan einhalten",
			"Gesundheitsamt melden (bei meldepflichtigen Erkrankungen)",
			"Personal schulen",
		},
		Responsible: "Hygienebeauftragte/PDL",
	},
}

// CapabilityModuleRule describes one module of the capability taxonomy.
// PointsPerKeyword is fixed; a module with zero keyword matches is omitted
// from the assessment.
type CapabilityModuleRule struct {
	ID        int
	Name      string
	Keywords  []string
	MaxPoints int
}

// PointsPerCapabilityKeyword is the per-keyword score used to derive module
// points (capped at the module maximum).
const PointsPerCapabilityKeyword = 3

// CapabilityModules is the fixed six-module capability taxonomy.
var CapabilityModules = []CapabilityModuleRule{
	{ID: 1, Name: "Mobilität", Keywords: []string{"gehen", "laufen", "stehen", "transfers", "rollstuhl", "sturz"}, MaxPoints: 15},
	{ID: 2, Name: "Kognitive und kommunikative Fähigkeiten", Keywords: []string{"verwirrt", "demenz", "orientierung", "sprache", "gedächtnis"}, MaxPoints: 15},
	{ID: 3, Name: "Verhaltensweisen", Keywords: []string{"aggressiv", "unruhig", "weglauftendenz", "ablehnung"}, MaxPoints: 15},
	{ID: 4, Name: "Selbstversorgung", Keywords: []string{"waschen", "anziehen", "essen", "trinken", "toilette"}, MaxPoints: 30},
	{ID: 5, Name: "Umgang mit krankheitsspezifischen Anforderungen", Keywords: []string{"medikamente", "insulin", "kompression", "katheter", "wunde"}, MaxPoints: 15},
	{ID: 6, Name: "Gestaltung des Alltagslebens", Keywords: []string{"beschäftigung", "hobbies", "kontakte", "tagesstruktur"}, MaxPoints: 10},
}

// TopicAreas is the fixed six-topic taxonomy for structured information
// entries, keyed by topic number.
var TopicAreas = map[int]string{
	1: "Kognition und Kommunikation",
	2: "Mobilität und Beweglichkeit",
	3: "Krankheitsbezogene Anforderungen und Belastungen",
	4: "Selbstversorgung",
	5: "Leben in sozialen Beziehungen",
	6: "Haushaltsführung",
}

// MobilityKeywords gates the mobility structured-info entry.
var MobilityKeywords = []string{"gehen", "laufen", "sturz", "rollstuhl"}

// Violence/safety trigger word sets. Matched by case-insensitive substring
// like the clinical trigger tables, so stems such as "dumm" also hit
// inflected forms ("dumme", "dummer").
var (
	// ThreatKeywords signal life-endangering behavior.
	ThreatKeywords = []string{
		"umbringen", "töten", "abstechen", "erwürgen",
		"messer", "waffe", "töte dich", "mach dich fertig",
		"bring dich um", "warte nur", "das bereust du",
	}

	// PhysicalViolenceKeywords signal physical assault on staff or residents.
	PhysicalViolenceKeywords = []string{
		"geschlagen", "getreten", "gebissen", "gekratzt",
		"gewürgt", "gestoßen", "gespuckt", "geboxt",
		"schlag", "tritt", "biss", "kratzer", "würgen",
		"stoß", "spucke", "attacke", "angriff", "überfall",
		"verletzt", "blut", "blutung", "prellung", "hämatom",
	}

	// SexualizedKeywords is the unified multi-language sexualized-language
	// set (German, Turkish, Polish, Arabic transliteration). Duplicates
	// across the source lists are removed. Short tokens that are substrings
	// of everyday German ("am", "sik" in Musik, "nik" in Klinik, "got" in
	// Gott, "kuss", "blasen" in Blasenkatheter) are excluded; they would
	// flag nearly any note.
	SexualizedKeywords = []string{
		"fotze", "fick", "bumsen", "vögeln", "schwanz", "pimmel",
		"titten", "möse", "muschi", "wichsen",
		"nutte", "hure", "schlampe", "flittchen", "orospu",
		"kurwa", "puta", "putain", "cazzo", "pička",
		"kahpe", "sürtük", "yarrak", "siktir",
		"pizda", "chuj", "jebać", "pierdolić", "cipka", "cycki",
		"sharmoota", "ayar", "zeb", "sorm", "baghl",
	}

	// NeglectKeywords signal suspected neglect of a resident.
	NeglectKeywords = []string{
		"nicht gewaschen", "nicht gefüttert", "vergessen",
		"ignoriert", "vernachlässigt", "liegengelassen",
		"dreckig", "verdurstet", "verhungert", "dekubitus",
		"wundliegen", "durchliegen",
	}

	// VulgarKeywords are profanity without targeted aggression.
	VulgarKeywords = []string{
		"scheiße", "scheisse", "kacke", "mist", "verdammt",
		"fuck", "shit", "piss", "arsch", "arschloch",
	}

	// HarmlessKeywords are typical dementia-related insults; only reported
	// as harmless when a dementia context is present.
	HarmlessKeywords = []string{
		"dumm", "doof", "blöd", "idiot", "depp", "trottel",
		"spasti", "mongo", "schwachkopf", "dummkopf",
	}
)

// DementiaKeywords indicate a dementia context in the surrounding note.
var DementiaKeywords = []string{
	"demenz", "alzheimer", "verwirrt", "desorientiert",
	"orientierungslos", "kognitiv eingeschränkt",
}

// Incident dictation extraction tables. Staff dictate incident statements
// under stress; these stems pull the objective facts out of the dictation.
var (
	InjuryKeywords = []string{
		"kratzer", "prellung", "hämatom", "blutung", "schwellung",
		"bissspur", "schürfwunde", "wunde", "schmerzen",
	}

	WitnessKeywords = []string{
		"kollegin", "kollege", "zeuge", "zeugin",
		"mitbewohner", "angehörige", "besucher",
	}

	ActionKeywords = []string{
		"arzt gerufen", "polizei gerufen", "erste hilfe",
		"raum verlassen", "deeskaliert", "getrennt",
		"dokumentiert", "gemeldet",
	}
)

// EmotionPhrases are removed from dictations before they enter an incident
// report; reports must stay objective.
var EmotionPhrases = []string{
	"ich habe angst", "ich fürchte mich", "ich bin schockiert",
	"ich kann nicht mehr", "ich zittere", "schrecklich",
	"furchtbar", "traumatisch",
}

// FirstPersonReplacements objectivate first-person dictations. Replacement
// is word-boundary based, so "ich" never fires inside "mich".
var FirstPersonReplacements = []struct {
	From string
	To   string
}{
	{"mich", "die Pflegekraft"},
	{"mir", "der Pflegekraft"},
	{"ich", "die Pflegekraft"},
}
