package assessment

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"careintake-server/pkg/matcher"
	"careintake-server/pkg/rules"
)

// PolicyChecker evaluates the procedural rule table against a note. A rule
// is applicable iff any of its trigger keywords occurs; non-applicable
// rules produce no check at all.
type PolicyChecker struct {
	logger *logrus.Entry
}

// NewPolicyChecker creates a policy checker.
func NewPolicyChecker(logger *logrus.Logger) *PolicyChecker {
	return &PolicyChecker{
		logger: logger.WithField("component", "policy_checker"),
	}
}

// Check returns one check per applicable rule, in rule-table order. Every
// new check starts non-compliant, carries the rule's remediation steps and
// responsible role and is due 24h after detection.
func (p *PolicyChecker) Check(note string, now time.Time) []PolicyCheck {
	var checks []PolicyCheck

	for _, rule := range rules.PolicyRules {
		matched := matcher.FindAll(note, rule.Triggers)
		if len(matched) == 0 {
			continue
		}

		findings := make([]string, 0, len(matched))
		for _, keyword := range matched {
			findings = append(findings, fmt.Sprintf("Trigger erkannt: '%s'", keyword))
		}

		checks = append(checks, PolicyCheck{
			RuleID:          rule.ID,
			Title:           rule.Title,
			Compliant:       false,
			Findings:        findings,
			RequiredActions: append([]string(nil), rule.Requirements...),
			Responsible:     rule.Responsible,
			Deadline:        now.Add(24 * time.Hour),
		})

		p.logger.WithFields(logrus.Fields{
			"rule_id":  rule.ID,
			"title":    rule.Title,
			"triggers": matched,
		}).Info("Policy rule applicable")
	}

	return checks
}
