// Package alerter evaluates finished runs against configured thresholds and
// triggers notifications when a run falls short.
package alerter

import (
	"fmt"
	"log"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

// Alerter is responsible for evaluating run summaries against predefined
// rules and triggering notifications if rules are violated.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
}

// New creates a new Alerter instance.
func New(rules []config.AlerterRule, notifier model.Notifier) *Alerter {
	return &Alerter{rules: rules, notifier: notifier}
}

// Evaluate checks one finished run against every rule and sends one
// notification per violated rule. Notification failures are logged, not
// returned: alerting must not disturb the collection path.
func (a *Alerter) Evaluate(runID string, s model.Summary) {
	for _, rule := range a.rules {
		violation := a.check(rule, s)
		if violation == "" {
			continue
		}

		subject := fmt.Sprintf("NetGauge alert: rule '%s' violated by run %s", rule.Name, runID)
		body := fmt.Sprintf("Run %s: %s\n\npackets=%d bytes=%d duration=%ds avg=%.1f KB/s\n",
			runID, violation, s.PacketsReceived, s.BytesTotal, s.DurationSeconds, s.AvgKBPerSec)

		log.Printf("Alert: rule '%s' violated by run '%s' (%s)", rule.Name, runID, violation)
		if err := a.notifier.Send(subject, body); err != nil {
			log.Printf("Failed to send alert notification: %v", err)
		}
	}
}

// check returns a human-readable violation description, or "" if the rule
// holds.
func (a *Alerter) check(rule config.AlerterRule, s model.Summary) string {
	if rule.MinAvgKBPerSec > 0 && s.AvgKBPerSec < rule.MinAvgKBPerSec {
		return fmt.Sprintf("average throughput %.1f KB/s is below the minimum of %.1f KB/s",
			s.AvgKBPerSec, rule.MinAvgKBPerSec)
	}
	if rule.MinPackets > 0 && s.PacketsReceived < rule.MinPackets {
		return fmt.Sprintf("received %d packets, fewer than the minimum of %d",
			s.PacketsReceived, rule.MinPackets)
	}
	return ""
}
