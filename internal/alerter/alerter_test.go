package alerter

import (
	"strings"
	"testing"

	"NetGauge/internal/config"
	"NetGauge/internal/model"
)

type fakeNotifier struct {
	subjects []string
	bodies   []string
}

func (n *fakeNotifier) Send(subject, body string) error {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func TestAlerter_ThroughputBelowMinimum(t *testing.T) {
	notifier := &fakeNotifier{}
	a := New([]config.AlerterRule{
		{Name: "slow-link", MinAvgKBPerSec: 500},
	}, notifier)

	a.Evaluate("run-1", model.Summary{AvgKBPerSec: 120.5, PacketsReceived: 2000})

	if len(notifier.subjects) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.subjects))
	}
	if !strings.Contains(notifier.subjects[0], "slow-link") {
		t.Errorf("Subject does not name the rule: %q", notifier.subjects[0])
	}
	if !strings.Contains(notifier.bodies[0], "below the minimum") {
		t.Errorf("Body does not describe the violation: %q", notifier.bodies[0])
	}
}

func TestAlerter_HealthyRunSendsNothing(t *testing.T) {
	notifier := &fakeNotifier{}
	a := New([]config.AlerterRule{
		{Name: "slow-link", MinAvgKBPerSec: 500},
		{Name: "lossy-link", MinPackets: 1000},
	}, notifier)

	a.Evaluate("run-1", model.Summary{AvgKBPerSec: 900, PacketsReceived: 2000})

	if len(notifier.subjects) != 0 {
		t.Errorf("Expected no notifications for a healthy run, got %d", len(notifier.subjects))
	}
}

func TestAlerter_TooFewPackets(t *testing.T) {
	notifier := &fakeNotifier{}
	a := New([]config.AlerterRule{
		{Name: "lossy-link", MinPackets: 2000},
	}, notifier)

	a.Evaluate("run-1", model.Summary{AvgKBPerSec: 900, PacketsReceived: 1500})

	if len(notifier.subjects) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.subjects))
	}
	if !strings.Contains(notifier.bodies[0], "fewer than the minimum") {
		t.Errorf("Body does not describe the violation: %q", notifier.bodies[0])
	}
}
