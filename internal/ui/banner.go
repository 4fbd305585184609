package ui

import "tracescope/internal/notify"

// Banner collects alerts raised by the controller for display. It is
// created before the trace is loaded so alerts from the load are kept.
type Banner struct {
	alerts []notify.Alert
}

// NewBanner returns an empty Banner.
func NewBanner() *Banner { return &Banner{} }

// Alert implements notify.Alerter.
func (b *Banner) Alert(a notify.Alert) { b.alerts = append(b.alerts, a) }

// Alerts returns the collected alerts, oldest first.
func (b *Banner) Alerts() []notify.Alert { return b.alerts }

// Dismiss drops every alert.
func (b *Banner) Dismiss() { b.alerts = nil }
