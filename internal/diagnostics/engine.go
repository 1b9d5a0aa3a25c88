// Package diagnostics converts a printer's raw usage counters into a
// prioritized list of due service tasks. It is stateless: Evaluate walks a
// fixed six-rule table, so it is safe to call at arbitrary frequency.
package diagnostics

import (
	"sort"

	"printfarm-backend/internal/model"
)

// Severity ranks a task; lower values are more urgent.
type Severity int

const (
	SeverityCritical Severity = 1
	SeverityMedium   Severity = 2
	SeverityLow      Severity = 3
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	}
	return "unknown"
}

// MaintenanceTask is a derived, never-persisted service recommendation.
type MaintenanceTask struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Action        string   `json:"action"`
	Severity      Severity `json:"severity"`
	IntervalHours float64  `json:"intervalHours"`
}

// A task surfaces once 90% of its interval has elapsed, so it shows up
// before it is strictly overdue.
const dueThreshold = 0.9

// rules is the fixed service table, ordered by interval.
var rules = []MaintenanceTask{
	{ID: "cleaning", Label: "General cleaning", Action: "Remove dust and debris from rails, fans and bed", Severity: SeverityLow, IntervalHours: 50},
	{ID: "belts", Label: "Belt tension check", Action: "Check and re-tension the X/Y belts", Severity: SeverityMedium, IntervalHours: 150},
	{ID: "lubrication", Label: "Axis lubrication", Action: "Lubricate the Z screw and linear rails", Severity: SeverityMedium, IntervalHours: 300},
	{ID: "nozzle", Label: "Nozzle replacement", Action: "Replace the worn nozzle", Severity: SeverityMedium, IntervalHours: 600},
	{ID: "ptfe-tube", Label: "PTFE tube replacement", Action: "Replace the degraded PTFE tube", Severity: SeverityMedium, IntervalHours: 800},
	{ID: "electrical", Label: "Electrical inspection", Action: "Inspect wiring, connectors and PSU terminals", Severity: SeverityCritical, IntervalHours: 1000},
}

// HoursSinceService returns the usage hours accumulated since the most
// recent maintenance event, never negative.
func HoursSinceService(p model.PrinterUnit) float64 {
	h := p.TotalHours - p.LastMaintenanceHour
	if h < 0 {
		return 0
	}
	return h
}

// Evaluate returns the due or nearly-due maintenance tasks for a printer,
// sorted most severe first. Ties keep table order. An empty result means the
// unit is fully serviced.
func Evaluate(p model.PrinterUnit) []MaintenanceTask {
	hours := HoursSinceService(p)

	var due []MaintenanceTask
	for _, r := range rules {
		if hours >= r.IntervalHours*dueThreshold {
			due = append(due, r)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].Severity < due[j].Severity
	})
	return due
}
