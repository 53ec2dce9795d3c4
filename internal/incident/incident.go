package incident

import (
	"errors"
	"time"

	incidentDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/incident"
)

// Incident statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Incident severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Incident categories.
const (
	CategoryMechanical = "mechanical"
	CategoryElectrical = "electrical"
	CategorySoftware   = "software"
	CategoryHydraulic  = "hydraulic"
	CategoryPneumatic  = "pneumatic"
	CategoryOther      = "other"
)

// Incident types.
const (
	TypeEquipmentFailure = "equipment_failure"
	TypeSafetyIncident   = "safety_incident"
	TypeQualityIssue     = "quality_issue"
	TypeProcessDeviation = "process_deviation"
	TypeOther            = "other"
)

// Part association statuses.
const (
	PartStatusRequired  = "required"
	PartStatusOrdered   = "ordered"
	PartStatusReceived  = "received"
	PartStatusInstalled = "installed"
)

var (
	ErrNotFound      = errors.New("incident not found")
	ErrInvalidStatus = errors.New("invalid status")
)

func ValidStatuses() []string {
	return []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
}

func ValidSeverities() []string {
	return []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

func ValidPriorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

func ValidCategories() []string {
	return []string{CategoryMechanical, CategoryElectrical, CategorySoftware, CategoryHydraulic, CategoryPneumatic, CategoryOther}
}

func ValidPartStatuses() []string {
	return []string{PartStatusRequired, PartStatusOrdered, PartStatusReceived, PartStatusInstalled}
}

func ValidIncidentTypes() []string {
	return []string{TypeEquipmentFailure, TypeSafetyIncident, TypeQualityIssue, TypeProcessDeviation, TypeOther}
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// slaHours maps a severity to the number of hours before an unresolved
// incident is considered overdue. Unknown severities fall back to 24h.
var slaHours = map[string]time.Duration{
	SeverityCritical: 2 * time.Hour,
	SeverityHigh:     8 * time.Hour,
	SeverityMedium:   24 * time.Hour,
	SeverityLow:      72 * time.Hour,
}

const defaultSLA = 24 * time.Hour

// SLAWindow returns the response window for a severity.
func SLAWindow(severity string) time.Duration {
	if d, ok := slaHours[severity]; ok {
		return d
	}
	return defaultSLA
}

type Incident struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Equipment    string    `json:"equipment"`
	Location     string    `json:"location"`
	DateReported time.Time `json:"date_reported"`
	Severity     string    `json:"severity"`
	Priority     string    `json:"priority"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
	ReporterID   int64     `json:"reporter_id"`
	EngineerID   *int64    `json:"engineer_id,omitempty"`
	AssignedToID *int64    `json:"assigned_to_id,omitempty"`

	IncidentType     string `json:"incident_type,omitempty"`
	RootCause        string `json:"root_cause,omitempty"`
	CorrectiveAction string `json:"corrective_action,omitempty"`
	PreventiveAction string `json:"preventive_action,omitempty"`

	DowntimeMinutes int      `json:"downtime_minutes"`
	CostEstimate    *float64 `json:"cost_estimate,omitempty"`
	SafetyImpact    string   `json:"safety_impact,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// IsOverdue reports whether the incident has been open longer than its
// severity's response window. Resolved and closed incidents are never
// overdue.
func (i *Incident) IsOverdue(now time.Time) bool {
	if i.Status == StatusResolved || i.Status == StatusClosed {
		return false
	}
	return now.Sub(i.DateReported) > SLAWindow(i.Severity)
}

// DurationMinutes returns minutes from report to resolution, or to now
// for incidents that are still open.
func (i *Incident) DurationMinutes(now time.Time) int64 {
	end := now
	if i.ResolvedAt != nil {
		end = *i.ResolvedAt
	}
	return int64(end.Sub(i.DateReported) / time.Minute)
}

// SetStatus moves the incident to the given status and keeps the
// resolved_at timestamp consistent: set on entering resolved or closed,
// cleared on reopening.
func (i *Incident) SetStatus(status string, now time.Time) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	i.Status = status
	switch status {
	case StatusResolved, StatusClosed:
		if i.ResolvedAt == nil {
			t := now
			i.ResolvedAt = &t
		}
	default:
		i.ResolvedAt = nil
	}
	i.UpdatedAt = now
	return nil
}

// PartUsage is a part association on an incident, carrying the link
// metadata alongside the part's identity.
type PartUsage struct {
	PartID       int64     `json:"part_id"`
	PartNumber   string    `json:"part_number"`
	Name         string    `json:"name"`
	QuantityUsed int       `json:"quantity_used"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats aggregates incident counts for the dashboard and stats API.
type Stats struct {
	TotalIncidents        int64 `json:"total_incidents"`
	OpenIncidents         int64 `json:"open_incidents"`
	InProgressIncidents   int64 `json:"in_progress_incidents"`
	ResolvedIncidents     int64 `json:"resolved_incidents"`
	CriticalIncidents     int64 `json:"critical_incidents"`
	HighPriorityIncidents int64 `json:"high_priority_incidents"`
}

// Page is one page of incidents, newest first.
type Page struct {
	Incidents  []Incident `json:"incidents"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

func ToDataModel(i *Incident) *incidentDatamodel.Incident {
	return &incidentDatamodel.Incident{
		ID:               i.ID,
		Title:            i.Title,
		Description:      i.Description,
		Equipment:        i.Equipment,
		Location:         i.Location,
		DateReported:     i.DateReported,
		Severity:         i.Severity,
		Priority:         i.Priority,
		Category:         i.Category,
		Status:           i.Status,
		ReporterID:       i.ReporterID,
		EngineerID:       i.EngineerID,
		AssignedToID:     i.AssignedToID,
		IncidentType:     i.IncidentType,
		RootCause:        i.RootCause,
		CorrectiveAction: i.CorrectiveAction,
		PreventiveAction: i.PreventiveAction,
		DowntimeMinutes:  i.DowntimeMinutes,
		CostEstimate:     i.CostEstimate,
		SafetyImpact:     i.SafetyImpact,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
		ResolvedAt:       i.ResolvedAt,
	}
}

func FromDataModel(row *incidentDatamodel.Incident) *Incident {
	return &Incident{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		Equipment:        row.Equipment,
		Location:         row.Location,
		DateReported:     row.DateReported,
		Severity:         row.Severity,
		Priority:         row.Priority,
		Category:         row.Category,
		Status:           row.Status,
		ReporterID:       row.ReporterID,
		EngineerID:       row.EngineerID,
		AssignedToID:     row.AssignedToID,
		IncidentType:     row.IncidentType,
		RootCause:        row.RootCause,
		CorrectiveAction: row.CorrectiveAction,
		PreventiveAction: row.PreventiveAction,
		DowntimeMinutes:  row.DowntimeMinutes,
		CostEstimate:     row.CostEstimate,
		SafetyImpact:     row.SafetyImpact,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		ResolvedAt:       row.ResolvedAt,
	}
}
