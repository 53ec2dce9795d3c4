package incident

import "time"

// Incident is the persistence shape of an incident row.
type Incident struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"column:title;size:200;not null"`
	Description string `gorm:"column:description;type:text;not null"`

	Equipment    string    `gorm:"column:equipment;size:200;not null"`
	Location     string    `gorm:"column:location;size:100;not null"`
	DateReported time.Time `gorm:"column:date_reported;not null"`

	Severity string `gorm:"column:severity;size:20;not null"`
	Status   string `gorm:"column:status;size:20;default:open"`
	Category string `gorm:"column:category;size:50;not null"`
	Priority string `gorm:"column:priority;size:20;default:medium"`

	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`

	ReporterID   int64  `gorm:"column:reporter_id;not null;index"`
	EngineerID   *int64 `gorm:"column:engineer_id;index"`
	AssignedToID *int64 `gorm:"column:assigned_to_id"`

	IncidentType     string `gorm:"column:incident_type;size:50"`
	RootCause        string `gorm:"column:root_cause;type:text"`
	CorrectiveAction string `gorm:"column:corrective_action;type:text"`
	PreventiveAction string `gorm:"column:preventive_action;type:text"`

	DowntimeMinutes int      `gorm:"column:downtime_minutes;default:0"`
	CostEstimate    *float64 `gorm:"column:cost_estimate"`
	SafetyImpact    string   `gorm:"column:safety_impact;size:20"`
}

func (Incident) TableName() string {
	return "incidents"
}

// IncidentPart is the association row between an incident and a part.
// Unlike a plain join table it carries its own mutable state: how many
// units the incident consumed and where the part is in its procurement
// lifecycle for that incident.
type IncidentPart struct {
	IncidentID   int64     `gorm:"column:incident_id;primaryKey"`
	PartID       int64     `gorm:"column:part_id;primaryKey"`
	QuantityUsed int       `gorm:"column:quantity_used;default:1"`
	Status       string    `gorm:"column:status;size:20;default:required"`
	Notes        string    `gorm:"column:notes;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (IncidentPart) TableName() string {
	return "incident_parts"
}
