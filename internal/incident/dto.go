package incident

import (
	"fmt"
	"strings"

	errors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/core/common/validation"
)

// CreateIncidentDTO is the full incident form.
type CreateIncidentDTO struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Equipment    string   `json:"equipment"`
	Location     string   `json:"location"`
	Severity     string   `json:"severity"`
	Priority     string   `json:"priority"`
	Category     string   `json:"category"`
	IncidentType string   `json:"incident_type,omitempty"`
	CostEstimate *float64 `json:"cost_estimate,omitempty"`

	// Two historical input shapes for part selection, normalized by
	// PartIDs(): a checkbox list and a multi-select.
	PartsNeeded   []int64 `json:"parts_needed,omitempty"`
	SelectedParts []int64 `json:"selected_parts,omitempty"`
}

func (d *CreateIncidentDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MinLength(5).MaxLength(200)
	v.Field("description", d.Description).Required().MinLength(10).MaxLength(2000)
	v.Field("equipment", d.Equipment).Required().MinLength(2).MaxLength(200)
	v.Field("location", d.Location).Required().MinLength(2).MaxLength(100)
	v.Field("severity", d.Severity).Required().OneOf(ValidSeverities(), errors.ErrCodeValidationFailed)
	v.Field("priority", d.Priority).Required().OneOf(ValidPriorities(), errors.ErrCodeValidationFailed)
	v.Field("category", d.Category).Required().OneOf(ValidCategories(), errors.ErrCodeValidationFailed)
	v.Field("incident_type", d.IncidentType).OneOf(ValidIncidentTypes(), errors.ErrCodeValidationFailed)
	if d.CostEstimate != nil && *d.CostEstimate < 0 {
		v.AddError("cost_estimate", "cost_estimate must not be negative")
	}
	return v.Validate()
}

// PartIDs merges both selection shapes into one deduplicated set.
func (d *CreateIncidentDTO) PartIDs() []int64 {
	seen := make(map[int64]struct{}, len(d.PartsNeeded)+len(d.SelectedParts))
	var ids []int64
	for _, list := range [][]int64{d.PartsNeeded, d.SelectedParts} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// ReportDTO is the quick-report form: equipment, location and a
// description. Title, severity and category are filled in by the
// service.
type ReportDTO struct {
	Equipment   string `json:"equipment"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
	Category    string `json:"category,omitempty"`
}

func (d *ReportDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("equipment", d.Equipment).Required().MinLength(2).MaxLength(200)
	v.Field("location", d.Location).Required().MinLength(2).MaxLength(100)
	v.Field("description", d.Description).Required().MinLength(10).MaxLength(2000)
	v.Field("severity", d.Severity).OneOf(ValidSeverities(), errors.ErrCodeValidationFailed)
	v.Field("category", d.Category).OneOf(ValidCategories(), errors.ErrCodeValidationFailed)
	return v.Validate()
}

// ToCreateDTO expands a quick report into the full form with the
// defaults the quick path uses.
func (d *ReportDTO) ToCreateDTO() CreateIncidentDTO {
	severity := d.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	category := d.Category
	if category == "" {
		category = CategoryMechanical
	}
	return CreateIncidentDTO{
		Title:       fmt.Sprintf("Equipment Issue: %s", strings.TrimSpace(d.Equipment)),
		Description: d.Description,
		Equipment:   d.Equipment,
		Location:    d.Location,
		Severity:    severity,
		Priority:    PriorityMedium,
		Category:    category,
	}
}

// UpdateStatusDTO carries a status change request.
type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdateStatusDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(ValidStatuses(), errors.ErrCodeInvalidStatus)
	return v.Validate()
}

// AssignDTO assigns an engineer to an incident.
type AssignDTO struct {
	EngineerID int64 `json:"engineer_id"`
}

func (d *AssignDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("engineer_id", d.EngineerID).Required()
	return v.Validate()
}

// PartSelectionDTO is one part attachment with its link metadata.
type PartSelectionDTO struct {
	PartID       int64  `json:"part_id"`
	QuantityUsed int    `json:"quantity_used,omitempty"`
	Status       string `json:"status,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// AddPartsDTO attaches parts to an incident.
type AddPartsDTO struct {
	Parts []PartSelectionDTO `json:"parts"`
}

func (d *AddPartsDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if len(d.Parts) == 0 {
		v.AddError("parts", "at least one part must be selected")
	}
	for idx, p := range d.Parts {
		field := fmt.Sprintf("parts[%d]", idx)
		if p.PartID <= 0 {
			v.AddError(field+".part_id", "part_id is required")
		}
		if p.QuantityUsed < 0 {
			v.AddError(field+".quantity_used", "quantity_used must not be negative")
		}
		v.Field(field+".status", p.Status).OneOf(ValidPartStatuses(), errors.ErrCodeInvalidPartChoice)
	}
	return v.Validate()
}

// ListFilter narrows and pages incident listings.
type ListFilter struct {
	Status   string
	Severity string
	Page     int
	PerPage  int
}

func (f *ListFilter) Normalize(defaultPerPage int) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
}

// DashboardData is the payload behind GET /dashboard.
type DashboardData struct {
	RecentIncidents []Incident `json:"recent_incidents"`
	MyIncidents     []Incident `json:"my_incidents"`
	Stats           Stats      `json:"stats"`
}
