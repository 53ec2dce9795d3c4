package part

import (
	"errors"
	"time"

	partDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/part"
)

// Part statuses.
const (
	StatusActive       = "active"
	StatusDiscontinued = "discontinued"
	StatusObsolete     = "obsolete"
)

var (
	ErrNotFound            = errors.New("part not found")
	ErrDuplicatePartNumber = errors.New("part number already exists")
)

type Part struct {
	ID          int64  `json:"id"`
	PartNumber  string `json:"part_number"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	Supplier           string `json:"supplier,omitempty"`
	SupplierPartNumber string `json:"supplier_part_number,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	ModelNumber        string `json:"model_number,omitempty"`

	UnitCost     *float64 `json:"unit_cost,omitempty"`
	Currency     string   `json:"currency"`
	MinimumStock int      `json:"minimum_stock"`
	CurrentStock int      `json:"current_stock"`
	Location     string   `json:"location,omitempty"`

	Status       string `json:"status"`
	LeadTimeDays *int   `json:"lead_time_days,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLowStock reports whether the stock level has reached the reorder
// threshold.
func (p *Part) IsLowStock() bool {
	return p.CurrentStock <= p.MinimumStock
}

func (p *Part) IsActive() bool {
	return p.Status == StatusActive
}

// UsageSummary pairs a part with how many incidents reference it.
type UsageSummary struct {
	Part          Part  `json:"part"`
	IncidentCount int64 `json:"incident_count"`
}

func ToDataModel(p *Part) *partDatamodel.Part {
	return &partDatamodel.Part{
		ID:                 p.ID,
		PartNumber:         p.PartNumber,
		Name:               p.Name,
		Description:        p.Description,
		Category:           p.Category,
		Subcategory:        p.Subcategory,
		Supplier:           p.Supplier,
		SupplierPartNumber: p.SupplierPartNumber,
		Manufacturer:       p.Manufacturer,
		ModelNumber:        p.ModelNumber,
		UnitCost:           p.UnitCost,
		Currency:           p.Currency,
		MinimumStock:       p.MinimumStock,
		CurrentStock:       p.CurrentStock,
		Location:           p.Location,
		Status:             p.Status,
		LeadTimeDays:       p.LeadTimeDays,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func FromDataModel(row *partDatamodel.Part) *Part {
	return &Part{
		ID:                 row.ID,
		PartNumber:         row.PartNumber,
		Name:               row.Name,
		Description:        row.Description,
		Category:           row.Category,
		Subcategory:        row.Subcategory,
		Supplier:           row.Supplier,
		SupplierPartNumber: row.SupplierPartNumber,
		Manufacturer:       row.Manufacturer,
		ModelNumber:        row.ModelNumber,
		UnitCost:           row.UnitCost,
		Currency:           row.Currency,
		MinimumStock:       row.MinimumStock,
		CurrentStock:       row.CurrentStock,
		Location:           row.Location,
		Status:             row.Status,
		LeadTimeDays:       row.LeadTimeDays,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
