package part

import (
	errors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/core/common/validation"
)

// CreatePartDTO registers a new inventory part.
type CreatePartDTO struct {
	PartNumber  string `json:"part_number"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	Supplier     string `json:"supplier,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`

	UnitCost     *float64 `json:"unit_cost,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	MinimumStock int      `json:"minimum_stock"`
	CurrentStock int      `json:"current_stock"`
	Location     string   `json:"location,omitempty"`
	LeadTimeDays *int     `json:"lead_time_days,omitempty"`
}

func (d *CreatePartDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("part_number", d.PartNumber).Required().MaxLength(50)
	v.Field("name", d.Name).Required().MinLength(2).MaxLength(200)
	v.Field("currency", d.Currency).MaxLength(3)
	if d.MinimumStock < 0 {
		v.AddError("minimum_stock", "minimum_stock must not be negative")
	}
	if d.CurrentStock < 0 {
		v.AddError("current_stock", "current_stock must not be negative")
	}
	if d.UnitCost != nil && *d.UnitCost < 0 {
		v.AddError("unit_cost", "unit_cost must not be negative")
	}
	return v.Validate()
}

// AdjustStockDTO moves the stock level by a signed delta.
type AdjustStockDTO struct {
	Delta int `json:"delta"`
}

func (d *AdjustStockDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Delta == 0 {
		v.AddError("delta", "delta must not be zero")
	}
	return v.Validate()
}
