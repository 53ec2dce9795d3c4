package part

import "time"

// Part is the persistence shape of an inventory part row.
type Part struct {
	ID          int64  `gorm:"primaryKey"`
	PartNumber  string `gorm:"column:part_number;size:50;uniqueIndex;not null"`
	Name        string `gorm:"column:name;size:200;not null"`
	Description string `gorm:"column:description;type:text"`

	Category    string `gorm:"column:category;size:50"`
	Subcategory string `gorm:"column:subcategory;size:50"`

	Supplier           string `gorm:"column:supplier;size:100"`
	SupplierPartNumber string `gorm:"column:supplier_part_number;size:50"`
	Manufacturer       string `gorm:"column:manufacturer;size:100"`
	ModelNumber        string `gorm:"column:model_number;size:50"`

	UnitCost     *float64 `gorm:"column:unit_cost"`
	Currency     string   `gorm:"column:currency;size:3;default:USD"`
	MinimumStock int      `gorm:"column:minimum_stock;default:0"`
	CurrentStock int      `gorm:"column:current_stock;default:0"`
	Location     string   `gorm:"column:location;size:100"`

	Specifications string `gorm:"column:specifications;type:text"`
	Compatibility  string `gorm:"column:compatibility;type:text"`

	Status       string `gorm:"column:status;size:20;default:active"`
	LeadTimeDays *int   `gorm:"column:lead_time_days"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Part) TableName() string {
	return "parts"
}
