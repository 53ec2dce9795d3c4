package engineer

import (
	"errors"
	"time"

	engineerDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/engineer"
)

var ErrNotFound = errors.New("engineer not found")

type Engineer struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	EmployeeID         string    `json:"employee_id"`
	Specialization     string    `json:"specialization,omitempty"`
	CertificationLevel string    `json:"certification_level,omitempty"`
	YearsExperience    int       `json:"years_experience"`
	Shift              string    `json:"shift,omitempty"`
	IsOnCall           bool      `json:"is_on_call"`
	CreatedAt          time.Time `json:"created_at"`
}

func ToDataModel(e *Engineer) *engineerDatamodel.Engineer {
	return &engineerDatamodel.Engineer{
		ID:                 e.ID,
		UserID:             e.UserID,
		EmployeeID:         e.EmployeeID,
		Specialization:     e.Specialization,
		CertificationLevel: e.CertificationLevel,
		YearsExperience:    e.YearsExperience,
		Shift:              e.Shift,
		IsOnCall:           e.IsOnCall,
		CreatedAt:          e.CreatedAt,
	}
}

func FromDataModel(row *engineerDatamodel.Engineer) *Engineer {
	return &Engineer{
		ID:                 row.ID,
		UserID:             row.UserID,
		EmployeeID:         row.EmployeeID,
		Specialization:     row.Specialization,
		CertificationLevel: row.CertificationLevel,
		YearsExperience:    row.YearsExperience,
		Shift:              row.Shift,
		IsOnCall:           row.IsOnCall,
		CreatedAt:          row.CreatedAt,
	}
}
