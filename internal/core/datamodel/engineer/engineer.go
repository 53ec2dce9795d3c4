package engineer

import "time"

// Engineer extends a user account with engineering staff details.
// One row per user, enforced by the unique index on user_id.
type Engineer struct {
	ID                 int64     `gorm:"primaryKey"`
	UserID             int64     `gorm:"column:user_id;uniqueIndex;not null"`
	EmployeeID         string    `gorm:"column:employee_id;size:20;uniqueIndex;not null"`
	Specialization     string    `gorm:"column:specialization;size:100"`
	CertificationLevel string    `gorm:"column:certification_level;size:50"`
	YearsExperience    int       `gorm:"column:years_experience"`
	Shift              string    `gorm:"column:shift;size:20"`
	IsOnCall           bool      `gorm:"column:is_on_call;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (Engineer) TableName() string {
	return "engineers"
}
