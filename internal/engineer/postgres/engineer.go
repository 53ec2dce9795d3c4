package postgres

import (
	engineerDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/engineer"
	"github.com/incidentops/incident-management/internal/engineer"
	"gorm.io/gorm"
)

type EngineerRepository struct {
	db *gorm.DB
}

func NewEngineerRepository(db *gorm.DB) engineer.Repository {
	return &EngineerRepository{db: db}
}

func (r *EngineerRepository) GetByID(id int64) (*engineer.Engineer, error) {
	var row engineerDatamodel.Engineer
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, engineer.ErrNotFound
		}
		return nil, err
	}
	return engineer.FromDataModel(&row), nil
}

func (r *EngineerRepository) GetByUserID(userID int64) (*engineer.Engineer, error) {
	var row engineerDatamodel.Engineer
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, engineer.ErrNotFound
		}
		return nil, err
	}
	return engineer.FromDataModel(&row), nil
}

func (r *EngineerRepository) List() ([]engineer.Engineer, error) {
	var rows []engineerDatamodel.Engineer
	if err := r.db.Order("employee_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *EngineerRepository) ListOnCall() ([]engineer.Engineer, error) {
	var rows []engineerDatamodel.Engineer
	err := r.db.
		Where("is_on_call = ?", true).
		Order("employee_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *EngineerRepository) Exists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&engineerDatamodel.Engineer{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func fromRows(rows []engineerDatamodel.Engineer) []engineer.Engineer {
	out := make([]engineer.Engineer, 0, len(rows))
	for i := range rows {
		out = append(out, *engineer.FromDataModel(&rows[i]))
	}
	return out
}
