package postgres

import (
	incidentDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/incident"
	partDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/part"
	"github.com/incidentops/incident-management/internal/part"
	"gorm.io/gorm"
)

type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) part.Repository {
	return &PartRepository{db: db}
}

func (r *PartRepository) Create(p *part.Part) error {
	row := part.ToDataModel(p)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	return nil
}

func (r *PartRepository) GetByID(id int64) (*part.Part, error) {
	var row partDatamodel.Part
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, part.ErrNotFound
		}
		return nil, err
	}
	return part.FromDataModel(&row), nil
}

func (r *PartRepository) GetByPartNumber(partNumber string) (*part.Part, error) {
	var row partDatamodel.Part
	err := r.db.Where("part_number = ?", partNumber).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, part.ErrNotFound
		}
		return nil, err
	}
	return part.FromDataModel(&row), nil
}

func (r *PartRepository) Update(p *part.Part) error {
	return r.db.Save(part.ToDataModel(p)).Error
}

func (r *PartRepository) ListActive() ([]part.Part, error) {
	var rows []partDatamodel.Part
	err := r.db.
		Where("status = ?", part.StatusActive).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *PartRepository) ListLowStock() ([]part.Part, error) {
	var rows []partDatamodel.Part
	err := r.db.
		Where("status = ?", part.StatusActive).
		Where("current_stock <= minimum_stock").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *PartRepository) ActivePartIDs() (map[int64]struct{}, error) {
	var ids []int64
	err := r.db.Model(&partDatamodel.Part{}).
		Where("status = ?", part.StatusActive).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *PartRepository) UsageCount(partID int64) (int64, error) {
	var count int64
	err := r.db.Model(&incidentDatamodel.IncidentPart{}).
		Where("part_id = ?", partID).
		Count(&count).Error
	return count, err
}

func fromRows(rows []partDatamodel.Part) []part.Part {
	out := make([]part.Part, 0, len(rows))
	for i := range rows {
		out = append(out, *part.FromDataModel(&rows[i]))
	}
	return out
}
