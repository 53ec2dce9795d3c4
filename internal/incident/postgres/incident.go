package postgres

import (
	"time"

	incidentDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/incident"
	partDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/part"
	"github.com/incidentops/incident-management/internal/incident"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) incident.Repository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(inc *incident.Incident) error {
	row := incident.ToDataModel(inc)
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	inc.ID = row.ID
	return nil
}

func (r *IncidentRepository) GetByID(id int64) (*incident.Incident, error) {
	var row incidentDatamodel.Incident
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, incident.ErrNotFound
		}
		return nil, err
	}
	return incident.FromDataModel(&row), nil
}

func (r *IncidentRepository) Update(inc *incident.Incident) error {
	return r.db.Save(incident.ToDataModel(inc)).Error
}

func (r *IncidentRepository) List(filter incident.ListFilter) ([]incident.Incident, int64, error) {
	query := r.db.Model(&incidentDatamodel.Incident{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []incidentDatamodel.Incident
	err := query.
		Order("date_reported DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return fromRows(rows), total, nil
}

func (r *IncidentRepository) ListByReporter(reporterID int64, limit int) ([]incident.Incident, error) {
	var rows []incidentDatamodel.Incident
	err := r.db.
		Where("reporter_id = ?", reporterID).
		Order("date_reported DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *IncidentRepository) ListRecent(limit int) ([]incident.Incident, error) {
	var rows []incidentDatamodel.Incident
	err := r.db.
		Order("date_reported DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *IncidentRepository) Search(query string, page, perPage int) ([]incident.Incident, int64, error) {
	pattern := "%" + query + "%"
	base := r.db.Model(&incidentDatamodel.Incident{}).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []incidentDatamodel.Incident
	err := base.
		Order("date_reported DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return fromRows(rows), total, nil
}

func (r *IncidentRepository) Stats() (*incident.Stats, error) {
	stats := &incident.Stats{}

	counts := []struct {
		dest  *int64
		where []interface{}
	}{
		{&stats.TotalIncidents, nil},
		{&stats.OpenIncidents, []interface{}{"status = ?", incident.StatusOpen}},
		{&stats.InProgressIncidents, []interface{}{"status = ?", incident.StatusInProgress}},
		{&stats.ResolvedIncidents, []interface{}{"status IN ?", []string{incident.StatusResolved, incident.StatusClosed}}},
		{&stats.CriticalIncidents, []interface{}{"severity = ?", incident.SeverityCritical}},
		{&stats.HighPriorityIncidents, []interface{}{"priority IN ?", []string{incident.PriorityHigh, incident.PriorityUrgent}}},
	}

	for _, c := range counts {
		query := r.db.Model(&incidentDatamodel.Incident{})
		if c.where != nil {
			query = query.Where(c.where[0], c.where[1:]...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// AttachParts upserts association rows so re-selecting a part updates
// its quantity, status and notes instead of failing on the composite
// primary key.
func (r *IncidentRepository) AttachParts(incidentID int64, selections []incident.PartSelectionDTO) error {
	now := time.Now()
	rows := make([]incidentDatamodel.IncidentPart, 0, len(selections))
	for _, sel := range selections {
		rows = append(rows, incidentDatamodel.IncidentPart{
			IncidentID:   incidentID,
			PartID:       sel.PartID,
			QuantityUsed: sel.QuantityUsed,
			Status:       sel.Status,
			Notes:        sel.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "incident_id"}, {Name: "part_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity_used", "status", "notes", "updated_at"}),
	}).Create(&rows).Error
}

func (r *IncidentRepository) GetParts(incidentID int64) ([]incident.PartUsage, error) {
	var links []incidentDatamodel.IncidentPart
	err := r.db.
		Where("incident_id = ?", incidentID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []incident.PartUsage{}, nil
	}

	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.PartID)
	}
	var parts []partDatamodel.Part
	if err := r.db.Where("id IN ?", ids).Find(&parts).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]partDatamodel.Part, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}

	usages := make([]incident.PartUsage, 0, len(links))
	for _, link := range links {
		p := byID[link.PartID]
		usages = append(usages, incident.PartUsage{
			PartID:       link.PartID,
			PartNumber:   p.PartNumber,
			Name:         p.Name,
			QuantityUsed: link.QuantityUsed,
			Status:       link.Status,
			Notes:        link.Notes,
			CreatedAt:    link.CreatedAt,
		})
	}
	return usages, nil
}

func fromRows(rows []incidentDatamodel.Incident) []incident.Incident {
	out := make([]incident.Incident, 0, len(rows))
	for i := range rows {
		out = append(out, *incident.FromDataModel(&rows[i]))
	}
	return out
}
