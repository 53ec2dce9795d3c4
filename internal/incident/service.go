package incident

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/auth"
	"github.com/incidentops/incident-management/internal/core/events"
)

// Repository defines the data access methods for incidents and their
// part associations.
type Repository interface {
	Create(inc *Incident) error
	GetByID(id int64) (*Incident, error)
	Update(inc *Incident) error
	List(filter ListFilter) ([]Incident, int64, error)
	ListByReporter(reporterID int64, limit int) ([]Incident, error)
	ListRecent(limit int) ([]Incident, error)
	Search(query string, page, perPage int) ([]Incident, int64, error)
	Stats() (*Stats, error)
	AttachParts(incidentID int64, selections []PartSelectionDTO) error
	GetParts(incidentID int64) ([]PartUsage, error)
}

// PartCatalog answers which parts are currently selectable. Choices are
// resolved per request, never cached.
type PartCatalog interface {
	ActivePartIDs() (map[int64]struct{}, error)
}

// EngineerDirectory resolves engineer existence for assignments.
type EngineerDirectory interface {
	Exists(engineerID int64) (bool, error)
}

type Service struct {
	repo      Repository
	parts     PartCatalog
	engineers EngineerDirectory
	eventBus  *events.EventBus
	perPage   int
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, parts PartCatalog, engineers EngineerDirectory, eventBus *events.EventBus, perPage int, logger *slog.Logger) *Service {
	if perPage < 1 {
		perPage = 20
	}
	return &Service{
		repo:      repo,
		parts:     parts,
		engineers: engineers,
		eventBus:  eventBus,
		perPage:   perPage,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the full form, persists the incident and attaches
// the selected parts. Nothing is persisted when validation fails.
func (s *Service) Create(ctx context.Context, reporter *auth.User, dto CreateIncidentDTO) (*Incident, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	partIDs := dto.PartIDs()
	if err := s.checkPartChoices(partIDs); err != nil {
		return nil, err
	}

	now := s.now()
	inc := &Incident{
		Title:        dto.Title,
		Description:  dto.Description,
		Equipment:    dto.Equipment,
		Location:     dto.Location,
		DateReported: now,
		Severity:     dto.Severity,
		Priority:     dto.Priority,
		Category:     dto.Category,
		IncidentType: dto.IncidentType,
		Status:       StatusOpen,
		ReporterID:   reporter.ID,
		CostEstimate: dto.CostEstimate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(inc); err != nil {
		s.logger.Error("failed to create incident", "error", err, "reporter_id", reporter.ID)
		return nil, errors.NewInternalError("Failed to create incident", err)
	}

	if len(partIDs) > 0 {
		selections := make([]PartSelectionDTO, 0, len(partIDs))
		for _, id := range partIDs {
			selections = append(selections, PartSelectionDTO{PartID: id, QuantityUsed: 1, Status: PartStatusRequired})
		}
		if err := s.repo.AttachParts(inc.ID, selections); err != nil {
			s.logger.Error("failed to attach parts", "error", err, "incident_id", inc.ID)
			return nil, errors.NewInternalError("Failed to attach parts", err)
		}
	}

	s.logger.Info("incident created",
		"incident_id", inc.ID,
		"reporter_id", reporter.ID,
		"severity", inc.Severity,
		"parts", len(partIDs))

	s.eventBus.Publish(ctx, events.NewIncidentCreatedEvent(inc.ID, reporter.ID, inc.Severity, inc.Title))
	return inc, nil
}

// Report handles the quick-report path: minimal fields, generated
// title, medium severity, mechanical category.
func (s *Service) Report(ctx context.Context, reporter *auth.User, dto ReportDTO) (*Incident, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	return s.Create(ctx, reporter, dto.ToCreateDTO())
}

func (s *Service) Get(id int64) (*Incident, error) {
	inc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrIncidentNotFound
	}
	return inc, nil
}

// List returns one page of incidents, newest first.
func (s *Service) List(filter ListFilter) (*Page, error) {
	filter.Normalize(s.perPage)
	incidents, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list incidents", "error", err)
		return nil, errors.NewInternalError("Failed to list incidents", err)
	}
	return newPage(incidents, total, filter.Page, filter.PerPage), nil
}

// UpdateStatus moves an incident to a new status. Managers and admins
// may update any incident; other users only their own reports.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.User, id int64, dto UpdateStatusDTO) (*Incident, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	inc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrIncidentNotFound
	}

	if !actor.CanUpdateIncident(inc.ReporterID) {
		s.logger.Warn("status update forbidden",
			"incident_id", id,
			"user_id", actor.ID,
			"role", actor.Role)
		return nil, errors.NewForbiddenError("You do not have permission to update this incident", errors.ErrCodeUnauthorizedAccess)
	}

	wasTerminal := inc.Status == StatusResolved || inc.Status == StatusClosed
	if err := inc.SetStatus(dto.Status, s.now()); err != nil {
		return nil, errors.NewValidationFieldError("status", err.Error(), errors.ErrCodeInvalidStatus)
	}

	if err := s.repo.Update(inc); err != nil {
		s.logger.Error("failed to update incident status", "error", err, "incident_id", id)
		return nil, errors.NewInternalError("Failed to update incident", err)
	}

	s.logger.Info("incident status updated",
		"incident_id", id,
		"status", inc.Status,
		"user_id", actor.ID)

	if !wasTerminal && (inc.Status == StatusResolved || inc.Status == StatusClosed) {
		s.eventBus.Publish(ctx, events.NewIncidentResolvedEvent(inc.ID, inc.ReporterID, inc.Status))
	}
	return inc, nil
}

// Assign attaches an engineer to an incident and moves open incidents
// to in_progress.
func (s *Service) Assign(ctx context.Context, id int64, dto AssignDTO) (*Incident, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	inc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrIncidentNotFound
	}

	ok, err := s.engineers.Exists(dto.EngineerID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to look up engineer", err)
	}
	if !ok {
		return nil, errors.ErrEngineerNotFound
	}

	inc.EngineerID = &dto.EngineerID
	if inc.Status == StatusOpen {
		inc.Status = StatusInProgress
	}
	inc.UpdatedAt = s.now()

	if err := s.repo.Update(inc); err != nil {
		s.logger.Error("failed to assign engineer", "error", err, "incident_id", id)
		return nil, errors.NewInternalError("Failed to assign engineer", err)
	}

	s.logger.Info("engineer assigned", "incident_id", id, "engineer_id", dto.EngineerID)
	s.eventBus.Publish(ctx, events.NewIncidentAssignedEvent(inc.ID, dto.EngineerID))
	return inc, nil
}

// Search does a case-insensitive substring match over title and
// description, newest first.
func (s *Service) Search(query string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	incidents, total, err := s.repo.Search(query, page, s.perPage)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		return nil, errors.NewInternalError("Search failed", err)
	}
	return newPage(incidents, total, page, s.perPage), nil
}

func (s *Service) Stats() (*Stats, error) {
	stats, err := s.repo.Stats()
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err)
		return nil, errors.NewInternalError("Failed to compute statistics", err)
	}
	return stats, nil
}

// Dashboard returns the ten most recent incidents, the caller's five
// most recent reports and the aggregate counts.
func (s *Service) Dashboard(userID int64) (*DashboardData, error) {
	recent, err := s.repo.ListRecent(10)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load dashboard", err)
	}
	mine, err := s.repo.ListByReporter(userID, 5)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load dashboard", err)
	}
	stats, err := s.repo.Stats()
	if err != nil {
		return nil, errors.NewInternalError("Failed to load dashboard", err)
	}
	return &DashboardData{
		RecentIncidents: recent,
		MyIncidents:     mine,
		Stats:           *stats,
	}, nil
}

// AddParts attaches parts to an existing incident with quantity,
// status and notes on each link.
func (s *Service) AddParts(id int64, dto AddPartsDTO) ([]PartUsage, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, errors.ErrIncidentNotFound
	}

	ids := make([]int64, 0, len(dto.Parts))
	for _, p := range dto.Parts {
		ids = append(ids, p.PartID)
	}
	if err := s.checkPartChoices(ids); err != nil {
		return nil, err
	}

	selections := make([]PartSelectionDTO, 0, len(dto.Parts))
	for _, p := range dto.Parts {
		if p.QuantityUsed == 0 {
			p.QuantityUsed = 1
		}
		if p.Status == "" {
			p.Status = PartStatusRequired
		}
		selections = append(selections, p)
	}

	if err := s.repo.AttachParts(id, selections); err != nil {
		s.logger.Error("failed to attach parts", "error", err, "incident_id", id)
		return nil, errors.NewInternalError("Failed to attach parts", err)
	}

	s.logger.Info("parts attached", "incident_id", id, "count", len(selections))
	return s.repo.GetParts(id)
}

func (s *Service) GetParts(id int64) ([]PartUsage, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, errors.ErrIncidentNotFound
	}
	usages, err := s.repo.GetParts(id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load parts", err)
	}
	return usages, nil
}

// checkPartChoices rejects part IDs that are not in the currently
// active catalog, field-scoped like a form error.
func (s *Service) checkPartChoices(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	active, err := s.parts.ActivePartIDs()
	if err != nil {
		return errors.NewInternalError("Failed to load part choices", err)
	}
	for _, id := range ids {
		if _, ok := active[id]; !ok {
			return errors.NewValidationFieldError(
				"parts",
				fmt.Sprintf("part %d is not a valid choice", id),
				errors.ErrCodeInvalidPartChoice)
		}
	}
	return nil
}

func newPage(incidents []Incident, total int64, page, perPage int) *Page {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if incidents == nil {
		incidents = []Incident{}
	}
	return &Page{
		Incidents:  incidents,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
