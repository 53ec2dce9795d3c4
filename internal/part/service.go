package part

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/core/events"
)

// Repository defines the data access methods for parts.
type Repository interface {
	Create(p *Part) error
	GetByID(id int64) (*Part, error)
	GetByPartNumber(partNumber string) (*Part, error)
	Update(p *Part) error
	ListActive() ([]Part, error)
	ListLowStock() ([]Part, error)
	ActivePartIDs() (map[int64]struct{}, error)
	UsageCount(partID int64) (int64, error)
}

type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) Create(dto CreatePartDTO) (*Part, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if existing, err := s.repo.GetByPartNumber(dto.PartNumber); err == nil && existing != nil {
		return nil, errors.NewConflictError("Part number already exists", errors.ErrCodeDuplicatePartNumber)
	}

	currency := dto.Currency
	if currency == "" {
		currency = "USD"
	}
	now := time.Now()
	p := &Part{
		PartNumber:   dto.PartNumber,
		Name:         dto.Name,
		Description:  dto.Description,
		Category:     dto.Category,
		Subcategory:  dto.Subcategory,
		Supplier:     dto.Supplier,
		Manufacturer: dto.Manufacturer,
		UnitCost:     dto.UnitCost,
		Currency:     currency,
		MinimumStock: dto.MinimumStock,
		CurrentStock: dto.CurrentStock,
		Location:     dto.Location,
		LeadTimeDays: dto.LeadTimeDays,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create part", "error", err, "part_number", dto.PartNumber)
		return nil, errors.NewInternalError("Failed to create part", err)
	}

	s.logger.Info("part created", "part_id", p.ID, "part_number", p.PartNumber)
	return p, nil
}

func (s *Service) Get(id int64) (*Part, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrPartNotFound
	}
	return p, nil
}

// ListActive returns the parts currently offered as form choices.
func (s *Service) ListActive() ([]Part, error) {
	parts, err := s.repo.ListActive()
	if err != nil {
		s.logger.Error("failed to list parts", "error", err)
		return nil, errors.NewInternalError("Failed to list parts", err)
	}
	return parts, nil
}

func (s *Service) ListLowStock() ([]Part, error) {
	parts, err := s.repo.ListLowStock()
	if err != nil {
		s.logger.Error("failed to list low stock parts", "error", err)
		return nil, errors.NewInternalError("Failed to list low stock parts", err)
	}
	return parts, nil
}

// ActivePartIDs implements incident.PartCatalog.
func (s *Service) ActivePartIDs() (map[int64]struct{}, error) {
	return s.repo.ActivePartIDs()
}

// AdjustStock moves the stock level and publishes a low-stock event
// when the adjustment crosses the reorder threshold.
func (s *Service) AdjustStock(ctx context.Context, id int64, dto AdjustStockDTO) (*Part, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrPartNotFound
	}

	wasLow := p.IsLowStock()
	p.CurrentStock += dto.Delta
	if p.CurrentStock < 0 {
		p.CurrentStock = 0
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to adjust stock", "error", err, "part_id", id)
		return nil, errors.NewInternalError("Failed to adjust stock", err)
	}

	s.logger.Info("stock adjusted",
		"part_id", id,
		"delta", dto.Delta,
		"current_stock", p.CurrentStock)

	if !wasLow && p.IsLowStock() {
		s.eventBus.Publish(ctx, events.NewPartLowStockEvent(p.ID, p.PartNumber, p.CurrentStock, p.MinimumStock))
	}
	return p, nil
}

// Usage reports how many incidents reference the part.
func (s *Service) Usage(id int64) (*UsageSummary, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrPartNotFound
	}
	count, err := s.repo.UsageCount(id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count part usage", err)
	}
	return &UsageSummary{Part: *p, IncidentCount: count}, nil
}
