package engineer

import (
	"log/slog"

	errors "github.com/incidentops/incident-management/internal"
)

// Repository defines the data access methods for engineers.
type Repository interface {
	GetByID(id int64) (*Engineer, error)
	GetByUserID(userID int64) (*Engineer, error)
	List() ([]Engineer, error)
	ListOnCall() ([]Engineer, error)
	Exists(id int64) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(id int64) (*Engineer, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrEngineerNotFound
	}
	return e, nil
}

func (s *Service) List() ([]Engineer, error) {
	engineers, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list engineers", "error", err)
		return nil, errors.NewInternalError("Failed to list engineers", err)
	}
	return engineers, nil
}

func (s *Service) ListOnCall() ([]Engineer, error) {
	engineers, err := s.repo.ListOnCall()
	if err != nil {
		s.logger.Error("failed to list on-call engineers", "error", err)
		return nil, errors.NewInternalError("Failed to list on-call engineers", err)
	}
	return engineers, nil
}

// Exists implements incident.EngineerDirectory.
func (s *Service) Exists(engineerID int64) (bool, error) {
	return s.repo.Exists(engineerID)
}
