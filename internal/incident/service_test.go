package incident_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/auth"
	"github.com/incidentops/incident-management/internal/core/events"
	"github.com/incidentops/incident-management/internal/incident"
)

type mockIncidentRepository struct {
	incidents   map[int64]*incident.Incident
	parts       map[int64][]incident.PartSelectionDTO
	createError error
	updateError error
	nextID      int64
}

func newMockIncidentRepository() *mockIncidentRepository {
	return &mockIncidentRepository{
		incidents: make(map[int64]*incident.Incident),
		parts:     make(map[int64][]incident.PartSelectionDTO),
		nextID:    1,
	}
}

func (m *mockIncidentRepository) Create(inc *incident.Incident) error {
	if m.createError != nil {
		return m.createError
	}
	inc.ID = m.nextID
	m.nextID++
	copied := *inc
	m.incidents[inc.ID] = &copied
	return nil
}

func (m *mockIncidentRepository) GetByID(id int64) (*incident.Incident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return nil, incident.ErrNotFound
	}
	copied := *inc
	return &copied, nil
}

func (m *mockIncidentRepository) Update(inc *incident.Incident) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *inc
	m.incidents[inc.ID] = &copied
	return nil
}

func (m *mockIncidentRepository) List(filter incident.ListFilter) ([]incident.Incident, int64, error) {
	var out []incident.Incident
	for _, inc := range m.incidents {
		out = append(out, *inc)
	}
	return out, int64(len(out)), nil
}

func (m *mockIncidentRepository) ListByReporter(reporterID int64, limit int) ([]incident.Incident, error) {
	var out []incident.Incident
	for _, inc := range m.incidents {
		if inc.ReporterID == reporterID {
			out = append(out, *inc)
		}
	}
	return out, nil
}

func (m *mockIncidentRepository) ListRecent(limit int) ([]incident.Incident, error) {
	var out []incident.Incident
	for _, inc := range m.incidents {
		out = append(out, *inc)
	}
	return out, nil
}

func (m *mockIncidentRepository) Search(query string, page, perPage int) ([]incident.Incident, int64, error) {
	return nil, 0, nil
}

func (m *mockIncidentRepository) Stats() (*incident.Stats, error) {
	stats := &incident.Stats{}
	for _, inc := range m.incidents {
		stats.TotalIncidents++
		switch inc.Status {
		case incident.StatusOpen:
			stats.OpenIncidents++
		case incident.StatusInProgress:
			stats.InProgressIncidents++
		case incident.StatusResolved, incident.StatusClosed:
			stats.ResolvedIncidents++
		}
	}
	return stats, nil
}

func (m *mockIncidentRepository) AttachParts(incidentID int64, selections []incident.PartSelectionDTO) error {
	m.parts[incidentID] = append(m.parts[incidentID], selections...)
	return nil
}

func (m *mockIncidentRepository) GetParts(incidentID int64) ([]incident.PartUsage, error) {
	var out []incident.PartUsage
	for _, sel := range m.parts[incidentID] {
		out = append(out, incident.PartUsage{
			PartID:       sel.PartID,
			QuantityUsed: sel.QuantityUsed,
			Status:       sel.Status,
			Notes:        sel.Notes,
		})
	}
	return out, nil
}

type mockPartCatalog struct {
	active map[int64]struct{}
	err    error
}

func (m *mockPartCatalog) ActivePartIDs() (map[int64]struct{}, error) {
	return m.active, m.err
}

type mockEngineerDirectory struct {
	existing map[int64]bool
}

func (m *mockEngineerDirectory) Exists(engineerID int64) (bool, error) {
	return m.existing[engineerID], nil
}

var _ = Describe("IncidentService", func() {
	var (
		service   *incident.Service
		mockRepo  *mockIncidentRepository
		catalog   *mockPartCatalog
		engineers *mockEngineerDirectory
		reporter  *auth.User
		manager   *auth.User
		other     *auth.User
		ctx       context.Context
	)

	validDTO := func() incident.CreateIncidentDTO {
		return incident.CreateIncidentDTO{
			Title:       "Press brake hydraulic leak",
			Description: "Hydraulic fluid pooling under the press brake after each cycle.",
			Equipment:   "Press Brake 2",
			Location:    "Fabrication Bay",
			Severity:    incident.SeverityHigh,
			Priority:    incident.PriorityHigh,
			Category:    incident.CategoryHydraulic,
		}
	}

	BeforeEach(func() {
		mockRepo = newMockIncidentRepository()
		catalog = &mockPartCatalog{active: map[int64]struct{}{1: {}, 2: {}, 3: {}}}
		engineers = &mockEngineerDirectory{existing: map[int64]bool{10: true}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = incident.NewService(mockRepo, catalog, engineers, eventBus, 20, logger)

		reporter = &auth.User{ID: 1, Username: "jsmith", Role: auth.RoleUser}
		manager = &auth.User{ID: 2, Username: "morgan", Role: auth.RoleManager}
		other = &auth.User{ID: 3, Username: "casey", Role: auth.RoleUser}
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should persist a valid incident with status open", func() {
			inc, err := service.Create(ctx, reporter, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(inc.ID).To(BeNumerically(">", 0))
			Expect(inc.Status).To(Equal(incident.StatusOpen))
			Expect(inc.ReporterID).To(Equal(reporter.ID))
			Expect(inc.DateReported).ToNot(BeZero())
		})

		It("should reject a 5-character description and persist nothing", func() {
			dto := validDTO()
			dto.Description = "short"

			_, err := service.Create(ctx, reporter, dto)

			Expect(err).To(HaveOccurred())
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalErrors.ErrorTypeValidation))
			Expect(mockRepo.incidents).To(BeEmpty())
			Expect(mockRepo.parts).To(BeEmpty())
		})

		It("should attach selected parts with required status and quantity 1", func() {
			dto := validDTO()
			dto.PartsNeeded = []int64{1}
			dto.SelectedParts = []int64{2}

			inc, err := service.Create(ctx, reporter, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.parts[inc.ID]).To(HaveLen(2))
			for _, sel := range mockRepo.parts[inc.ID] {
				Expect(sel.QuantityUsed).To(Equal(1))
				Expect(sel.Status).To(Equal(incident.PartStatusRequired))
			}
		})

		It("should reject part IDs outside the active catalog and persist nothing", func() {
			dto := validDTO()
			dto.SelectedParts = []int64{99}

			_, err := service.Create(ctx, reporter, dto)

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.incidents).To(BeEmpty())
		})
	})

	Describe("Report", func() {
		It("should create an incident with generated title and defaults", func() {
			inc, err := service.Report(ctx, reporter, incident.ReportDTO{
				Equipment:   "CNC Mill 7",
				Location:    "Machine Shop",
				Description: "Coolant pump not priming on startup.",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(inc.Title).To(Equal("Equipment Issue: CNC Mill 7"))
			Expect(inc.Severity).To(Equal(incident.SeverityMedium))
			Expect(inc.Category).To(Equal(incident.CategoryMechanical))
		})

		It("should reject a description under 10 characters", func() {
			_, err := service.Report(ctx, reporter, incident.ReportDTO{
				Equipment:   "CNC Mill 7",
				Location:    "Machine Shop",
				Description: "broken",
			})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.incidents).To(BeEmpty())
		})
	})

	Describe("UpdateStatus", func() {
		var created *incident.Incident

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should let the reporter resolve their own incident", func() {
			updated, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: incident.StatusResolved})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(incident.StatusResolved))
			Expect(updated.ResolvedAt).ToNot(BeNil())
		})

		It("should let a manager update any incident", func() {
			updated, err := service.UpdateStatus(ctx, manager, created.ID, incident.UpdateStatusDTO{Status: incident.StatusInProgress})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(incident.StatusInProgress))
		})

		It("should forbid an unrelated user", func() {
			_, err := service.UpdateStatus(ctx, other, created.ID, incident.UpdateStatusDTO{Status: incident.StatusResolved})

			Expect(err).To(HaveOccurred())
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalErrors.ErrorTypeForbidden))

			stored, _ := mockRepo.GetByID(created.ID)
			Expect(stored.Status).To(Equal(incident.StatusOpen))
		})

		It("should reject a status outside the closed set", func() {
			_, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: "escalated"})

			Expect(err).To(HaveOccurred())
			stored, _ := mockRepo.GetByID(created.ID)
			Expect(stored.Status).To(Equal(incident.StatusOpen))
		})

		It("should clear resolved_at when reopening", func() {
			_, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: incident.StatusResolved})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: incident.StatusOpen})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.ResolvedAt).To(BeNil())
		})

		It("should return not found for a missing incident", func() {
			_, err := service.UpdateStatus(ctx, manager, 999, incident.UpdateStatusDTO{Status: incident.StatusResolved})

			Expect(err).To(Equal(internalErrors.ErrIncidentNotFound))
		})
	})

	Describe("Assign", func() {
		var created *incident.Incident

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should attach the engineer and move open incidents to in_progress", func() {
			updated, err := service.Assign(ctx, created.ID, incident.AssignDTO{EngineerID: 10})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.EngineerID).ToNot(BeNil())
			Expect(*updated.EngineerID).To(Equal(int64(10)))
			Expect(updated.Status).To(Equal(incident.StatusInProgress))
		})

		It("should reject an unknown engineer", func() {
			_, err := service.Assign(ctx, created.ID, incident.AssignDTO{EngineerID: 55})

			Expect(err).To(Equal(internalErrors.ErrEngineerNotFound))
		})
	})

	Describe("AddParts", func() {
		var created *incident.Incident

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())
		})

		It("should attach parts with their link metadata", func() {
			usages, err := service.AddParts(created.ID, incident.AddPartsDTO{
				Parts: []incident.PartSelectionDTO{
					{PartID: 1, QuantityUsed: 2, Status: incident.PartStatusOrdered, Notes: "expedite"},
					{PartID: 2},
					{PartID: 3, Status: incident.PartStatusInstalled},
				},
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(usages).To(HaveLen(3))
			Expect(usages[0].QuantityUsed).To(Equal(2))
			Expect(usages[0].Status).To(Equal(incident.PartStatusOrdered))
			Expect(usages[0].Notes).To(Equal("expedite"))
			Expect(usages[1].QuantityUsed).To(Equal(1))
			Expect(usages[1].Status).To(Equal(incident.PartStatusRequired))
		})

		It("should reject an empty selection", func() {
			_, err := service.AddParts(created.ID, incident.AddPartsDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown part status", func() {
			_, err := service.AddParts(created.ID, incident.AddPartsDTO{
				Parts: []incident.PartSelectionDTO{{PartID: 1, Status: "lost"}},
			})
			Expect(err).To(HaveOccurred())
		})

		It("should surface a catalog error as internal", func() {
			catalog.err = errors.New("db down")

			_, err := service.AddParts(created.ID, incident.AddPartsDTO{
				Parts: []incident.PartSelectionDTO{{PartID: 1}},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Dashboard", func() {
		It("should aggregate recent, own and counted incidents", func() {
			_, err := service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())
			created, err := service.Create(ctx, other, validDTO())
			Expect(err).ToNot(HaveOccurred())
			_, err = service.UpdateStatus(ctx, other, created.ID, incident.UpdateStatusDTO{Status: incident.StatusResolved})
			Expect(err).ToNot(HaveOccurred())

			data, err := service.Dashboard(reporter.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(data.MyIncidents).To(HaveLen(1))
			Expect(data.Stats.TotalIncidents).To(Equal(int64(2)))
			Expect(data.Stats.OpenIncidents).To(Equal(int64(1)))
			Expect(data.Stats.ResolvedIncidents).To(Equal(int64(1)))
		})
	})

	Describe("List", func() {
		It("should page with the configured default size", func() {
			_, err := service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())

			page, err := service.List(incident.ListFilter{})

			Expect(err).ToNot(HaveOccurred())
			Expect(page.Page).To(Equal(1))
			Expect(page.PerPage).To(Equal(20))
			Expect(page.Total).To(Equal(int64(1)))
			Expect(page.TotalPages).To(Equal(1))
		})
	})

	Describe("resolved_at stability", func() {
		It("should keep the original timestamp when closing an already resolved incident", func() {
			created, err := service.Create(ctx, reporter, validDTO())
			Expect(err).ToNot(HaveOccurred())

			resolved, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: incident.StatusResolved})
			Expect(err).ToNot(HaveOccurred())
			firstResolvedAt := *resolved.ResolvedAt

			time.Sleep(5 * time.Millisecond)
			closed, err := service.UpdateStatus(ctx, reporter, created.ID, incident.UpdateStatusDTO{Status: incident.StatusClosed})
			Expect(err).ToNot(HaveOccurred())
			Expect(*closed.ResolvedAt).To(Equal(firstResolvedAt))
		})
	})
})
