package part_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/core/events"
	"github.com/incidentops/incident-management/internal/part"
)

func TestPart(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Part Suite")
}

type mockPartRepository struct {
	parts  map[int64]*part.Part
	nextID int64
}

func newMockPartRepository() *mockPartRepository {
	return &mockPartRepository{parts: make(map[int64]*part.Part), nextID: 1}
}

func (m *mockPartRepository) Create(p *part.Part) error {
	p.ID = m.nextID
	m.nextID++
	copied := *p
	m.parts[p.ID] = &copied
	return nil
}

func (m *mockPartRepository) GetByID(id int64) (*part.Part, error) {
	p, ok := m.parts[id]
	if !ok {
		return nil, part.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockPartRepository) GetByPartNumber(partNumber string) (*part.Part, error) {
	for _, p := range m.parts {
		if p.PartNumber == partNumber {
			copied := *p
			return &copied, nil
		}
	}
	return nil, part.ErrNotFound
}

func (m *mockPartRepository) Update(p *part.Part) error {
	copied := *p
	m.parts[p.ID] = &copied
	return nil
}

func (m *mockPartRepository) ListActive() ([]part.Part, error) {
	var out []part.Part
	for _, p := range m.parts {
		if p.Status == part.StatusActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPartRepository) ListLowStock() ([]part.Part, error) {
	var out []part.Part
	for _, p := range m.parts {
		if p.Status == part.StatusActive && p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPartRepository) ActivePartIDs() (map[int64]struct{}, error) {
	set := make(map[int64]struct{})
	for id, p := range m.parts {
		if p.Status == part.StatusActive {
			set[id] = struct{}{}
		}
	}
	return set, nil
}

func (m *mockPartRepository) UsageCount(partID int64) (int64, error) {
	return 0, nil
}

var _ = Describe("Part", func() {
	Describe("IsLowStock", func() {
		It("should be low exactly at the minimum", func() {
			p := &part.Part{CurrentStock: 3, MinimumStock: 3}
			Expect(p.IsLowStock()).To(BeTrue())
		})

		It("should not be low above the minimum", func() {
			p := &part.Part{CurrentStock: 4, MinimumStock: 3}
			Expect(p.IsLowStock()).To(BeFalse())
		})

		It("should be low below the minimum", func() {
			p := &part.Part{CurrentStock: 0, MinimumStock: 3}
			Expect(p.IsLowStock()).To(BeTrue())
		})
	})
})

var _ = Describe("PartService", func() {
	var (
		service  *part.Service
		mockRepo *mockPartRepository
		eventBus *events.EventBus
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockPartRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus = events.NewEventBus(logger)
		service = part.NewService(mockRepo, eventBus, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should default currency and status", func() {
			p, err := service.Create(part.CreatePartDTO{PartNumber: "HYD-2041", Name: "Seal kit"})

			Expect(err).ToNot(HaveOccurred())
			Expect(p.Currency).To(Equal("USD"))
			Expect(p.Status).To(Equal(part.StatusActive))
		})

		It("should reject a duplicate part number", func() {
			_, err := service.Create(part.CreatePartDTO{PartNumber: "HYD-2041", Name: "Seal kit"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Create(part.CreatePartDTO{PartNumber: "HYD-2041", Name: "Another"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internalErrors.ErrorTypeConflict))
		})

		It("should reject a missing part number", func() {
			_, err := service.Create(part.CreatePartDTO{Name: "Anonymous part"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AdjustStock", func() {
		var created *part.Part

		BeforeEach(func() {
			var err error
			created, err = service.Create(part.CreatePartDTO{
				PartNumber:   "BRG-6205",
				Name:         "Bearing",
				CurrentStock: 10,
				MinimumStock: 4,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should publish a low-stock event when crossing the threshold", func() {
			received := make(chan events.Event, 1)
			eventBus.Subscribe(events.EventTypePartLowStock, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})

			p, err := service.AdjustStock(ctx, created.ID, part.AdjustStockDTO{Delta: -7})

			Expect(err).ToNot(HaveOccurred())
			Expect(p.CurrentStock).To(Equal(3))
			Eventually(received).Should(Receive())
		})

		It("should not publish when staying above the threshold", func() {
			received := make(chan events.Event, 1)
			eventBus.Subscribe(events.EventTypePartLowStock, func(ctx context.Context, e events.Event) error {
				received <- e
				return nil
			})

			_, err := service.AdjustStock(ctx, created.ID, part.AdjustStockDTO{Delta: -2})

			Expect(err).ToNot(HaveOccurred())
			Consistently(received).ShouldNot(Receive())
		})

		It("should clamp stock at zero", func() {
			p, err := service.AdjustStock(ctx, created.ID, part.AdjustStockDTO{Delta: -100})

			Expect(err).ToNot(HaveOccurred())
			Expect(p.CurrentStock).To(BeZero())
		})

		It("should reject a zero delta", func() {
			_, err := service.AdjustStock(ctx, created.ID, part.AdjustStockDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListLowStock", func() {
		It("should only include parts at or below minimum", func() {
			_, err := service.Create(part.CreatePartDTO{PartNumber: "A-1", Name: "Part A", CurrentStock: 1, MinimumStock: 5})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.Create(part.CreatePartDTO{PartNumber: "B-2", Name: "Part B", CurrentStock: 9, MinimumStock: 5})
			Expect(err).ToNot(HaveOccurred())

			low, err := service.ListLowStock()
			Expect(err).ToNot(HaveOccurred())
			Expect(low).To(HaveLen(1))
			Expect(low[0].PartNumber).To(Equal("A-1"))
		})
	})
})
