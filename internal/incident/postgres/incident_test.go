package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	incidentDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/incident"
	partDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/part"
	"github.com/incidentops/incident-management/internal/incident"
)

func TestIncidentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "IncidentRepository Suite")
}

var _ = Describe("IncidentRepository", func() {
	var (
		db   *gorm.DB
		repo incident.Repository
	)

	newIncident := func(title, status, severity string, reportedAgo time.Duration) *incident.Incident {
		now := time.Now()
		inc := &incident.Incident{
			Title:        title,
			Description:  "Something broke and needs attention soon.",
			Equipment:    "Test Rig",
			Location:     "Test Bay",
			DateReported: now.Add(-reportedAgo),
			Severity:     severity,
			Priority:     incident.PriorityMedium,
			Category:     incident.CategoryMechanical,
			Status:       status,
			ReporterID:   1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return inc
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&incidentDatamodel.Incident{},
			&incidentDatamodel.IncidentPart{},
			&partDatamodel.Part{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewIncidentRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetByID", func() {
		It("should round-trip an incident", func() {
			inc := newIncident("Pump failure", incident.StatusOpen, incident.SeverityHigh, 0)

			Expect(repo.Create(inc)).To(Succeed())
			Expect(inc.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(inc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal("Pump failure"))
			Expect(got.Status).To(Equal(incident.StatusOpen))
		})

		It("should return ErrNotFound for a missing id", func() {
			_, err := repo.GetByID(12345)
			Expect(err).To(Equal(incident.ErrNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(repo.Create(newIncident("oldest", incident.StatusOpen, incident.SeverityLow, 3*time.Hour))).To(Succeed())
			Expect(repo.Create(newIncident("middle", incident.StatusOpen, incident.SeverityHigh, 2*time.Hour))).To(Succeed())
			Expect(repo.Create(newIncident("newest", incident.StatusResolved, incident.SeverityCritical, time.Hour))).To(Succeed())
		})

		It("should order newest first", func() {
			incidents, total, err := repo.List(incident.ListFilter{Page: 1, PerPage: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(incidents[0].Title).To(Equal("newest"))
			Expect(incidents[2].Title).To(Equal("oldest"))
		})

		It("should filter by status", func() {
			incidents, total, err := repo.List(incident.ListFilter{Status: incident.StatusResolved, Page: 1, PerPage: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(incidents[0].Title).To(Equal("newest"))
		})

		It("should paginate", func() {
			incidents, total, err := repo.List(incident.ListFilter{Page: 2, PerPage: 2})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(incidents).To(HaveLen(1))
			Expect(incidents[0].Title).To(Equal("oldest"))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			a := newIncident("Conveyor jam", incident.StatusOpen, incident.SeverityMedium, time.Hour)
			a.Description = "Belt misalignment near the drive roller."
			Expect(repo.Create(a)).To(Succeed())

			b := newIncident("Compressor noise", incident.StatusOpen, incident.SeverityMedium, 2*time.Hour)
			b.Description = "Grinding sound from the intake stage."
			Expect(repo.Create(b)).To(Succeed())
		})

		It("should match substrings in the title", func() {
			results, total, err := repo.Search("Conveyor", 1, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(results[0].Title).To(Equal("Conveyor jam"))
		})

		It("should match substrings in the description", func() {
			results, total, err := repo.Search("intake", 1, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(results[0].Title).To(Equal("Compressor noise"))
		})

		It("should return nothing for no match", func() {
			_, total, err := repo.Search("xyzzy", 1, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})

	Describe("Stats", func() {
		It("should count by status and severity", func() {
			Expect(repo.Create(newIncident("a", incident.StatusOpen, incident.SeverityCritical, time.Hour))).To(Succeed())
			Expect(repo.Create(newIncident("b", incident.StatusOpen, incident.SeverityLow, time.Hour))).To(Succeed())
			Expect(repo.Create(newIncident("c", incident.StatusResolved, incident.SeverityMedium, time.Hour))).To(Succeed())

			stats, err := repo.Stats()

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalIncidents).To(Equal(int64(3)))
			Expect(stats.OpenIncidents).To(Equal(int64(2)))
			Expect(stats.InProgressIncidents).To(BeZero())
			Expect(stats.ResolvedIncidents).To(Equal(int64(1)))
			Expect(stats.CriticalIncidents).To(Equal(int64(1)))
		})

		It("should count closed incidents as resolved", func() {
			Expect(repo.Create(newIncident("a", incident.StatusClosed, incident.SeverityLow, time.Hour))).To(Succeed())

			stats, err := repo.Stats()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.ResolvedIncidents).To(Equal(int64(1)))
		})
	})

	Describe("part associations", func() {
		var incID int64

		BeforeEach(func() {
			inc := newIncident("Needs parts", incident.StatusOpen, incident.SeverityHigh, time.Hour)
			Expect(repo.Create(inc)).To(Succeed())
			incID = inc.ID

			parts := []partDatamodel.Part{
				{PartNumber: "HYD-2041", Name: "Seal kit", Status: "active", Currency: "USD"},
				{PartNumber: "BRG-6205", Name: "Bearing", Status: "active", Currency: "USD"},
				{PartNumber: "FLT-0110", Name: "Inline filter", Status: "active", Currency: "USD"},
			}
			Expect(db.Create(&parts).Error).To(Succeed())
		})

		It("should store and return link metadata with part identity", func() {
			err := repo.AttachParts(incID, []incident.PartSelectionDTO{
				{PartID: 1, QuantityUsed: 2, Status: incident.PartStatusOrdered, Notes: "expedite"},
				{PartID: 2, QuantityUsed: 1, Status: incident.PartStatusRequired},
				{PartID: 3, QuantityUsed: 4, Status: incident.PartStatusReceived},
			})
			Expect(err).NotTo(HaveOccurred())

			usages, err := repo.GetParts(incID)
			Expect(err).NotTo(HaveOccurred())
			Expect(usages).To(HaveLen(3))
			Expect(usages[0].PartNumber).To(Equal("HYD-2041"))
			Expect(usages[0].QuantityUsed).To(Equal(2))
			Expect(usages[0].Status).To(Equal(incident.PartStatusOrdered))
			Expect(usages[0].Notes).To(Equal("expedite"))
			Expect(usages[2].PartNumber).To(Equal("FLT-0110"))
			Expect(usages[2].Status).To(Equal(incident.PartStatusReceived))
		})

		It("should update the link on re-selection instead of failing", func() {
			Expect(repo.AttachParts(incID, []incident.PartSelectionDTO{
				{PartID: 1, QuantityUsed: 1, Status: incident.PartStatusRequired},
			})).To(Succeed())

			Expect(repo.AttachParts(incID, []incident.PartSelectionDTO{
				{PartID: 1, QuantityUsed: 3, Status: incident.PartStatusInstalled, Notes: "fitted"},
			})).To(Succeed())

			usages, err := repo.GetParts(incID)
			Expect(err).NotTo(HaveOccurred())
			Expect(usages).To(HaveLen(1))
			Expect(usages[0].QuantityUsed).To(Equal(3))
			Expect(usages[0].Status).To(Equal(incident.PartStatusInstalled))
		})
	})
})
