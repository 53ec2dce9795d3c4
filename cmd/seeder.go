package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	engineerDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/engineer"
	incidentDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/incident"
	partDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/part"
	userDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/user"
	"github.com/incidentops/incident-management/internal/incident"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"incident_parts", "incidents", "engineers", "sessions", "parts", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		now := time.Now()

		users := []userDatamodel.User{
			{Username: "admin", Email: "admin@example.com", FirstName: "Ada", LastName: "Admin", Role: "admin", Department: "Operations"},
			{Username: "manager", Email: "manager@example.com", FirstName: "Morgan", LastName: "Manager", Role: "manager", Department: "Maintenance"},
			{Username: "jsmith", Email: "jsmith@example.com", FirstName: "Jamie", LastName: "Smith", Role: "user", Department: "Production"},
			{Username: "engineer1", Email: "engineer1@example.com", FirstName: "Eli", LastName: "Ngata", Role: "user", Department: "Maintenance"},
		}
		for i := range users {
			u := &users[i]
			u.PasswordHash = string(hash)
			u.IsActive = true
			u.NotificationsEnabled = true
			u.CreatedAt = now
			if err := firstOrCreate(db, u, "username = ?", u.Username); err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Username, err)
			}
		}
		fmt.Println("Seeded users (password: password123)")

		var engineerUser userDatamodel.User
		if err := db.Where("username = ?", "engineer1").First(&engineerUser).Error; err != nil {
			log.Fatalf("failed to look up engineer user: %v", err)
		}
		eng := engineerDatamodel.Engineer{
			UserID:             engineerUser.ID,
			EmployeeID:         "ENG-001",
			Specialization:     "Hydraulics",
			CertificationLevel: "Level II",
			YearsExperience:    7,
			Shift:              "day",
			IsOnCall:           true,
			CreatedAt:          now,
		}
		if err := firstOrCreate(db, &eng, "employee_id = ?", eng.EmployeeID); err != nil {
			log.Fatalf("failed to seed engineer: %v", err)
		}
		fmt.Println("Seeded engineer ENG-001")

		parts := []partDatamodel.Part{
			{PartNumber: "HYD-2041", Name: "Hydraulic pump seal kit", Category: "hydraulics", CurrentStock: 12, MinimumStock: 4, Currency: "USD", Status: "active"},
			{PartNumber: "BRG-6205", Name: "Deep groove ball bearing 6205", Category: "mechanical", CurrentStock: 3, MinimumStock: 6, Currency: "USD", Status: "active"},
			{PartNumber: "FLT-0114", Name: "Inline oil filter cartridge", Category: "filtration", CurrentStock: 25, MinimumStock: 10, Currency: "USD", Status: "active"},
		}
		for i := range parts {
			p := &parts[i]
			p.CreatedAt = now
			p.UpdatedAt = now
			if err := firstOrCreate(db, p, "part_number = ?", p.PartNumber); err != nil {
				log.Fatalf("failed to seed part %s: %v", p.PartNumber, err)
			}
		}
		fmt.Println("Seeded parts")

		var reporter userDatamodel.User
		if err := db.Where("username = ?", "jsmith").First(&reporter).Error; err != nil {
			log.Fatalf("failed to look up reporter: %v", err)
		}
		sample := incidentDatamodel.Incident{
			Title:        "Conveyor belt motor overheating",
			Description:  "Motor on line 3 conveyor runs hot after thirty minutes of operation and trips the thermal cutout.",
			Equipment:    "Conveyor Line 3",
			Location:     "Assembly Hall B",
			DateReported: now,
			Severity:     incident.SeverityHigh,
			Priority:     incident.PriorityHigh,
			Category:     incident.CategoryElectrical,
			Status:       incident.StatusOpen,
			ReporterID:   reporter.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := firstOrCreate(db, &sample, "title = ?", sample.Title); err != nil {
			log.Fatalf("failed to seed incident: %v", err)
		}
		fmt.Println("Seeded sample incident")
	},
}

func firstOrCreate(db *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(dest).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(dest).Error
}
