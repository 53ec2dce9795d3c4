package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	userDatamodel "github.com/incidentops/incident-management/internal/core/datamodel/user"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(adminPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters long")
		}

		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		var count int64
		if err := db.Model(&userDatamodel.User{}).
			Where("username = ? OR email = ?", adminUsername, adminEmail).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("username or email already in use")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), cfg.Security.BCryptCost)
		if err != nil {
			return err
		}

		admin := userDatamodel.User{
			Username:             adminUsername,
			Email:                adminEmail,
			PasswordHash:         string(hash),
			FirstName:            "System",
			LastName:             "Administrator",
			Role:                 "admin",
			IsActive:             true,
			NotificationsEnabled: true,
			CreatedAt:            time.Now(),
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}

		fmt.Printf("Created admin account %q (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "admin@example.com", "admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 8 characters)")
	createAdminCmd.MarkFlagRequired("password")
}
