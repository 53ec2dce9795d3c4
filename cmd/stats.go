package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	incidentPostgres "github.com/incidentops/incident-management/internal/incident/postgres"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print incident statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		repo := incidentPostgres.NewIncidentRepository(db)
		stats, err := repo.Stats()
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}
