package main

import (
	"github.com/spf13/cobra"

	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load demo data",
	Long:  "seed connects to the configured MySQL database directly, wipes every matching table and loads demo users, relations and feedback.",
	RunE: func(_ *cobra.Command, _ []string) error {
		database, err := db.NewDB(cfg)
		if err != nil {
			return err
		}
		if err := db.SeedTestData(database, logger.L()); err != nil {
			return err
		}
		logger.Info("seeding completed")
		return nil
	},
}
