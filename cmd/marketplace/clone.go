package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/marketplace/internal/config"
)

// marketplace clone <shipperId> imports a Shipper catalog entry into the configured store.
var cloneCmd = &cobra.Command{
	Use:   "clone <shipperId>",
	Short: "Import a product from the Shipper catalog and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.catalog.CloneFromShipper(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("clone %s: %w", args[0], err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the SQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StorageDriver == config.StorageMemory {
			return fmt.Errorf("migrate needs STORAGE_DRIVER=postgres or sqlite")
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("schema up to date", "driver", cfg.StorageDriver)
		return nil
	},
}
