// Command importer drives imports from the command line, the cron-friendly
// counterpart to the admin server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"product_importer/internal/assets"
	"product_importer/internal/config"
	"product_importer/internal/fetcher"
	"product_importer/internal/importer"
	"product_importer/internal/metrics"
	"product_importer/internal/repository"
	"product_importer/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "importer",
		Short: "Universal product feed importer",
	}

	root.AddCommand(vendorsCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(importCmd())
	root.AddCommand(csvCmd())
	root.AddCommand(testCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	registry *config.VendorRegistry
	svc      *importer.Service
	cleanup  func()
}

func setup() (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	logger.OpenLog()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	registry, err := config.LoadVendors(cfg.VendorConfigPath)
	if err != nil {
		return nil, err
	}

	var productStore repository.ProductStore
	var assetStore repository.AssetStore
	cleanup := func() {}

	switch cfg.StoreType {
	case "mongo":
		db, err := config.InitMongo(cfg)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(db)
		productStore, assetStore = store, store
		cleanup = func() { db.Close() }
	case "memory":
		store := repository.NewMemoryStore()
		productStore, assetStore = store, store
	}

	var recorder *metrics.Recorder
	if cfg.MetricsEnabled() {
		influx, err := config.InitInflux(cfg)
		if err != nil {
			return nil, err
		}
		recorder = metrics.NewRecorder(influx)
		prev := cleanup
		cleanup = func() { influx.Close(); prev() }
	}

	svc := importer.NewService(
		registry,
		fetcher.New(time.Duration(cfg.HTTPTimeout)*time.Second),
		productStore,
		assets.NewResolver(assetStore),
		recorder,
	)

	return &app{cfg: cfg, registry: registry, svc: svc, cleanup: cleanup}, nil
}

func vendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List configured vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			for _, key := range a.registry.Keys() {
				cfg := a.registry.Get(key)
				fmt.Printf("%-20s %s (%s)\n", key, cfg.Name, cfg.Source)
			}
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <vendor>",
		Short: "Fetch a vendor API feed and save it as a JSON data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			cfg := a.registry.Get(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown vendor: %s", args[0])
			}

			runID := uuid.NewString()
			f := fetcher.New(time.Duration(a.cfg.HTTPTimeout) * time.Second)
			records, err := f.Fetch(runID, cfg)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No records fetched!")
				return nil
			}

			path := filepath.Join(a.cfg.DataDir, cfg.Key+"-products.json")
			if err := fetcher.SaveFile(path, records); err != nil {
				return err
			}

			fmt.Printf("Saved %d records to %s\n", len(records), path)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "import <vendor>",
		Short: "Import a window of a vendor feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			result, err := a.svc.RunImport(context.Background(), args[0], offset, limit)
			if err != nil {
				return err
			}

			fmt.Printf("Import complete: %d created, %d updated, %d errors (%.1fs)\n",
				result.Created, result.Updated, result.Errors, result.Duration)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum records to import (0 = all)")
	return cmd
}

func csvCmd() *cobra.Command {
	var vendor string
	var offset, batchSize int
	var all bool

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Import a CSV file in batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			cfg := a.registry.Get(vendor)
			if cfg == nil {
				return fmt.Errorf("unknown vendor: %s", vendor)
			}

			totalCreated, totalUpdated, totalErrors := 0, 0, 0
			for {
				result, err := a.svc.ProcessCSVBatch(context.Background(), args[0], cfg, offset, batchSize)
				if err != nil {
					return err
				}

				totalCreated += result.Created
				totalUpdated += result.Updated
				totalErrors += len(result.Errors)
				for _, msg := range result.Errors {
					fmt.Println("  ", msg)
				}
				fmt.Printf("Batch done (offset %d): processed %d\n", offset, result.Processed)

				if !all || !result.Continue {
					break
				}
				offset += result.Processed
			}

			fmt.Printf("CSV import complete: %d created, %d updated, %d errors\n",
				totalCreated, totalUpdated, totalErrors)
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "Vendor key for field mappings")
	cmd.Flags().IntVar(&offset, "offset", 0, "Data rows to skip")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "Rows per batch")
	cmd.Flags().BoolVar(&all, "all", false, "Keep processing batches until the file is done")
	cmd.MarkFlagRequired("vendor")
	return cmd
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <vendor> <identity>",
		Short: "Run one product through the full pipeline and print every stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.cleanup()

			report, err := a.svc.TestSingleProduct(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}
