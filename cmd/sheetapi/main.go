package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/sheetapi/internal/config"
	"github.com/JonMunkholm/sheetapi/internal/logging"
	"github.com/JonMunkholm/sheetapi/internal/sheet"
	"github.com/JonMunkholm/sheetapi/internal/store"
	"github.com/JonMunkholm/sheetapi/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "sheetapi",
		Short:        "Spreadsheet-backed CRUD service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env, configuration, and logging — shared by every command.
func setup() (*config.Config, error) {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// newStore selects the row-store backend from configuration.
func newStore(cfg *config.Config) (store.RowStore, error) {
	switch cfg.Store.Driver {
	case "xlsx":
		return store.NewXLSX(cfg.Store.Dir), nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			slog.Info("configuration loaded",
				"port", cfg.Server.Port,
				"store_driver", cfg.Store.Driver,
				"rate_limit_enabled", cfg.Rate.Enabled,
			)

			st, err := newStore(cfg)
			if err != nil {
				return err
			}

			presets, err := config.LoadPresets(cfg.Presets.Path)
			if err != nil {
				return fmt.Errorf("load presets: %w", err)
			}
			if len(presets) > 0 {
				slog.Info("presets loaded", "count", len(presets), "path", cfg.Presets.Path)
			}

			service := sheet.New(st, sheet.NewMetrics(prometheus.DefaultRegisterer))
			server := web.NewServer(service, cfg, presets)

			// Graceful shutdown
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh

				slog.Info("shutting down...")
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					slog.Error("shutdown error", "error", err)
				}
			}()

			slog.Info("server starting", "addr", cfg.Server.Addr())
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		storeID  string
		tabID    string
		keyField string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a tab as a key-indexed JSON manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			st, err := newStore(cfg)
			if err != nil {
				return err
			}

			req := sheet.Request{
				StoreID:   cfg.Store.DefaultStoreID,
				Tab:       cfg.Store.DefaultTabID,
				SchemaTab: cfg.Store.DefaultSchemaTabID,
			}
			req = req.Merge(sheet.Request{StoreID: storeID, Tab: tabID})

			service := sheet.New(st, nil)
			manifest, err := service.ExportManifest(cmd.Context(), req, keyField)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(manifest, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if outPath == "" || outPath == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			slog.Info("manifest written", "path", outPath, "entries", len(manifest))
			return nil
		},
	}

	cmd.Flags().StringVar(&storeID, "store", "", "store id (overrides STORE_DEFAULT_ID)")
	cmd.Flags().StringVar(&tabID, "tab", "", "tab name or numeric id")
	cmd.Flags().StringVar(&keyField, "key", "number", "field whose values key the manifest")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file, or - for stdout")
	return cmd
}
