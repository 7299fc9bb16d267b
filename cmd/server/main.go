package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/smartinvoice/smartinvoice/internal/application/port"
	"github.com/smartinvoice/smartinvoice/internal/application/service"
	"github.com/smartinvoice/smartinvoice/internal/config"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/export"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/external/openai"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/persistence/blobstore"
	"github.com/smartinvoice/smartinvoice/internal/infrastructure/persistence/repository"
	httpiface "github.com/smartinvoice/smartinvoice/internal/interfaces/http"
	"github.com/smartinvoice/smartinvoice/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SmartInvoice",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver))

	store, cleanup, err := newStore(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer cleanup()

	repo := repository.NewInvoiceRepository(store, logger)
	repo.Load()

	parser := openai.NewParser(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.Temperature,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Timeout,
		logger,
	)

	invoiceService := service.NewInvoiceService(repo, logger)
	assistantService := service.NewAssistantService(parser, logger)

	pdfRenderer := export.NewPDFRenderer(export.PDFConfig{
		CompanyName: cfg.Invoice.CompanyName,
		PayeeName:   cfg.Invoice.PayeeName,
		PayeeVPA:    cfg.Invoice.PayeeVPA,
		Currency:    cfg.Invoice.Currency,
	}, logger)
	excelReport := export.NewExcelReport(logger)

	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		invoiceService,
		assistantService,
		pdfRenderer,
		excelReport,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// newStore builds the configured blob store. The cleanup func closes
// whatever the driver holds open.
func newStore(cfg config.StorageConfig, logger *zap.Logger) (port.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := blobstore.NewSQLite(filepath.Join(cfg.Dir, "invoices.db"), cfg.Key, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return blobstore.NewFile(cfg.Dir, cfg.Key, logger), func() {}, nil
	}
}
