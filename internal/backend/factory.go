package backend

import (
	"context"
	"fmt"

	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/mirror"
	"ledger/internal/mirror/google"
	"ledger/internal/mirror/httpapi"
	"ledger/internal/mirror/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentMirror)}
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case NoneMirror:
		f.logger.Info("Mirror disabled, transactions stay local")
		return &Result{Mirror: mirror.Nop{}}, nil
	case MemoryMirror:
		f.logger.Info("Initialized in-memory mirror")
		return &Result{Mirror: memory.New()}, nil
	case HTTPMirror:
		return f.createHTTPMirror(config)
	case SheetsMirror:
		return f.createSheetsMirror(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Type)
	}
}

func (f *DefaultFactory) createHTTPMirror(config Config) (*Result, error) {
	cli, err := httpapi.New(httpapi.Config{
		CreateURL: config.CreateURL,
		ExportURL: config.ExportURL,
		Token:     config.Token,
		Timeout:   config.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http mirror: %w", err)
	}

	f.logger.Info("Initialized http mirror",
		"create_url", config.CreateURL,
		"export_url", config.ExportURL)

	return &Result{Mirror: cli}, nil
}

func (f *DefaultFactory) createSheetsMirror(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets mirror",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &Result{Mirror: cli}, nil
}

// NewMirror builds the mirror selected by the application config.
func NewMirror(ctx context.Context, appConfig *config.Config, logger *log.Logger) (*Result, error) {
	cfg, err := FromAppConfig(appConfig)
	if err != nil {
		return nil, err
	}
	return NewFactory(logger).CreateMirror(ctx, cfg)
}
