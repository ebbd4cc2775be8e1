package main

import (
	"fmt"
	"log/slog"

	"github.com/campuskit/timetable-api/internal/domain/events"
	"github.com/campuskit/timetable-api/internal/domain/export"
	extracthandler "github.com/campuskit/timetable-api/internal/domain/extract/handler"
	"github.com/campuskit/timetable-api/internal/domain/extract/pdfsource"
	extractservice "github.com/campuskit/timetable-api/internal/domain/extract/service"
	"github.com/campuskit/timetable-api/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Services
	Source    pdfsource.Source
	Extractor *extractservice.Extractor
	Generator *events.Generator
	Exporter  *export.Service

	// Handlers
	TimetableHandler *extracthandler.TimetableHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initServices initializes the extraction pipeline and its collaborators
func (d *Dependencies) initServices() error {
	d.Source = pdfsource.New()
	d.Extractor = extractservice.NewExtractor(d.Source, d.Logger)

	generator, err := events.NewGenerator(d.Config.Calendar.DefaultTermEnd)
	if err != nil {
		return fmt.Errorf("failed to init event generator: %w", err)
	}
	d.Generator = generator

	d.Exporter = export.NewService(d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.TimetableHandler = extracthandler.NewTimetableHandler(
		d.Extractor,
		d.Generator,
		d.Exporter,
		d.Logger,
		d.Config.Upload.MaxBytes,
	)
	d.Logger.Info("handlers initialized")
}
