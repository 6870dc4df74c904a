package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-todo/internal/config"
	"smart-todo/internal/inference"
	"smart-todo/internal/logging"
	"smart-todo/internal/repository"
	"smart-todo/internal/service"
	"smart-todo/internal/suggest"
	"smart-todo/internal/transfer"
)

// app holds the wired components one command run needs.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB

	tasks      *service.TaskService
	categories *service.CategoryService
	contexts   *service.ContextService
	insights   *service.InsightService
	digest     *service.DigestService
	engine     *suggest.Engine
	reconciler *transfer.Reconciler
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	contextRepo := repository.NewContextRepository(db)

	a := &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		tasks:      service.NewTaskService(taskRepo, categoryRepo, logger),
		categories: service.NewCategoryService(categoryRepo),
		contexts:   service.NewContextService(contextRepo),
		insights:   service.NewInsightService(contextRepo, logger),
		digest:     service.NewDigestService(taskRepo, categoryRepo),
		reconciler: transfer.NewReconciler(taskRepo, categoryRepo, logger),
	}

	provider, err := inference.New(ctx, cfg.Inference, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("inference: %w", err)
	}
	a.engine = suggest.NewEngine(suggest.Builder{MaxEntries: cfg.MaxContext}, a.contexts, a.categories, provider, logger)

	return a, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
