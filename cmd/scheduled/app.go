package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/config"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/app"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/db"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/service"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/upstream"
)

type globalOptions struct {
	configPath string
	noColor    bool
}

// components are the wired dependencies shared by every command.
type components struct {
	cfg          *config.Config
	logger       *zap.Logger
	db           *gorm.DB
	local        store.Store
	availability store.AvailabilityStore
	meetings     store.MeetingStore
}

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

func wire(opts *globalOptions) (*components, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	gormDB, err := db.Init(&cfg.Database, cfg.Environment, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	local := store.NewGormStore(gormDB, cfg.Schedule.Location)

	c := &components{
		cfg:          cfg,
		logger:       logger,
		db:           gormDB,
		local:        local,
		availability: local,
		meetings:     local,
	}
	if cfg.Upstream.Enabled {
		client := upstream.NewClient(cfg.Upstream, cfg.Schedule.Location, logger.Named("upstream"))
		c.availability = client
		c.meetings = client
		logger.Info("using upstream scheduling backend", zap.String("base_url", cfg.Upstream.BaseURL))
	}
	return c, nil
}

func (c *components) service(notifier service.Notifier) *service.Service {
	return service.New(c.availability, c.meetings, notifier, service.Options{
		Grid:         c.cfg.Schedule.Grid(),
		Cutoff:       c.cfg.Schedule.Cutoff,
		SlotDuration: c.cfg.Schedule.Duration,
		Location:     c.cfg.Schedule.Location,
	}, c.logger.Named("schedule"))
}

func (c *components) webpushOptions() *webpush.Options {
	return &webpush.Options{
		VAPIDPublicKey:  c.cfg.Push.PublicKey,
		VAPIDPrivateKey: c.cfg.Push.PrivateKey,
		Subscriber:      c.cfg.Push.Subject,
		TTL:             c.cfg.Push.TTL,
	}
}

func (c *components) Close() {
	if sqlDB, err := c.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = c.logger.Sync()
}
