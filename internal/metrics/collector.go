package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PresenceCollector periodically samples presence table gauges
type PresenceCollector struct {
	db          *gorm.DB
	metrics     *Metrics
	logger      *zap.Logger
	interval    time.Duration
	userTimeout time.Duration
	now         func() time.Time
	done        chan struct{}
	stopOnce    sync.Once
}

// NewPresenceCollector creates a new collector
func NewPresenceCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, userTimeout time.Duration) *PresenceCollector {
	return &PresenceCollector{
		db:          db,
		metrics:     metrics,
		logger:      logger,
		interval:    60 * time.Second,
		userTimeout: userTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		done:        make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *PresenceCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *PresenceCollector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *PresenceCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in presence metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var records int64
	if err := c.db.WithContext(ctx).Table("workspace_presence").Count(&records).Error; err != nil {
		c.logger.Error("Failed to count presence records", zap.Error(err))
	} else {
		c.metrics.SetPresenceRecordsTotal(records)
	}

	var workspaces int64
	since := c.now().Add(-c.userTimeout)
	if err := c.db.WithContext(ctx).Table("workspace_presence").
		Where("last_seen >= ?", since).
		Distinct("workspace_id").
		Count(&workspaces).Error; err != nil {
		c.logger.Error("Failed to count active workspaces", zap.Error(err))
	} else {
		c.metrics.SetActiveWorkspaces(workspaces)
	}
}
