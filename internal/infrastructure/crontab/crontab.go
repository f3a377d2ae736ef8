package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"

	"persona-chat/internal/config"
	"persona-chat/internal/domain/usage"
	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/infrastructure/metrics"
	"persona-chat/internal/utils/platformerrors"
)

const (
	// usage ledger retention runs shortly after the UTC day rolls over
	usagePruneSchedule = "15 0 * * *"
	envReloadSchedule  = "* * * * *"
	CronJobTimeout     = 10 * time.Minute
)

type Crontab struct {
	ctab          *crontab.Crontab
	usageService  *usage.Service
	retentionDays func() int
}

func NewCrontab(usageService *usage.Service) *Crontab {
	return &Crontab{
		ctab:         crontab.New(),
		usageService: usageService,
		retentionDays: func() int {
			if cfg := config.GetGlobal(); cfg != nil {
				return cfg.UsageRetentionDays
			}
			return 30
		},
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()
	// execute once on server start
	c.pruneUsage(ctx)

	if err := c.ctab.AddJob(usagePruneSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.pruneUsage(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add usage prune job")
	}

	if err := c.ctab.AddJob(envReloadSchedule, func() {
		config.LoadEnvFiles()
		if _, err := config.Load(); err != nil {
			log.Warn().Err(err).Msg("env reload failed, keeping previous config")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add env reload job")
	}
	log.Info().Str("usage_prune", usagePruneSchedule).Msg("cron jobs scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) pruneUsage(ctx context.Context) {
	log := logger.GetLogger()
	days := c.retentionDays()
	cutoff := usage.DayStart(time.Now()).AddDate(0, 0, -days)

	removed, err := c.usageService.PruneBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("failed to prune usage ledger")
		return
	}
	metrics.UsageLogsPrunedTotal.Add(float64(removed))
	if removed > 0 {
		log.Info().Int64("removed", removed).Int("retention_days", days).Msg("usage ledger pruned")
	}
}
