// cmd/worker-manager/workers.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"volunteer-workers/internal/common/aws"
	"volunteer-workers/internal/common/camunda"
	"volunteer-workers/internal/common/config"
	"volunteer-workers/internal/common/database"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/location"

	car "volunteer-workers/internal/workers/application/create-application-record"
	sn "volunteer-workers/internal/workers/application/send-notification"
	uas "volunteer-workers/internal/workers/application/update-application-status"
	vad "volunteer-workers/internal/workers/application/validate-application-data"
	qe "volunteer-workers/internal/workers/data-access/query-elasticsearch"
	esq "volunteer-workers/internal/workers/data-access/query-elasticsearch/queries"
	qp "volunteer-workers/internal/workers/data-access/query-postgresql"
	pgq "volunteer-workers/internal/workers/data-access/query-postgresql/queries"
	mv "volunteer-workers/internal/workers/matching/match-volunteers"
	rp "volunteer-workers/internal/workers/project/review-project"
)

type dependencies struct {
	cfg     *config.Config
	db      *sql.DB
	es      *elasticsearch.Client
	redis   *database.RedisClient
	regions *location.RegionTable
	log     logger.Logger
}

// buildRegistrations constructs a handler for every enabled task type.
func buildRegistrations(ctx context.Context, d *dependencies) ([]camunda.Registration, error) {
	var regs []camunda.Registration
	add := func(taskType string, h camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(d.cfg, taskType)
		regs = append(regs, camunda.Registration{
			TaskType:      taskType,
			Handler:       h,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		})
	}
	enabled := func(taskType string) bool {
		if config.GetWorkerConfig(d.cfg, taskType).Enabled {
			return true
		}
		d.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}
	timeout := func(taskType string, def time.Duration) time.Duration {
		if ms := config.GetWorkerConfig(d.cfg, taskType).Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return def
	}

	// --- Matching ---
	if enabled(mv.TaskType) {
		cfg := mv.LoadConfig()
		cfg.Timeout = timeout(mv.TaskType, cfg.Timeout)
		cfg.CacheTTL = time.Duration(d.cfg.Locations.CacheTTLSeconds) * time.Second
		cfg.MaxCandidates = d.cfg.Locations.MaxCandidates
		cfg.StrictCodes = d.cfg.Locations.StrictCodes

		store := pgq.NewStore(d.db)
		var source mv.VolunteerSource = store
		if d.cfg.Locations.VolunteerSource == config.VolunteerSourceElasticsearch {
			source = esq.NewVolunteerIndex(d.es, d.cfg.Database.Elasticsearch.VolunteerIndex)
		}
		projects := mv.NewCachedFinder(store, d.redis, cfg.CacheTTL, d.log)

		add(mv.TaskType, mv.NewHandler(cfg, location.NewMatcher(d.regions), projects, source, d.log))
	}

	// --- Data access ---
	if enabled(qp.TaskType) {
		cfg := qp.LoadConfig()
		cfg.Timeout = timeout(qp.TaskType, cfg.Timeout)
		add(qp.TaskType, qp.NewHandler(cfg, d.db, d.log))
	}
	if enabled(qe.TaskType) {
		cfg := qe.LoadConfig()
		cfg.Timeout = timeout(qe.TaskType, cfg.Timeout)
		cfg.DefaultIndex = d.cfg.Database.Elasticsearch.VolunteerIndex
		add(qe.TaskType, qe.NewHandler(cfg, d.es, d.log))
	}

	// --- Applications ---
	if enabled(vad.TaskType) {
		cfg := vad.LoadConfig()
		cfg.Timeout = timeout(vad.TaskType, cfg.Timeout)
		add(vad.TaskType, vad.NewHandler(cfg, d.log))
	}
	if enabled(car.TaskType) {
		cfg := car.LoadConfig()
		cfg.Timeout = timeout(car.TaskType, cfg.Timeout)
		add(car.TaskType, car.NewHandler(cfg, d.db, d.log))
	}
	if enabled(uas.TaskType) {
		cfg := uas.LoadConfig()
		cfg.Timeout = timeout(uas.TaskType, cfg.Timeout)
		add(uas.TaskType, uas.NewHandler(cfg, d.db, d.log))
	}

	// --- Projects ---
	if enabled(rp.TaskType) {
		cfg := rp.LoadConfig()
		cfg.Timeout = timeout(rp.TaskType, cfg.Timeout)
		add(rp.TaskType, rp.NewHandler(cfg, d.db, d.log))
	}

	// --- Notifications ---
	if enabled(sn.TaskType) {
		h, err := newNotificationHandler(ctx, d, timeout(sn.TaskType, 30*time.Second))
		if err != nil {
			return nil, err
		}
		add(sn.TaskType, h)
	}

	return regs, nil
}

func newNotificationHandler(ctx context.Context, d *dependencies, timeout time.Duration) (*sn.Handler, error) {
	n := d.cfg.Notifications
	awsCfg := d.cfg.Integrations.AWS

	cfg := sn.LoadConfig()
	cfg.Timeout = timeout
	cfg.EmailEnabled = n.Email.Enabled && awsCfg.SES.Enabled
	cfg.SMSEnabled = n.SMS.Enabled && awsCfg.SNS.Enabled
	cfg.FromEmail = n.Email.FromEmail
	if cfg.FromEmail == "" {
		cfg.FromEmail = awsCfg.SES.FromEmail
	}
	if n.SMS.PriorityThreshold != "" {
		cfg.SMSPriority = n.SMS.PriorityThreshold
	}

	region := n.AWS.Region
	if region == "" {
		region = awsCfg.Region
	}

	var (
		sesClient sn.SESService
		snsClient sn.SNSService
	)
	if cfg.EmailEnabled {
		c, err := aws.NewSESClient(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		sesClient = c
	}
	if cfg.SMSEnabled {
		c, err := aws.NewSNSClient(ctx, region, awsCfg.SNS.DefaultSMSSenderID)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		snsClient = c
	}

	return sn.NewHandler(cfg, d.db, sesClient, snsClient, d.log), nil
}
