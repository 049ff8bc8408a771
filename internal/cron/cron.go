package cron

import (
	"context"
	"os"
	"time"

	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
)

const (
	LeaseDuration = 15 * time.Second
	RenewDeadline = 10 * time.Second
	RetryPeriod   = 2 * time.Second
)

// CronManager runs the housekeeping jobs that don't belong to any single
// Orchestrator instance. Currently a single job: a periodic count of
// non-terminal sessions, informational only — it never revives a session,
// consistent with the facade's "no in-memory orchestrator is auto-revived
// at process start-up" policy.
type CronManager struct {
	cfg         *config.CronConfig
	log         logger.Logger
	cron        *cronv3.Cron
	k8s         kubernetes.Interface
	sessionRepo interfaces.SessionRepository
	stopCh      chan struct{}
	jobIDs      map[string]cronv3.EntryID
}

func NewCronManager(cfg *config.CronConfig, log logger.Logger, k8s kubernetes.Interface, sessionRepo interfaces.SessionRepository) *CronManager {
	return &CronManager{
		cfg:         cfg,
		log:         log,
		k8s:         k8s,
		sessionRepo: sessionRepo,
		stopCh:      make(chan struct{}),
		jobIDs:      make(map[string]cronv3.EntryID),
	}
}

// Start runs the cron scheduler, participating in leader election when
// both enabled and a k8s client is available; otherwise it runs in local
// mode, matching the teacher's fallback behaviour.
func (cm *CronManager) Start(podName string) error {
	if !cm.cfg.LeaderElectionEnabled || cm.k8s == nil || os.Getenv("LOCAL_DEV") == "true" {
		cm.log.Info("starting cron manager in local mode")
		cm.startCron()
		return nil
	}

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      cm.cfg.LeaderElectionLockName,
			Namespace: cm.cfg.LeaderElectionNamespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	errCh := make(chan error, 1)

	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					cm.startCron()
				},
				OnStoppedLeading: func() {
					cm.log.Info("leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("new cron leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}
		le.Run(context.Background())
	}()

	select {
	case err := <-errCh:
		cm.log.Warnf("leader election failed, falling back to local mode: %v", err)
		cm.startCron()
	case <-time.After(5 * time.Second):
	}

	return nil
}

func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("stopping cron manager")
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	close(cm.stopCh)
}

func (cm *CronManager) startCron() {
	cm.log.Info("starting cron manager")
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	if cm.cfg.StaleSessionCensusSchedule == "" {
		return
	}

	id, err := c.AddFunc(cm.cfg.StaleSessionCensusSchedule, func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		cm.staleSessionCensus()
	})
	if err != nil {
		cm.log.Fatalf("could not add stale session census job: %v", err)
	}
	cm.jobIDs["stale_session_census"] = id
	cm.log.Infof("registered stale session census job with schedule: %s", cm.cfg.StaleSessionCensusSchedule)
}

func (cm *CronManager) staleSessionCensus() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.staleSessionCensus")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	count, err := cm.sessionRepo.CountNonTerminal(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("failed to census non-terminal sessions: %v", err)
		return
	}

	if count > 0 {
		cm.log.Warnf("%d warmup session(s) non-terminal; no in-memory orchestrator is auto-revived for them", count)
	}
}
