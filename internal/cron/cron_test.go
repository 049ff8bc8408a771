package cron

import (
	"context"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"k8s.io/client-go/kubernetes"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/interfaces"
)

type fakeSessionRepo struct {
	count int64
	err   error
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) FindActiveToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) FindCompletedToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) CreateOrReset(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) ResumeWithAppendedLeads(ctx context.Context, id string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, id string, status enum.SessionStatus, fields interfaces.SessionUpdateFields) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) CountNonTerminal(ctx context.Context) (int64, error) {
	return f.count, f.err
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	cfg := &config.CronConfig{StaleSessionCensusSchedule: "0 */15 * * * *"}
	log := getLogger()
	var k8s kubernetes.Interface

	cm := NewCronManager(cfg, log, k8s, nil)

	assert.NotNil(t, cm)
	assert.Equal(t, cfg, cm.cfg)
	assert.Equal(t, log, cm.log)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_RegisterJobs(t *testing.T) {
	cfg := &config.CronConfig{StaleSessionCensusSchedule: "0 0 * * * *"}
	log := getLogger()
	cm := NewCronManager(cfg, log, nil, &fakeSessionRepo{count: 3})

	mockCron := cronv3.New(cronv3.WithSeconds())
	cm.registerJobs(mockCron)

	assert.Equal(t, 1, len(cm.jobIDs))
}

func TestCronManager_RegisterJobs_NoSchedule(t *testing.T) {
	cfg := &config.CronConfig{}
	log := getLogger()
	cm := NewCronManager(cfg, log, nil, &fakeSessionRepo{})

	mockCron := cronv3.New()
	cm.registerJobs(mockCron)

	assert.Equal(t, 0, len(cm.jobIDs))
}

func TestCronManager_Stop(t *testing.T) {
	cfg := &config.CronConfig{StaleSessionCensusSchedule: "0 0 * * * *"}
	log := getLogger()
	cm := NewCronManager(cfg, log, nil, &fakeSessionRepo{})

	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	cm.Stop()

	select {
	case <-cm.stopCh:
	default:
		t.Error("stop channel was not closed")
	}
}

func TestCronManager_StaleSessionCensus(t *testing.T) {
	log := getLogger()
	cm := NewCronManager(&config.CronConfig{}, log, nil, &fakeSessionRepo{count: 2})

	// staleSessionCensus only logs; it must not panic when the repo
	// reports a non-zero non-terminal count.
	cm.staleSessionCensus()
}
