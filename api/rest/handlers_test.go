package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/enum"
	warmuperrors "github.com/customeros/warmup/internal/errors"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/services/facade"
)

func getLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true})
	l.InitLogger()
	return l
}

type fakeSessionRepo struct {
	session  *models.WarmupSession
	err      error
	sessions []*models.WarmupSession
}

func (f *fakeSessionRepo) FindByID(ctx context.Context, id string) (*models.WarmupSession, error) {
	return f.session, f.err
}
func (f *fakeSessionRepo) FindActiveToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) FindCompletedToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) CreateOrReset(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return &models.WarmupSession{ID: "wses_1", DomainAccountID: domainAccountID, Status: enum.SessionPending}, nil
}
func (f *fakeSessionRepo) ResumeWithAppendedLeads(ctx context.Context, id string) (*models.WarmupSession, error) {
	return nil, nil
}
func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, id string, status enum.SessionStatus, fields interfaces.SessionUpdateFields) (*models.WarmupSession, error) {
	return &models.WarmupSession{ID: id, Status: status}, nil
}
func (f *fakeSessionRepo) ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.WarmupSession, error) {
	return f.sessions, f.err
}
func (f *fakeSessionRepo) CountNonTerminal(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeMailLogRepo struct {
	entries []*models.MailLogEntry
	err     error
}

func (f *fakeMailLogRepo) Append(ctx context.Context, entry *models.MailLogEntry) error { return nil }
func (f *fakeMailLogRepo) ListBySession(ctx context.Context, sessionID string) ([]*models.MailLogEntry, error) {
	return f.entries, f.err
}
func (f *fakeMailLogRepo) GetByMessageID(ctx context.Context, messageID string) (*models.MailLogEntry, error) {
	return nil, nil
}
func (f *fakeMailLogRepo) Recent(ctx context.Context, limit int) ([]*models.MailLogEntry, error) {
	return f.entries, f.err
}

type fakeAccountRepo struct {
	account *models.DomainAccount
	err     error
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*models.DomainAccount, error) {
	return f.account, f.err
}
func (f *fakeAccountRepo) UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error {
	return nil
}

type fakeLeadRepo struct {
	leads []*models.LeadAccount
	err   error
}

func (f *fakeLeadRepo) ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.LeadAccount, error) {
	return f.leads, f.err
}

type fakeSender struct{}

func (fakeSender) Send(ctx context.Context, from interfaces.MailboxCredentials, msg interfaces.OutboundMessage) (*interfaces.SendResult, error) {
	return &interfaces.SendResult{MessageID: "msg-1"}, nil
}

type fakeSubscription struct{ events chan interfaces.SubscriptionEvent }

func (s *fakeSubscription) Events() <-chan interfaces.SubscriptionEvent { return s.events }
func (s *fakeSubscription) Unsubscribe()                                {}

type fakeSubscriber struct{}

func (fakeSubscriber) Subscribe(ctx context.Context, mailbox interfaces.MailboxCredentials, fromFilter string, waitBudget time.Duration) (interfaces.Subscription, error) {
	return &fakeSubscription{events: make(chan interfaces.SubscriptionEvent)}, nil
}

type fakeTextGen struct{}

func (fakeTextGen) Outbound(ctx context.Context, senderName, recipientName, senderAddress string) (string, string, error) {
	return "hi", "body", nil
}
func (fakeTextGen) Reply(ctx context.Context, replierName, originalSenderName, originalSubject, originalBody string) (string, string, error) {
	return "Re: hi", "body", nil
}

func newTestHandlers(sessionRepo *fakeSessionRepo, mailLogRepo *fakeMailLogRepo, accountRepo *fakeAccountRepo, leadRepo *fakeLeadRepo) *Handlers {
	f := facade.New(facade.Deps{
		SessionRepo: sessionRepo,
		MailLogRepo: mailLogRepo,
		AccountRepo: accountRepo,
		LeadRepo:    leadRepo,
		Sender:      fakeSender{},
		Subscriber:  fakeSubscriber{},
		TextGen:     fakeTextGen{},
		Logger:      getLogger(),
		Config:      &config.WarmupConfig{MinDelayMs: 1, MaxDelayMs: 2, ImapWaitTimeoutMs: 60000},
	})
	return NewHandlers(f, sessionRepo, mailLogRepo)
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/warmup/start", h.Start())
	r.POST("/warmup/pause", h.Pause())
	r.POST("/warmup/stop", h.Stop())
	r.GET("/warmup/status/:id", h.Status())
	r.GET("/warmup/sessions", h.ListSessions())
	r.GET("/warmup/sessions/:id/logs", h.SessionLogs())
	r.GET("/warmup/logs", h.RecentLogs())
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_Start_Success(t *testing.T) {
	accountRepo := &fakeAccountRepo{account: &models.DomainAccount{ID: "dacc_1", Address: "acme@example.com"}}
	leadRepo := &fakeLeadRepo{leads: []*models.LeadAccount{{ID: "lead_1", Address: "lead@example.com"}}}
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, accountRepo, leadRepo)
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/start", map[string]string{"domain_account_id": "dacc_1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestHandlers_Start_MissingBody(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/start", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestHandlers_Start_AccountNotFound(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{account: nil}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/start", map[string]string{"domain_account_id": "dacc_missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Start_BackingStoreUnreachable(t *testing.T) {
	accountRepo := &fakeAccountRepo{err: warmuperrors.ErrConnectionTimeout}
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, accountRepo, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/start", map[string]string{"domain_account_id": "dacc_1"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandlers_Start_NoLeadAccounts(t *testing.T) {
	accountRepo := &fakeAccountRepo{account: &models.DomainAccount{ID: "dacc_1"}}
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, accountRepo, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/start", map[string]string{"domain_account_id": "dacc_1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_Pause_NotRegistered(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodPost, "/warmup/pause", map[string]string{"domain_account_id": "dacc_1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_Status_Success(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/status/dacc_1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env Envelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestHandlers_ListSessions_MissingQuery(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/sessions", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_ListSessions_Success(t *testing.T) {
	sessionRepo := &fakeSessionRepo{sessions: []*models.WarmupSession{{ID: "wses_1"}}}
	h := newTestHandlers(sessionRepo, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/sessions?domain_account_id=dacc_1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlers_SessionLogs_NotFound(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{session: nil}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/sessions/wses_missing/logs", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_SessionLogs_Success(t *testing.T) {
	sessionRepo := &fakeSessionRepo{session: &models.WarmupSession{ID: "wses_1"}}
	mailLogRepo := &fakeMailLogRepo{entries: []*models.MailLogEntry{{ID: "mlog_1"}}}
	h := newTestHandlers(sessionRepo, mailLogRepo, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/sessions/wses_1/logs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlers_RecentLogs_DefaultLimit(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/logs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlers_RecentLogs_InvalidLimit(t *testing.T) {
	h := newTestHandlers(&fakeSessionRepo{}, &fakeMailLogRepo{}, &fakeAccountRepo{}, &fakeLeadRepo{})
	r := newTestRouter(h)

	rec := doRequest(r, http.MethodGet, "/warmup/logs?limit=-1", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
