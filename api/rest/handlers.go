// Package rest registers the Control API (component E's HTTP surface):
// start/pause/resume/stop, status, session listing, and log inspection.
package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	warmuperrors "github.com/customeros/warmup/internal/errors"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/services/facade"
)

type Handlers struct {
	facade      *facade.Facade
	sessionRepo interfaces.SessionRepository
	mailLogRepo interfaces.MailLogRepository
}

func NewHandlers(f *facade.Facade, sessionRepo interfaces.SessionRepository, mailLogRepo interfaces.MailLogRepository) *Handlers {
	return &Handlers{facade: f, sessionRepo: sessionRepo, mailLogRepo: mailLogRepo}
}

type domainAccountRequest struct {
	DomainAccountID string `json:"domain_account_id" binding:"required"`
}

// Start handles POST /warmup/start.
func (h *Handlers) Start() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.Start")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req domainAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err, "domain_account_id is required")
			return
		}
		tracing.TagDomainAccount(span, req.DomainAccountID)

		session, err := h.facade.Start(ctx, req.DomainAccountID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, session)
	}
}

// Pause handles POST /warmup/pause.
func (h *Handlers) Pause() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.Pause")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req domainAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err, "domain_account_id is required")
			return
		}
		tracing.TagDomainAccount(span, req.DomainAccountID)

		if err := h.facade.Pause(ctx, req.DomainAccountID); err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, nil)
	}
}

// Resume handles POST /warmup/resume.
func (h *Handlers) Resume() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.Resume")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req domainAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err, "domain_account_id is required")
			return
		}
		tracing.TagDomainAccount(span, req.DomainAccountID)

		session, err := h.facade.Resume(ctx, req.DomainAccountID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, session)
	}
}

// Stop handles POST /warmup/stop.
func (h *Handlers) Stop() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.Stop")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req domainAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, err, "domain_account_id is required")
			return
		}
		tracing.TagDomainAccount(span, req.DomainAccountID)

		if err := h.facade.Stop(ctx, req.DomainAccountID); err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, nil)
	}
}

// Status handles GET /warmup/status/:id.
func (h *Handlers) Status() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.Status")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		domainAccountID := c.Param("id")
		if domainAccountID == "" {
			fail(c, http.StatusBadRequest, nil, "domain account id is required")
			return
		}
		tracing.TagDomainAccount(span, domainAccountID)

		status, err := h.facade.GetStatus(ctx, domainAccountID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, status)
	}
}

// ListSessions handles GET /warmup/sessions?domain_account_id=. The query
// parameter is required: a request without it gets 400, and sessions are
// not listed across all domain accounts.
func (h *Handlers) ListSessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.ListSessions")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		domainAccountID := c.Query("domain_account_id")
		if domainAccountID == "" {
			fail(c, http.StatusBadRequest, nil, "domain_account_id query parameter is required")
			return
		}
		tracing.TagDomainAccount(span, domainAccountID)

		sessions, err := h.sessionRepo.ListByDomainAccount(ctx, domainAccountID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, sessions)
	}
}

// SessionLogs handles GET /warmup/sessions/:id/logs.
func (h *Handlers) SessionLogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.SessionLogs")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		sessionID := c.Param("id")
		if sessionID == "" {
			fail(c, http.StatusBadRequest, nil, "session id is required")
			return
		}
		tracing.TagSession(span, sessionID)

		session, err := h.sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		if session == nil {
			fail(c, http.StatusNotFound, nil, "session not found")
			return
		}

		logs, err := h.mailLogRepo.ListBySession(ctx, sessionID)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, logs)
	}
}

// RecentLogs handles GET /warmup/logs?limit=.
func (h *Handlers) RecentLogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "Handlers.RecentLogs")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		limit := 100
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				fail(c, http.StatusBadRequest, err, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		logs, err := h.mailLogRepo.Recent(ctx, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			writeError(c, err)
			return
		}
		ok(c, http.StatusOK, logs)
	}
}

// writeError maps domain errors to the status codes spec.md §6's
// "Exit/error mapping" row names: 400 for client/validation errors,
// 404 for unknown id, 503 when the backing store is unreachable.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, warmuperrors.ErrAccountNotFound),
		errors.Is(err, warmuperrors.ErrSessionNotFound):
		fail(c, http.StatusNotFound, err, "not found")
	case errors.Is(err, warmuperrors.ErrAlreadyRegistered),
		errors.Is(err, warmuperrors.ErrNotRegistered),
		errors.Is(err, warmuperrors.ErrWrongState),
		errors.Is(err, warmuperrors.ErrCompletedToday),
		errors.Is(err, warmuperrors.ErrNoLeadAccounts):
		fail(c, http.StatusBadRequest, err, "invalid request for current state")
	case errors.Is(err, warmuperrors.ErrConnectionTimeout):
		fail(c, http.StatusServiceUnavailable, err, "backing store unreachable")
	default:
		fail(c, http.StatusInternalServerError, err, "internal error")
	}
}
