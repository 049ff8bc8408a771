package utils

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CustomContext carries request-scoped identifiers through the call chain so
// repositories and services can tag spans and logs without threading extra
// parameters through every signature.
type CustomContext struct {
	AppSource       string
	DomainAccountID string
	LeadAccountID   string
	SessionID       string
}

var customContextKey = "CUSTOM_CONTEXT"

func WithContext(customContext *CustomContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestWithCtx := r.WithContext(context.WithValue(r.Context(), customContextKey, customContext))
		next.ServeHTTP(w, requestWithCtx)
	})
}

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	customContext := &CustomContext{
		AppSource:       appSource,
		DomainAccountID: c.Param("domainAccountId"),
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetDomainAccountIDFromContext(ctx context.Context) string {
	return GetContext(ctx).DomainAccountID
}

func GetLeadAccountIDFromContext(ctx context.Context) string {
	return GetContext(ctx).LeadAccountID
}

func GetSessionIDFromContext(ctx context.Context) string {
	return GetContext(ctx).SessionID
}

func SetAppSourceInContext(ctx context.Context, appSource string) context.Context {
	customContext := GetContext(ctx)
	customContext.AppSource = appSource
	return WithCustomContext(ctx, customContext)
}

func SetDomainAccountIDInContext(ctx context.Context, domainAccountID string) context.Context {
	customContext := GetContext(ctx)
	customContext.DomainAccountID = domainAccountID
	return WithCustomContext(ctx, customContext)
}

func SetLeadAccountIDInContext(ctx context.Context, leadAccountID string) context.Context {
	customContext := GetContext(ctx)
	customContext.LeadAccountID = leadAccountID
	return WithCustomContext(ctx, customContext)
}

func SetSessionIDInContext(ctx context.Context, sessionID string) context.Context {
	customContext := GetContext(ctx)
	customContext.SessionID = sessionID
	return WithCustomContext(ctx, customContext)
}
