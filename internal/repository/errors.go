package repository

import (
	"context"
	"errors"
	"net"
	"strings"

	warmuperrors "github.com/customeros/warmup/internal/errors"
)

// classifyErr maps a failure to reach or get a timely response from
// Postgres onto ErrConnectionTimeout, so the API layer can tell "the
// store is unreachable" apart from an ordinary query error. Everything
// else passes through unchanged.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return warmuperrors.ErrConnectionTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return warmuperrors.ErrConnectionTimeout
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "too many connections") {
		return warmuperrors.ErrConnectionTimeout
	}
	return err
}
