package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	warmuperrors "github.com/customeros/warmup/internal/errors"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func TestClassifyErr(t *testing.T) {
	assert.Nil(t, classifyErr(nil))
	assert.ErrorIs(t, classifyErr(context.DeadlineExceeded), warmuperrors.ErrConnectionTimeout)
	assert.ErrorIs(t, classifyErr(fakeTimeoutErr{}), warmuperrors.ErrConnectionTimeout)
	assert.ErrorIs(t, classifyErr(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")), warmuperrors.ErrConnectionTimeout)
	assert.ErrorIs(t, classifyErr(errors.New("read: i/o timeout")), warmuperrors.ErrConnectionTimeout)

	other := errors.New("duplicate key value violates unique constraint")
	assert.Equal(t, other, classifyErr(other))
}
