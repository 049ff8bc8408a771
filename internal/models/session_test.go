package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/warmup/internal/enum"
)

func TestWarmupSession_IsActive(t *testing.T) {
	cases := []struct {
		status enum.SessionStatus
		active bool
	}{
		{enum.SessionPending, true},
		{enum.SessionSending, true},
		{enum.SessionWaitingReply, true},
		{enum.SessionPaused, true},
		{enum.SessionCompleted, false},
		{enum.SessionFailed, false},
	}

	for _, tc := range cases {
		s := &WarmupSession{Status: tc.status}
		assert.Equal(t, tc.active, s.IsActive())
	}
}

func TestJSONMap_ValueAndScan(t *testing.T) {
	m := JSONMap{"a": "b"}

	value, err := m.Value()
	assert.NoError(t, err)

	var scanned JSONMap
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, "b", scanned["a"])
}

func TestJSONMap_ScanNil(t *testing.T) {
	var scanned JSONMap
	assert.NoError(t, scanned.Scan(nil))
	assert.NotNil(t, scanned)
	assert.Len(t, scanned, 0)
}
