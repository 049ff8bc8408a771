package errors

import "github.com/pkg/errors"

var (
	// registry / lifecycle errors returned by the Control Facade
	ErrAlreadyRegistered = errors.New("domain account already has a running warmup")
	ErrNotRegistered     = errors.New("domain account has no running warmup")
	ErrWrongState        = errors.New("operation not valid for the current warmup state")
	ErrCompletedToday    = errors.New("warmup session already completed for today")

	// lead/account errors
	ErrNoLeadAccounts = errors.New("domain account has no lead accounts configured")

	// store / lookup errors
	ErrSessionNotFound = errors.New("warmup session not found")
	ErrAccountNotFound = errors.New("domain account not found")

	// transport errors
	ErrConnectionTimeout = errors.New("connection timeout")
)
