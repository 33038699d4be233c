package domain

import (
	"context"
	"time"
)

type DenyReason string

const (
	DenyRateLimit DenyReason = "rate_limit_exceeded"
	DenyBlocked   DenyReason = "blocked"
)

// Decision is the verdict of the rate-decision service for one request.
// Remaining and ResetIn are only meaningful on a rate-limit deny.
type Decision struct {
	Allowed   bool
	Reason    DenyReason
	Remaining int64
	ResetIn   time.Duration
}

// RateGate approves or denies a request before costly downstream work runs.
// Key identifies the caller (IP or user id), cost weighs the request.
type RateGate interface {
	Admit(ctx context.Context, key string, cost int64) (Decision, error)
}
