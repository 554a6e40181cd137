package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActiveSession is returned by Submit when no SFT window is open.
	ErrNoActiveSession = errors.New("no active SFT session")
	// ErrThresholdNotMet is returned by ExecuteAndReset when the gated action
	// has not collected enough distinct approvers.
	ErrThresholdNotMet = errors.New("approval threshold not met")
)

// SummaryValidationError reports every under-subscribed activity group that
// blocked summary generation. All offending groups are collected before
// failing, never just the first.
type SummaryValidationError struct {
	Groups []string
}

func (e *SummaryValidationError) Error() string {
	return fmt.Sprintf("groups with fewer than 2 participants: %s", strings.Join(e.Groups, ", "))
}
