package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrUnknownNetwork  = errors.New("unknown network")
	ErrMarketNotFound  = errors.New("market not found")
)

// ConfigError reports a required setting that is absent.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not set", e.Setting)
}

// ContentShapeError is returned when a payload fails the sniff test before
// any structural parsing.
type ContentShapeError struct {
	Reason  string
	Preview string
}

func (e *ContentShapeError) Error() string {
	return e.Reason
}

// RateLimitError is returned once the retry budget for a rate limited
// upstream is spent.
type RateLimitError struct {
	Retries int
	Wait    time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Rate limit exceeded after %d retries. Please try again later.", e.Retries)
}

// StoreError wraps a failed batch write. Nothing from the batch was committed.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("Database error: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
