package recdex

import (
	"errors"

	"github.com/kailas-cloud/recdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrNotFound          = domain.ErrNotFound
	ErrProviderFailure   = domain.ErrProviderFailure
	ErrGeneratorFailure  = domain.ErrGeneratorFailure
	ErrEmptyText         = domain.ErrEmptyText
	ErrIncompleteIngest  = domain.ErrIncompleteIngest
)

// ErrSummarizerDisabled is returned by Summarize when no generator is configured.
var ErrSummarizerDisabled = errors.New("recdex: summarizer not configured")
