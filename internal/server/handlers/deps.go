package handlers

import (
	"github.com/quotafence/quotafence/internal/core/fetch"
	"github.com/quotafence/quotafence/internal/core/quota"
)

// Deps carries the wired subsystem components into the HTTP facade.
type Deps struct {
	Tracker        *quota.Tracker
	Fetcher        *fetch.Client
	Version        string
	Commit         string
	BuildDate      string
	HealthCheckers map[string]HealthChecker
}
