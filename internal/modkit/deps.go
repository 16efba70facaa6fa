// Package modkit provides module wiring and core deps
package modkit

import (
	"trimline/internal/modkit/repokit"
	"trimline/internal/platform/config"
	"trimline/internal/platform/logger"
	"trimline/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	RD  store.Cache
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
