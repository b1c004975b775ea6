package tasks

import (
	"fmt"

	"github.com/Norgate-AV/assetpipe/internal/cache"
	"github.com/Norgate-AV/assetpipe/internal/compiler"
	"github.com/Norgate-AV/assetpipe/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Deps are the shared services tasks are built from
type Deps struct {
	Fs       afero.Fs
	Log      logrus.FieldLogger
	Compiler compiler.Compiler

	// Optional; nil disables the build cache
	Cache *cache.Cache
}

// NewRegistry registers one sync task per vendor plugin, in name order, then the stylesheet build
func NewRegistry(cfg *config.Config, deps Deps) (*Registry, error) {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	if deps.Log == nil {
		return nil, fmt.Errorf("tasks need a logger")
	}

	r := newRegistry()

	for _, target := range cfg.SyncTargets() {
		t := NewSyncTask(target, cfg.Root, cfg.Changed.Compare, deps.Fs, deps.Log)
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}

	styles, err := NewStylesheetsTask(cfg, deps)
	if err != nil {
		return nil, err
	}

	if err := r.Register(styles); err != nil {
		return nil, err
	}

	return r, nil
}
