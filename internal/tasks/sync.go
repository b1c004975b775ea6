package tasks

import (
	"context"

	"github.com/Norgate-AV/assetpipe/internal/changed"
	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/config"
	"github.com/Norgate-AV/assetpipe/internal/fsutil"
	"github.com/Norgate-AV/assetpipe/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// SyncTask copies one vendor file into the vendor directory when it changed
type SyncTask struct {
	target config.SyncTarget
	root   string
	fs     afero.Fs
	gate   *changed.Gate
	log    logrus.FieldLogger
}

// NewSyncTask creates a sync task; root is only used to shorten logged paths
func NewSyncTask(target config.SyncTarget, root, compare string, fsys afero.Fs, log logrus.FieldLogger) *SyncTask {
	return &SyncTask{
		target: target,
		root:   root,
		fs:     fsys,
		gate:   changed.NewGate(fsys, compare),
		log:    log,
	}
}

func (t *SyncTask) Name() string {
	return t.target.Name
}

func (t *SyncTask) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src := t.target.Src
	dst := changed.Destination(src, t.target.Dest)

	_, needsUpdate, err := t.gate.Check(src, t.target.Dest)
	if err != nil {
		return codes.Wrap(codes.KindRead, "sync", t.display(src), err)
	}

	if !needsUpdate {
		t.log.WithField("file", t.display(dst)).Debug("Up to date")
		return nil
	}

	if err := fsutil.CopyFile(t.fs, src, dst); err != nil {
		return codes.Wrap(codes.KindWrite, "copy", t.display(dst), err)
	}

	t.log.Infof("Copied %s to %s", t.display(src), t.display(dst))

	return nil
}

func (t *SyncTask) display(p string) string {
	return utils.DisplayPath(t.root, p)
}
