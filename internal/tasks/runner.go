package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/logging"
	"github.com/Norgate-AV/assetpipe/internal/report"
	"github.com/sirupsen/logrus"
)

// Runner runs registered tasks one after another
type Runner struct {
	registry *Registry
	log      logrus.FieldLogger
	handler  report.Handler
}

func NewRunner(registry *Registry, log logrus.FieldLogger, handler report.Handler) *Runner {
	return &Runner{
		registry: registry,
		log:      log,
		handler:  handler,
	}
}

// Run runs the named tasks in order, or every task when names is empty.
// A failing task is reported to the handler and the remaining tasks still run.
// The returned error joins every failure.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = r.registry.Names()
	}

	selected := make([]Task, 0, len(names))
	for _, name := range names {
		t, ok := r.registry.Get(name)
		if !ok {
			return codes.Wrap(codes.KindConfig, "lookup task", "", fmt.Errorf("task %q is not defined", name))
		}

		selected = append(selected, t)
	}

	var errs []error
	for _, t := range selected {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := r.runTask(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runner) runTask(ctx context.Context, t Task) error {
	name := t.Name()
	start := time.Now()

	r.log.Infof("Starting %s...", logging.Task(name))

	if err := t.Run(ctx); err != nil {
		r.handler.Handle(name, err)
		return err
	}

	r.log.Infof("Finished %s after %s", logging.Task(name), logging.Duration(time.Since(start)))

	return nil
}
