package compiler

import (
	"context"
	"fmt"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/sirupsen/logrus"
)

// DartSass compiles through an embedded dart-sass process.
// The process starts on the first Compile and is shared by all callers.
type DartSass struct {
	opts Options
	log  logrus.FieldLogger

	startOnce sync.Once
	startErr  error

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewDartSass creates a compiler; no process is started until it is needed
func NewDartSass(opts Options, log logrus.FieldLogger) *DartSass {
	return &DartSass{opts: opts, log: log}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.startOnce.Do(func() {
		t, err := godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: d.opts.Binary,
			Timeout:                  d.opts.Timeout,
			LogEventHandler:          d.logEvent,
		})
		if err != nil {
			d.startErr = fmt.Errorf("failed to start dart-sass %q: %w", d.opts.Binary, err)
			return
		}

		d.mu.Lock()
		d.transpiler = t
		d.mu.Unlock()
	})

	if d.startErr != nil {
		return nil, d.startErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		return nil, fmt.Errorf("dart-sass has been closed")
	}

	return d.transpiler, nil
}

func (d *DartSass) logEvent(e godartsass.LogEvent) {
	if d.log == nil {
		return
	}

	switch e.Type {
	case godartsass.LogEventTypeDebug:
		d.log.Debug(e.Message)
	default:
		d.log.Warn(e.Message)
	}
}

func (d *DartSass) Compile(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	t, err := d.start()
	if err != nil {
		return Result{}, err
	}

	res, err := t.Execute(BuildArgs(d.opts, in))
	if err != nil {
		return Result{}, err
	}

	return Result{CSS: res.CSS, SourceMap: res.SourceMap}, nil
}

// Close stops the dart-sass process if it was started
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		return nil
	}

	err := d.transpiler.Close()
	d.transpiler = nil

	return err
}
