// Package report is the shared sink for task failures.
package report

import (
	"errors"
	"sync"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/logging"
	"github.com/sirupsen/logrus"
)

// Handler receives every error a task fails with
type Handler interface {
	Handle(task string, err error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(task string, err error)

func (f HandlerFunc) Handle(task string, err error) {
	f(task, err)
}

// LogHandler logs failures and remembers them; it never stops the process
type LogHandler struct {
	log logrus.FieldLogger

	mu   sync.Mutex
	errs []error
}

// NewLogHandler creates a handler that logs through log
func NewLogHandler(log logrus.FieldLogger) *LogHandler {
	return &LogHandler{log: log}
}

func (h *LogHandler) Handle(task string, err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()

	kind := codes.KindOf(err)
	h.log.WithField("kind", codes.Describe(kind)).
		Errorf("Error in task %s", logging.Task(task))
	h.log.Error(err.Error())
}

// Count returns how many failures were handled
func (h *LogHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.errs)
}

// Err joins every handled failure, or returns nil if there were none
func (h *LogHandler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return errors.Join(h.errs...)
}
