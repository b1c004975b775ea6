package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/Norgate-AV/assetpipe/internal/codes"
	"github.com/Norgate-AV/assetpipe/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name string
	err  error
	runs *[]string
}

func (f *fakeTask) Name() string {
	return f.name
}

func (f *fakeTask) Run(context.Context) error {
	*f.runs = append(*f.runs, f.name)
	return f.err
}

func newFakeRegistry(t *testing.T, runs *[]string, tasks ...*fakeTask) *Registry {
	t.Helper()

	r := newRegistry()
	for _, task := range tasks {
		task.runs = runs
		require.NoError(t, r.Register(task))
	}

	return r
}

type recordingHandler struct {
	tasks []string
	errs  []error
}

func (h *recordingHandler) Handle(task string, err error) {
	h.tasks = append(h.tasks, task)
	h.errs = append(h.errs, err)
}

func TestRegistry_Register(t *testing.T) {
	var runs []string
	r := newFakeRegistry(t, &runs, &fakeTask{name: "b"}, &fakeTask{name: "a"})

	assert.Equal(t, []string{"b", "a"}, r.Names(), "Names keep registration order")

	err := r.Register(&fakeTask{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = r.Register(&fakeTask{name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	task, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", task.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRunner_Run(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name         string
		tasks        []*fakeTask
		args         []string
		wantRuns     []string
		wantHandled  []string
		wantErr      bool
		wantKind     codes.Kind
		wantNotFound bool
	}{
		{
			name:     "no names runs everything in order",
			tasks:    []*fakeTask{{name: "requirejs"}, {name: "stylesheets"}},
			wantRuns: []string{"requirejs", "stylesheets"},
		},
		{
			name:     "named tasks run in the given order",
			tasks:    []*fakeTask{{name: "requirejs"}, {name: "stylesheets"}},
			args:     []string{"stylesheets", "requirejs"},
			wantRuns: []string{"stylesheets", "requirejs"},
		},
		{
			name:         "unknown task runs nothing",
			tasks:        []*fakeTask{{name: "requirejs"}},
			args:         []string{"requirejs", "scripts"},
			wantErr:      true,
			wantKind:     codes.KindConfig,
			wantNotFound: true,
		},
		{
			name: "failure is reported and later tasks still run",
			tasks: []*fakeTask{
				{name: "requirejs", err: codes.Wrap(codes.KindRead, "sync", "require.js", boom)},
				{name: "stylesheets"},
			},
			wantRuns:    []string{"requirejs", "stylesheets"},
			wantHandled: []string{"requirejs"},
			wantErr:     true,
			wantKind:    codes.KindRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var runs []string
			registry := newFakeRegistry(t, &runs, tt.tasks...)
			handler := &recordingHandler{}
			log, _ := newTestLogger()

			err := NewRunner(registry, log, handler).Run(context.Background(), tt.args...)

			assert.Equal(t, tt.wantRuns, runs)
			assert.Equal(t, tt.wantHandled, handler.tasks)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, codes.KindOf(err))

			if tt.wantNotFound {
				assert.Contains(t, err.Error(), `task "scripts" is not defined`)
			}
		})
	}
}

func TestRunner_JoinsFailures(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	var runs []string
	registry := newFakeRegistry(t, &runs, &fakeTask{name: "a", err: first}, &fakeTask{name: "b", err: second})
	log, _ := newTestLogger()
	handler := report.NewLogHandler(log)

	err := NewRunner(registry, log, handler).Run(context.Background())
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, 2, handler.Count())
}

func TestRunner_Logs(t *testing.T) {
	var runs []string
	registry := newFakeRegistry(t, &runs, &fakeTask{name: "stylesheets"})
	log, buf := newTestLogger()

	require.NoError(t, NewRunner(registry, log, &recordingHandler{}).Run(context.Background()))

	assert.Contains(t, buf.String(), "Starting 'stylesheets'...")
	assert.Contains(t, buf.String(), "Finished 'stylesheets' after ")
}

func TestRunner_CanceledContext(t *testing.T) {
	var runs []string
	registry := newFakeRegistry(t, &runs, &fakeTask{name: "a"}, &fakeTask{name: "b"})
	log, _ := newTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(registry, log, &recordingHandler{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runs)
}
