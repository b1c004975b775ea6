package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestFormatter_Format(t *testing.T) {
	f := &Formatter{}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 9, 8, 7, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Starting 'stylesheets'...",
		Data:    logrus.Fields{"files": 2, "dest": "public"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[09:08:07] Starting 'stylesheets'... dest=public files=2\n", string(out))
}

func TestFormatter_CustomTimeFormat(t *testing.T) {
	f := &Formatter{TimeFormat: time.RFC3339}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 9, 8, 7, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "no files matched",
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01T09:08:07Z] no files matched\n", string(out))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, false)
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log = New(&buf, true)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestTaskAndDuration(t *testing.T) {
	assert.Equal(t, "'requirejs'", Task("requirejs"))
	assert.Equal(t, "12 ms", Duration(12*time.Millisecond))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Microsecond, "500 μs"},
		{84 * time.Millisecond, "84 ms"},
		{1500 * time.Millisecond, "1.50 s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
