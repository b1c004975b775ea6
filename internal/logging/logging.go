// Package logging configures the logrus logger used by every task.
//
// Output mimics the familiar task-runner layout:
//
//	[15:04:05] Starting 'stylesheets'...
//	[15:04:05] Finished 'stylesheets' after 84 ms
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

const defaultTimeFormat = "15:04:05"

var (
	gray    = color.New(color.FgHiBlack).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
)

// New creates a logger writing to out; verbose enables debug output
func New(out io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&Formatter{})

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// Formatter renders entries as "[time] message key=value"
type Formatter struct {
	// Defaults to 15:04:05
	TimeFormat string
}

func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	timeFormat := f.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(gray(e.Time.Format(timeFormat)))
	b.WriteString("] ")

	switch e.Level {
	case logrus.WarnLevel:
		b.WriteString(yellow(e.Message))
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		b.WriteString(red(e.Message))
	default:
		b.WriteString(e.Message)
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", gray(k), e.Data[k])
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

// Task formats a task name for log messages
func Task(name string) string {
	return cyan("'" + name + "'")
}

// Duration formats an elapsed time for log messages
func Duration(d time.Duration) string {
	return magenta(FormatDuration(d))
}

// FormatDuration renders d in the largest unit that keeps it readable
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d μs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}
