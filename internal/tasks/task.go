// Package tasks defines the named build tasks and runs them in order.
package tasks

import "context"

// Task is a named unit of build work
type Task interface {
	Name() string
	Run(ctx context.Context) error
}
