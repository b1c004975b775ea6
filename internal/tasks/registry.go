package tasks

import "fmt"

// Registry holds tasks by name, remembering registration order
type Registry struct {
	tasks map[string]Task
	order []string
}

func newRegistry() *Registry {
	return &Registry{tasks: make(map[string]Task)}
}

// Register adds t; names must be non-empty and unique
func (r *Registry) Register(t Task) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("task name is empty")
	}

	if _, ok := r.tasks[name]; ok {
		return fmt.Errorf("task %q is already registered", name)
	}

	r.tasks[name] = t
	r.order = append(r.order, name)

	return nil
}

func (r *Registry) Get(name string) (Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns task names in registration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}
