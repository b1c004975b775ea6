package cache

import "time"

// Entry represents a cached build result
type Entry struct {
	// Hash is the unique identifier for this cache entry
	Hash string `json:"hash"`

	// Task that produced the build
	Task string `json:"task"`

	// Inputs are the source files in match order
	Inputs []string `json:"inputs"`

	// Deps maps files the compiler read outside the key's inputs to their SHA256
	Deps map[string]string `json:"deps,omitempty"`

	// Output is the bundle file name
	Output string `json:"output"`

	// OutputHash is the SHA256 of the written bundle
	OutputHash string `json:"output_hash"`

	// Timestamp when this entry was created
	Timestamp time.Time `json:"timestamp"`

	// Success indicates if the build was successful
	Success bool `json:"success"`
}
