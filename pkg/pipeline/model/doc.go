// Package model provides the data structures shared by the pipeline package and its options.
// It defines the identity of pipeline instances and filters,
// and the hook interface used by options to observe an instance while it runs.
package model
