// Package memory estimates the footprint of a run before anything is
// allocated, enforces the user's memory limit, and controls the garbage
// collector while the workers are running.
package memory
