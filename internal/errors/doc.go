// Package apperrors defines structured application error types for the SAXPY
// benchmark, separating configuration problems, invalid kernel arguments,
// allocation failures and worker crashes, and mapping each class to a process
// exit code.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Every error type that carries a cause implements Unwrap() so that
// errors.Is() and errors.As() work through the whole chain.
package apperrors
