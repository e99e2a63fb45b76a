// Package orchestration runs the SAXPY kernel once per selected accumulation
// mode, checks that the runs agree, and hands results to a presenter. It
// decouples business logic from presentation via the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
