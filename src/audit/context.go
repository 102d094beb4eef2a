// backend/src/audit/context.go
package audit

import (
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/referential"
)

// Context is the shared, read-only evaluation context handed to every control.
// Controls are pure reads over it; nothing here is mutated during a run.
type Context struct {
	Current  []models.BalanceLine // Balance under audit (period N)
	Prior    []models.BalanceLine // Prior-period balance, may be nil
	Plan     *referential.Plan
	Archives []models.ArchiveRecord // Prior archived runs, oldest first
	Period   string
	Kind     models.Phase // Audit-type discriminator
}

// HasPrior reports whether a prior-period balance was supplied. Comparative
// controls must return NOT_APPLICABLE when it is absent.
func (c *Context) HasPrior() bool {
	return len(c.Prior) > 0
}

// HasArchives reports whether prior archived runs are available.
func (c *Context) HasArchives() bool {
	return len(c.Archives) > 0
}

// ControlFunc is the executable predicate of a control. One invocation may
// return zero, one, or many results. A non-nil error is converted by the
// engine into a single EXECUTION_ERROR result; it never aborts the run.
type ControlFunc func(ctx *Context) ([]models.ControlResult, error)

// ProgressCallbacks lets a host observe and pace a run. Any field may be nil.
// Yield is invoked once between levels so a UI scheduler can repaint between
// groups of synchronous checks; headless callers leave it nil.
type ProgressCallbacks struct {
	OnLevelStart func(level int, name string)
	OnProgress   func(level, index, total int, ref string)
	OnLevelEnd   func(level int, results []models.ControlResult)
	OnComplete   func(summary models.Summary)
	Yield        func()
}

func (cb *ProgressCallbacks) levelStart(level int, name string) {
	if cb != nil && cb.OnLevelStart != nil {
		cb.OnLevelStart(level, name)
	}
}

func (cb *ProgressCallbacks) progress(level, index, total int, ref string) {
	if cb != nil && cb.OnProgress != nil {
		cb.OnProgress(level, index, total, ref)
	}
}

func (cb *ProgressCallbacks) levelEnd(level int, results []models.ControlResult) {
	if cb != nil && cb.OnLevelEnd != nil {
		cb.OnLevelEnd(level, results)
	}
}

// Complete dispatches OnComplete. The orchestrator invokes it exactly once
// per run, on success, cancellation and fault alike, with the best summary
// available at that point.
func (cb *ProgressCallbacks) Complete(summary models.Summary) {
	if cb != nil && cb.OnComplete != nil {
		cb.OnComplete(summary)
	}
}

func (cb *ProgressCallbacks) yield() {
	if cb != nil && cb.Yield != nil {
		cb.Yield()
	}
}
