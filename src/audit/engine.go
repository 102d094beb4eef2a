// backend/src/audit/engine.go
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/username/fiscasync/backend/src/models"
)

// IntakeLevels are the levels run right after a balance import: structural,
// fundamental, conformity, sense, inter-account, year-over-year and archive
// continuity checks.
var IntakeLevels = []int{0, 1, 2, 3, 4, 5, 8}

// StatementLevels are the levels run once a balance sheet can be derived from
// the intake results: financial-statement coherence and fiscal checks.
var StatementLevels = []int{6, 7}

// RunLevel executes the active controls of one level in registration order.
// A predicate error or panic becomes a single EXECUTION_ERROR result; one
// failing rule never aborts the run. Cancellation is checked before each
// control; a cancelled run returns the results accumulated so far.
func RunLevel(ctx context.Context, reg *Registry, level int, ectx *Context, cb *ProgressCallbacks) []models.ControlResult {
	controls := reg.ByLevel(level)
	results := make([]models.ControlResult, 0, len(controls))

	cb.levelStart(level, models.LevelNames[level])

	for i, c := range controls {
		if ctx.Err() != nil {
			break
		}
		cb.progress(level, i, len(controls), c.Definition.Ref)
		results = append(results, invoke(c, ectx)...)
	}

	cb.levelEnd(level, results)
	return results
}

// RunPhase runs levels strictly in the given order, concatenating results,
// with one cooperative yield between levels.
func RunPhase(ctx context.Context, reg *Registry, levels []int, ectx *Context, cb *ProgressCallbacks) []models.ControlResult {
	var all []models.ControlResult
	for i, level := range levels {
		if ctx.Err() != nil {
			break
		}
		all = append(all, RunLevel(ctx, reg, level, ectx, cb)...)
		if i < len(levels)-1 {
			cb.yield()
		}
	}
	return all
}

// invoke runs one control, fault-boxing errors and panics.
func invoke(c Registered, ectx *Context) (results []models.ControlResult) {
	defer func() {
		if r := recover(); r != nil {
			results = []models.ControlResult{execError(c.Definition, fmt.Sprintf("panic: %v", r))}
		}
	}()

	out, err := c.Execute(ectx)
	if err != nil {
		return []models.ControlResult{execError(c.Definition, err.Error())}
	}
	return out
}

func execError(def models.ControlDefinition, msg string) models.ControlResult {
	return models.ControlResult{
		Ref:       def.Ref,
		Name:      def.Name,
		Level:     def.Level,
		Status:    models.StatusExecutionError,
		Severity:  models.SeverityInfo,
		Message:   "execution failed: " + msg,
		Timestamp: time.Now().UTC(),
	}
}
