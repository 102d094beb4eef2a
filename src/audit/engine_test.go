// backend/src/audit/engine_test.go
package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/models"
)

func okControl(ref string, level int) (models.ControlDefinition, ControlFunc) {
	d := def(ref, level, models.PhaseIntake, true)
	fn := func(ctx *Context) ([]models.ControlResult, error) {
		return []models.ControlResult{{
			Ref:      ref,
			Level:    level,
			Status:   models.StatusOK,
			Severity: models.SeverityOK,
		}}, nil
	}
	return d, fn
}

func TestRunLevel_DeterministicOrder(t *testing.T) {
	reg := NewRegistry()
	for _, ref := range []string{"T-002", "T-001", "T-003"} {
		reg.Register(okControl(ref, 1))
	}

	results := RunLevel(context.Background(), reg, 1, &Context{}, nil)
	require.Len(t, results, 3)
	assert.Equal(t, "T-002", results[0].Ref)
	assert.Equal(t, "T-001", results[1].Ref)
	assert.Equal(t, "T-003", results[2].Ref)
}

func TestRunLevel_PredicateErrorBecomesExecutionError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), func(ctx *Context) ([]models.ControlResult, error) {
		return nil, errors.New("boom")
	})
	reg.Register(okControl("T-002", 1))

	results := RunLevel(context.Background(), reg, 1, &Context{}, nil)
	require.Len(t, results, 2)
	assert.Equal(t, models.StatusExecutionError, results[0].Status)
	assert.Equal(t, models.SeverityInfo, results[0].Severity)
	assert.Contains(t, results[0].Message, "boom")
	// The failure does not abort the rest of the level.
	assert.Equal(t, models.StatusOK, results[1].Status)
}

func TestRunLevel_PanicBecomesExecutionError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), func(ctx *Context) ([]models.ControlResult, error) {
		panic("unexpected nil")
	})
	reg.Register(okControl("T-002", 1))

	results := RunLevel(context.Background(), reg, 1, &Context{}, nil)
	require.Len(t, results, 2)
	assert.Equal(t, models.StatusExecutionError, results[0].Status)
	assert.Contains(t, results[0].Message, "panic")
	assert.Equal(t, models.StatusOK, results[1].Status)
}

func TestRunLevel_CancellationStopsBeforeNextControl(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), func(ectx *Context) ([]models.ControlResult, error) {
		cancel()
		return []models.ControlResult{{Ref: "T-001", Status: models.StatusOK, Severity: models.SeverityOK}}, nil
	})
	reg.Register(okControl("T-002", 1))
	reg.Register(okControl("T-003", 1))

	results := RunLevel(ctx, reg, 1, &Context{}, nil)
	// Strict prefix of the catalog: the in-flight control finishes, the rest
	// never start.
	require.Len(t, results, 1)
	assert.Equal(t, "T-001", results[0].Ref)
}

func TestRunPhase_ConcatenatesLevelsInOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(okControl("T-101", 1))
	reg.Register(okControl("T-201", 2))
	reg.Register(okControl("T-102", 1))

	yields := 0
	cb := &ProgressCallbacks{Yield: func() { yields++ }}

	results := RunPhase(context.Background(), reg, []int{1, 2}, &Context{}, cb)
	require.Len(t, results, 3)
	assert.Equal(t, "T-101", results[0].Ref)
	assert.Equal(t, "T-102", results[1].Ref)
	assert.Equal(t, "T-201", results[2].Ref)
	// One yield between the two levels, none after the last.
	assert.Equal(t, 1, yields)
}

func TestRunPhase_ReportsProgress(t *testing.T) {
	reg := NewRegistry()
	reg.Register(okControl("T-101", 1))
	reg.Register(okControl("T-102", 1))

	var started []int
	var refs []string
	var ended []int
	cb := &ProgressCallbacks{
		OnLevelStart: func(level int, name string) { started = append(started, level) },
		OnProgress:   func(level, index, total int, ref string) { refs = append(refs, ref) },
		OnLevelEnd:   func(level int, results []models.ControlResult) { ended = append(ended, level) },
	}

	RunPhase(context.Background(), reg, []int{1}, &Context{}, cb)
	assert.Equal(t, []int{1}, started)
	assert.Equal(t, []string{"T-101", "T-102"}, refs)
	assert.Equal(t, []int{1}, ended)
}

func TestProgressCallbacks_CompleteDispatch(t *testing.T) {
	var got *models.Summary
	cb := &ProgressCallbacks{OnComplete: func(summary models.Summary) { got = &summary }}

	summary := ComputeSummary([]models.ControlResult{
		{Ref: "T-001", Level: 1, Status: models.StatusOK, Severity: models.SeverityOK},
	})
	cb.Complete(summary)

	require.NotNil(t, got)
	assert.Equal(t, summary, *got)
}

func TestProgressCallbacks_CompleteIsNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		(&ProgressCallbacks{}).Complete(models.Summary{})
		(*ProgressCallbacks)(nil).Complete(models.Summary{})
	})
}

func TestRunLevel_NilCallbacksAreSafe(t *testing.T) {
	reg := NewRegistry()
	reg.Register(okControl("T-001", 1))

	assert.NotPanics(t, func() {
		RunLevel(context.Background(), reg, 1, &Context{}, nil)
	})
}

func TestRunLevel_EmptyLevel(t *testing.T) {
	reg := NewRegistry()
	results := RunLevel(context.Background(), reg, 4, &Context{}, nil)
	assert.Empty(t, results)
}
