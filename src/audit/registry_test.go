// backend/src/audit/registry_test.go
package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/models"
)

func def(ref string, level int, phase models.Phase, active bool) models.ControlDefinition {
	return models.ControlDefinition{
		Ref:             ref,
		Name:            "test " + ref,
		Level:           level,
		Phase:           phase,
		DefaultSeverity: models.SeverityMinor,
		Active:          active,
	}
}

func noop(ctx *Context) ([]models.ControlResult, error) { return nil, nil }

func TestRegistry_IterationFollowsRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-003", 1, models.PhaseIntake, true), noop)
	reg.Register(def("T-001", 1, models.PhaseIntake, true), noop)
	reg.Register(def("T-002", 1, models.PhaseIntake, true), noop)

	byLevel := reg.ByLevel(1)
	require.Len(t, byLevel, 3)
	assert.Equal(t, "T-003", byLevel[0].Definition.Ref)
	assert.Equal(t, "T-001", byLevel[1].Definition.Ref)
	assert.Equal(t, "T-002", byLevel[2].Definition.Ref)
}

func TestRegistry_ReregisterKeepsPosition(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), noop)
	reg.Register(def("T-002", 1, models.PhaseIntake, true), noop)

	updated := def("T-001", 1, models.PhaseIntake, true)
	updated.Name = "renamed"
	reg.Register(updated, noop)

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "T-001", defs[0].Ref)
	assert.Equal(t, "renamed", defs[0].Name)
}

func TestRegistry_ByLevelSkipsInactive(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 2, models.PhaseIntake, true), noop)
	reg.Register(def("T-002", 2, models.PhaseIntake, false), noop)
	reg.Register(def("T-003", 3, models.PhaseIntake, true), noop)

	byLevel := reg.ByLevel(2)
	require.Len(t, byLevel, 1)
	assert.Equal(t, "T-001", byLevel[0].Definition.Ref)
}

func TestRegistry_ByPhaseSkipsInactive(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 6, models.PhaseStatement, true), noop)
	reg.Register(def("T-002", 1, models.PhaseIntake, true), noop)
	reg.Register(def("T-003", 7, models.PhaseStatement, false), noop)

	byPhase := reg.ByPhase(models.PhaseStatement)
	require.Len(t, byPhase, 1)
	assert.Equal(t, "T-001", byPhase[0].Definition.Ref)
}

func TestRegistry_SetActive(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), noop)

	assert.True(t, reg.SetActive("T-001", false))
	assert.Empty(t, reg.ByLevel(1))
	assert.Equal(t, 0, reg.ActiveCount())

	assert.True(t, reg.SetActive("T-001", true))
	assert.Len(t, reg.ByLevel(1), 1)

	assert.False(t, reg.SetActive("T-999", false))
}

func TestRegistry_DefinitionsIncludesInactive(t *testing.T) {
	reg := NewRegistry()
	reg.Register(def("T-001", 1, models.PhaseIntake, true), noop)
	reg.Register(def("T-002", 1, models.PhaseIntake, false), noop)

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, 1, reg.ActiveCount())
}

func TestRegistry_GetUnknownRef(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Get("T-404")
	assert.False(t, ok)
}
