// backend/src/audit/controls/register.go
//
// Package controls holds the built-in control catalog, one file per level.
// RegisterAll wires every control into a registry; registration is idempotent
// so it can be called from tests and from process start alike.
package controls

import (
	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

type controlDef struct {
	ref         string
	name        string
	description string
	severity    models.Severity
	fn          audit.ControlFunc
}

func register(reg *audit.Registry, level int, phase models.Phase, defs []controlDef) {
	for _, d := range defs {
		reg.Register(models.ControlDefinition{
			Ref:             d.ref,
			Name:            d.name,
			Description:     d.description,
			Level:           level,
			Phase:           phase,
			DefaultSeverity: d.severity,
			Active:          true,
		}, d.fn)
	}
}

// RegisterAll adds the full built-in catalog to reg.
func RegisterAll(reg *audit.Registry) {
	registerLevel0(reg)
	registerLevel1(reg)
	registerLevel2(reg)
	registerLevel3(reg)
	registerLevel4(reg)
	registerLevel5(reg)
	registerComparison(reg)
	registerLevel6(reg)
	registerLevel7(reg)
	registerLevel8(reg)
}

// NewRegistry returns a registry preloaded with the built-in catalog.
func NewRegistry() *audit.Registry {
	reg := audit.NewRegistry()
	RegisterAll(reg)
	return reg
}
