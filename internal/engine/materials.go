package engine

import (
	_ "embed"
	"sort"
)

// Material is a named machining preset. All values are unitless by contract;
// applying one overwrites the live cutter parameters and re-issues the
// spindle speed.
type Material struct {
	Stepover     float64
	DepthPerPass float64
	FeedRate     float64
	PlungeRate   float64
	RPM          float64
}

// BuiltinMaterials is the standard preset script. It is ordinary script text,
// executed once before the user's script.
//
//go:embed materials.gcad
var BuiltinMaterials string

// materialNames returns the registered preset names, sorted for stable
// suggestion output.
func (e *Engine) materialNames() []string {
	names := make([]string, 0, len(e.materials))
	for name := range e.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
