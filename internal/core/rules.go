package core

import "panrgp/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in integrity
// checks on stored regions and gene families.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRegionDisjointnessRule())
	engine.Register(NewRegionNameRule())
	engine.Register(NewRegionGeneReferenceRule())
	engine.Register(NewFamilyReferenceRule())
	return engine
}

func touches(changes []Change, entities ...EntityType) bool {
	for _, c := range changes {
		for _, e := range entities {
			if c.Entity == e {
				return true
			}
		}
	}
	return false
}
