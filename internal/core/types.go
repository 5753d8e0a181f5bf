package core

import "panrgp/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Base               = domain.Base
	Organism           = domain.Organism
	Contig             = domain.Contig
	Gene               = domain.Gene
	Family             = domain.Family
	Region             = domain.Region
	Status             = domain.Status
	RGPParameters      = domain.RGPParameters
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityOrganism = domain.EntityOrganism
	EntityFamily   = domain.EntityFamily
	EntityRegion   = domain.EntityRegion
	EntityStatus   = domain.EntityStatus
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// NewRulesEngine returns an engine without rules.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
