// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by panrgp.
package domain

import (
	"strconv"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityOrganism identifies a genome and its annotated contigs.
	EntityOrganism EntityType = "organism"
	// EntityFamily identifies a gene family record.
	EntityFamily EntityType = "family"
	// EntityRegion identifies a predicted region of genomic plasticity.
	EntityRegion EntityType = "region"
	// EntityStatus identifies the pangenome status singleton.
	EntityStatus EntityType = "status"
)

// Partition classifies a gene family by how conserved it is across genomes.
type Partition string

// Canonical partitions produced by upstream partitioning.
const (
	PartitionPersistent Partition = "persistent"
	PartitionShell      Partition = "shell"
	PartitionCloud      Partition = "cloud"
	// PartitionUnknown marks a family that has not been partitioned yet.
	PartitionUnknown Partition = ""
)

// Valid reports whether p is one of the canonical partitions.
func (p Partition) Valid() bool {
	switch p {
	case PartitionPersistent, PartitionShell, PartitionCloud:
		return true
	default:
		return false
	}
}

// ParsePartition maps common spellings (P/S/C, full names) onto a Partition.
func ParsePartition(s string) Partition {
	switch s {
	case "persistent", "P", "p":
		return PartitionPersistent
	case "shell", "S", "s":
		return PartitionShell
	case "cloud", "C", "c":
		return PartitionCloud
	default:
		return PartitionUnknown
	}
}

// Strand is the coding strand of a gene.
type Strand string

const (
	StrandForward Strand = "+"
	StrandReverse Strand = "-"
	StrandUnknown Strand = "."
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Family is a cluster of homologous genes.
type Family struct {
	Base
	Name      string    `json:"name"`
	Partition Partition `json:"partition"`
}

// Gene is an annotated coding feature on a contig. Start and Stop are 1-based
// inclusive coordinates; Position is the zero-based index within the contig.
type Gene struct {
	ID       string `json:"id"`
	FamilyID string `json:"family_id"`
	Position int    `json:"position"`
	Start    int    `json:"start"`
	Stop     int    `json:"stop"`
	Strand   Strand `json:"strand"`
}

// Contig is an ordered, optionally circular, sequence of genes.
type Contig struct {
	Name     string `json:"name"`
	Circular bool   `json:"circular"`
	Genes    []Gene `json:"genes"`
}

// Organism is a genome assembly made of contigs.
type Organism struct {
	Base
	Name    string   `json:"name"`
	Contigs []Contig `json:"contigs"`
}

// GeneCount returns the number of genes across all contigs.
func (o Organism) GeneCount() int {
	n := 0
	for _, c := range o.Contigs {
		n += len(c.Genes)
	}
	return n
}

// RegionGene references a gene included in a region.
type RegionGene struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Region is a predicted region of genomic plasticity. Genes are kept in contig
// order, starting at the first gene of the region and ending at its seed.
type Region struct {
	Base
	Name         string       `json:"name"`
	OrganismID   string       `json:"organism_id"`
	OrganismName string       `json:"organism_name"`
	Contig       string       `json:"contig"`
	LocalID      int          `json:"local_id"`
	Score        float64      `json:"score"`
	Start        int          `json:"start"`
	Stop         int          `json:"stop"`
	Genes        []RegionGene `json:"genes"`
}

// Span returns the genomic length covered between the first gene's start and
// the seed gene's stop.
func (r Region) Span() int {
	d := r.Stop - r.Start
	if d < 0 {
		return -d
	}
	return d
}

// Wraps reports whether the region crosses the origin of a circular contig.
func (r Region) Wraps() bool {
	for i := 1; i < len(r.Genes); i++ {
		if r.Genes[i].Position < r.Genes[i-1].Position {
			return true
		}
	}
	return false
}

// RegionName formats a region identifier from its naming scope and local id.
func RegionName(scope string, localID int) string {
	return scope + "_RGP_" + strconv.Itoa(localID)
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
