package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	PutOrganism(Organism) (Organism, error)
	DeleteOrganism(id string) error
	PutFamily(Family) (Family, error)
	ReplaceRegions([]Region) ([]Region, error)
	DeleteRegions() error
	SetStatus(mutator func(*Status) error) (Status, error)
	SetParameters(RGPParameters) error
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListOrganisms() []Organism
	FindOrganism(id string) (Organism, bool)
	ListFamilies() []Family
	FindFamily(id string) (Family, bool)
	ListRegions() []Region
	Status() Status
	Parameters() (RGPParameters, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetOrganism(id string) (Organism, bool)
	ListOrganisms() []Organism
	ListFamilies() []Family
	ListRegions() []Region
	Status() Status
	Parameters() (RGPParameters, bool)
}
