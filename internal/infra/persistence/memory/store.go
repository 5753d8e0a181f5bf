// Package memory provides an in-memory implementation of the pangenome
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"panrgp/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Organism aliases domain.Organism for in-memory persistence operations.
	Organism = domain.Organism
	// Family aliases domain.Family.
	Family = domain.Family
	// Region aliases domain.Region.
	Region = domain.Region
	// Status aliases domain.Status.
	Status = domain.Status
	// RGPParameters aliases domain.RGPParameters.
	RGPParameters = domain.RGPParameters
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	organisms  map[string]Organism
	families   map[string]Family
	regions    []Region
	status     Status
	parameters *RGPParameters
}

// Snapshot captures a point-in-time clone of the store state. Regions keep
// their prediction order.
type Snapshot struct {
	Organisms  map[string]Organism `json:"organisms"`
	Families   map[string]Family   `json:"families"`
	Regions    []Region            `json:"regions"`
	Status     Status              `json:"status"`
	Parameters *RGPParameters      `json:"parameters,omitempty"`
}

func newMemoryState() memoryState {
	return memoryState{
		organisms: make(map[string]Organism),
		families:  make(map[string]Family),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Organisms: make(map[string]Organism, len(state.organisms)),
		Families:  make(map[string]Family, len(state.families)),
		Regions:   cloneRegions(state.regions),
		Status:    state.status,
	}
	for k, v := range state.organisms {
		s.Organisms[k] = cloneOrganism(v)
	}
	for k, v := range state.families {
		s.Families[k] = v
	}
	if state.parameters != nil {
		p := *state.parameters
		s.Parameters = &p
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Organisms {
		state.organisms[k] = cloneOrganism(v)
	}
	for k, v := range s.Families {
		state.families[k] = v
	}
	state.regions = cloneRegions(s.Regions)
	state.status = s.Status
	if s.Parameters != nil {
		p := *s.Parameters
		state.parameters = &p
	}
	return state
}

// migrateSnapshot normalizes snapshots written by older builds or edited by
// hand: missing maps are created, regions of unknown organisms are dropped and
// the status flags are reconciled with the stored data.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Organisms == nil {
		snapshot.Organisms = map[string]Organism{}
	}
	if snapshot.Families == nil {
		snapshot.Families = map[string]Family{}
	}
	for id, org := range snapshot.Organisms {
		if org.ID == "" {
			org.ID = id
			snapshot.Organisms[id] = org
		}
	}
	for id, fam := range snapshot.Families {
		if fam.ID == "" {
			fam.ID = id
			snapshot.Families[id] = fam
		}
	}
	regions := snapshot.Regions[:0:0]
	for _, r := range snapshot.Regions {
		if _, ok := snapshot.Organisms[r.OrganismID]; !ok {
			continue
		}
		regions = append(regions, r)
	}
	snapshot.Regions = regions
	if len(snapshot.Organisms) == 0 {
		snapshot.Status.Annotations = false
	}
	if len(snapshot.Regions) == 0 && snapshot.Parameters == nil {
		snapshot.Status.RegionsPredicted = false
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	return memoryStateFromSnapshot(snapshotFromMemoryState(s))
}

func cloneOrganism(o Organism) Organism {
	cp := o
	if o.Contigs != nil {
		cp.Contigs = make([]domain.Contig, len(o.Contigs))
		for i, c := range o.Contigs {
			cc := c
			cc.Genes = append([]domain.Gene(nil), c.Genes...)
			cp.Contigs[i] = cc
		}
	}
	return cp
}

func cloneRegion(r Region) Region {
	cp := r
	cp.Genes = append([]domain.RegionGene(nil), r.Genes...)
	return cp
}

func cloneRegions(in []Region) []Region {
	if in == nil {
		return nil
	}
	out := make([]Region, len(in))
	for i, r := range in {
		out[i] = cloneRegion(r)
	}
	return out
}

// Store provides an in-memory transactional store for the pangenome.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func sortedOrganisms(m map[string]Organism) []Organism {
	out := make([]Organism, 0, len(m))
	for _, o := range m {
		out = append(out, cloneOrganism(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedFamilies(m map[string]Family) []Family {
	out := make([]Family, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListOrganisms returns all organisms ordered by ID.
func (v transactionView) ListOrganisms() []Organism { return sortedOrganisms(v.state.organisms) }

// FindOrganism looks an organism up by ID.
func (v transactionView) FindOrganism(id string) (Organism, bool) {
	o, ok := v.state.organisms[id]
	if !ok {
		return Organism{}, false
	}
	return cloneOrganism(o), true
}

// ListFamilies returns all families ordered by ID.
func (v transactionView) ListFamilies() []Family { return sortedFamilies(v.state.families) }

// FindFamily looks a family up by ID.
func (v transactionView) FindFamily(id string) (Family, bool) {
	f, ok := v.state.families[id]
	return f, ok
}

// ListRegions returns regions in prediction order.
func (v transactionView) ListRegions() []Region { return cloneRegions(v.state.regions) }

// Status returns the pangenome status flags.
func (v transactionView) Status() Status { return v.state.status }

// Parameters returns the settings of the latest prediction, if any.
func (v transactionView) Parameters() (RGPParameters, bool) {
	if v.state.parameters == nil {
		return RGPParameters{}, false
	}
	return *v.state.parameters, true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// PutOrganism inserts or replaces an organism. Genes are renumbered by
// position within each contig.
func (tx *transaction) PutOrganism(o Organism) (Organism, error) {
	if o.ID == "" {
		o.ID = o.Name
	}
	if o.ID == "" {
		return Organism{}, fmt.Errorf("organism requires an id or name")
	}
	if o.Name == "" {
		o.Name = o.ID
	}
	o = cloneOrganism(o)
	for ci := range o.Contigs {
		for gi := range o.Contigs[ci].Genes {
			o.Contigs[ci].Genes[gi].Position = gi
		}
	}
	action := domain.ActionCreate
	var before any
	if current, ok := tx.state.organisms[o.ID]; ok {
		action = domain.ActionUpdate
		before = cloneOrganism(current)
		o.CreatedAt = current.CreatedAt
	} else {
		o.CreatedAt = tx.now
	}
	o.UpdatedAt = tx.now
	tx.state.organisms[o.ID] = cloneOrganism(o)
	tx.recordChange(Change{Entity: domain.EntityOrganism, Action: action, Before: before, After: cloneOrganism(o)})
	return cloneOrganism(o), nil
}

// DeleteOrganism removes an organism along with its regions.
func (tx *transaction) DeleteOrganism(id string) error {
	current, ok := tx.state.organisms[id]
	if !ok {
		return fmt.Errorf("organism %q not found", id)
	}
	delete(tx.state.organisms, id)
	kept := tx.state.regions[:0:0]
	for _, r := range tx.state.regions {
		if r.OrganismID == id {
			tx.recordChange(Change{Entity: domain.EntityRegion, Action: domain.ActionDelete, Before: cloneRegion(r)})
			continue
		}
		kept = append(kept, r)
	}
	tx.state.regions = kept
	tx.recordChange(Change{Entity: domain.EntityOrganism, Action: domain.ActionDelete, Before: cloneOrganism(current)})
	return nil
}

// PutFamily inserts or replaces a gene family.
func (tx *transaction) PutFamily(f Family) (Family, error) {
	if f.ID == "" {
		f.ID = f.Name
	}
	if f.ID == "" {
		return Family{}, fmt.Errorf("family requires an id or name")
	}
	if f.Name == "" {
		f.Name = f.ID
	}
	action := domain.ActionCreate
	var before any
	if current, ok := tx.state.families[f.ID]; ok {
		action = domain.ActionUpdate
		before = current
		f.CreatedAt = current.CreatedAt
	} else {
		f.CreatedAt = tx.now
	}
	f.UpdatedAt = tx.now
	tx.state.families[f.ID] = f
	tx.recordChange(Change{Entity: domain.EntityFamily, Action: action, Before: before, After: f})
	return f, nil
}

// ReplaceRegions swaps the whole region set for regions, keeping their order.
func (tx *transaction) ReplaceRegions(regions []Region) ([]Region, error) {
	for i := range regions {
		if regions[i].OrganismID == "" {
			return nil, fmt.Errorf("region %q has no organism", regions[i].Name)
		}
		if _, ok := tx.state.organisms[regions[i].OrganismID]; !ok {
			return nil, fmt.Errorf("region %q references unknown organism %q", regions[i].Name, regions[i].OrganismID)
		}
	}
	if err := tx.DeleteRegions(); err != nil {
		return nil, err
	}
	out := make([]Region, len(regions))
	for i, r := range regions {
		r = cloneRegion(r)
		if r.ID == "" {
			r.ID = r.Name
		}
		r.CreatedAt = tx.now
		r.UpdatedAt = tx.now
		out[i] = r
		tx.recordChange(Change{Entity: domain.EntityRegion, Action: domain.ActionCreate, After: cloneRegion(r)})
	}
	tx.state.regions = cloneRegions(out)
	return out, nil
}

// DeleteRegions drops every stored region.
func (tx *transaction) DeleteRegions() error {
	for _, r := range tx.state.regions {
		tx.recordChange(Change{Entity: domain.EntityRegion, Action: domain.ActionDelete, Before: cloneRegion(r)})
	}
	tx.state.regions = nil
	return nil
}

// SetStatus applies mutator to the status flags.
func (tx *transaction) SetStatus(mutator func(*Status) error) (Status, error) {
	before := tx.state.status
	next := before
	if err := mutator(&next); err != nil {
		return Status{}, err
	}
	tx.state.status = next
	tx.recordChange(Change{Entity: domain.EntityStatus, Action: domain.ActionUpdate, Before: before, After: next})
	return next, nil
}

// SetParameters records the settings of a prediction.
func (tx *transaction) SetParameters(p RGPParameters) error {
	tx.state.parameters = &p
	return nil
}

// Read helpers ---------------------------------------------------------------

// GetOrganism retrieves an organism by ID from committed state.
func (s *Store) GetOrganism(id string) (Organism, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.state.organisms[id]
	if !ok {
		return Organism{}, false
	}
	return cloneOrganism(o), true
}

// ListOrganisms returns all organisms from committed state ordered by ID.
func (s *Store) ListOrganisms() []Organism {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedOrganisms(s.state.organisms)
}

// ListFamilies returns all families from committed state ordered by ID.
func (s *Store) ListFamilies() []Family {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedFamilies(s.state.families)
}

// ListRegions returns committed regions in prediction order.
func (s *Store) ListRegions() []Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRegions(s.state.regions)
}

// Status returns the committed status flags.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.status
}

// Parameters returns the settings of the latest committed prediction.
func (s *Store) Parameters() (RGPParameters, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.parameters == nil {
		return RGPParameters{}, false
	}
	return *s.state.parameters, true
}
