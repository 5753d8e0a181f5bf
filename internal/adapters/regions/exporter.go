package regions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"panrgp/internal/blob"
	"panrgp/internal/core"
	"panrgp/internal/export"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportRecord tracks an export request and the blobs it produced.
type ExportRecord struct {
	ID          string          `json:"id"`
	Formats     []export.Format `json:"formats"`
	Status      ExportStatus    `json:"status"`
	Error       string          `json:"error,omitempty"`
	Artifacts   []blob.Info     `json:"artifacts,omitempty"`
	RequestedBy string          `json:"requested_by"`
	Reason      string          `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	out := r
	out.Formats = append([]export.Format(nil), r.Formats...)
	out.Artifacts = append([]blob.Info(nil), r.Artifacts...)
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// ExportInput represents an enqueue request for the worker.
type ExportInput struct {
	Formats     []export.Format
	RequestedBy string
	Reason      string
}

// ExportScheduler queues region export requests and exposes their status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error)
	GetExport(id string) (ExportRecord, bool)
}

// Exporter writes the stored regions to the blob store.
type Exporter interface {
	Export(ctx context.Context, in core.ExportInput) (blob.Info, error)
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures one status transition of an export.
type AuditEntry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      string         `json:"actor"`
	ExportID   string         `json:"export_id"`
	Status     ExportStatus   `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ErrQueueFull is returned when the export backlog is at capacity.
var ErrQueueFull = errors.New("export queue full")

// Worker executes region exports asynchronously, one job at a time.
type Worker struct {
	exporter Exporter
	audit    AuditLogger

	queue chan string
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs an export worker. audit may be nil.
func NewWorker(exporter Exporter, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		exporter: exporter,
		audit:    audit,
		queue:    make(chan string, 32),
		jobs:     make(map[string]*ExportRecord),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case id := <-w.queue:
			w.process(id)
		}
	}
}

// EnqueueExport validates the requested formats and schedules the job. An
// empty format list exports TSV and GFF.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if w.exporter == nil {
		return ExportRecord{}, fmt.Errorf("exporter not configured")
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []export.Format{export.FormatTSV, export.FormatGFF}
	}
	uniq := make([]export.Format, 0, len(formats))
	seen := make(map[export.Format]struct{})
	for _, raw := range formats {
		f, err := export.ParseFormat(string(raw))
		if err != nil {
			return ExportRecord{}, err
		}
		if _, duplicate := seen[f]; duplicate {
			continue
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := ExportRecord{
		ID:          id,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		Reason:      input.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The lock is held until the queued entry is audited so the worker
	// cannot audit the running transition first.
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case w.queue <- id:
	default:
		return ExportRecord{}, ErrQueueFull
	}
	w.jobs[id] = &record
	queued := record.copy()
	w.record(ctx, queued, nil)
	return queued, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(id string) {
	record, ok := w.update(id, func(r *ExportRecord) { r.Status = ExportStatusRunning })
	if !ok {
		return
	}
	artifacts := make([]blob.Info, 0, len(record.Formats))
	for _, f := range record.Formats {
		info, err := w.exporter.Export(w.ctx, core.ExportInput{
			Format: f,
			Key:    "exports/" + id + "/regions." + f.Extension(),
		})
		if err != nil {
			w.finish(id, nil, fmt.Sprintf("export %s: %v", f, err))
			return
		}
		artifacts = append(artifacts, info)
	}
	w.finish(id, artifacts, "")
}

func (w *Worker) finish(id string, artifacts []blob.Info, reason string) {
	w.update(id, func(r *ExportRecord) {
		now := r.UpdatedAt
		r.CompletedAt = &now
		if reason != "" {
			r.Status = ExportStatusFailed
			r.Error = reason
			return
		}
		r.Status = ExportStatusSucceeded
		r.Artifacts = artifacts
	})
}

// update applies fn to the job under lock, stamps it and audits the
// transition.
func (w *Worker) update(id string, fn func(*ExportRecord)) (ExportRecord, bool) {
	w.mu.Lock()
	record, ok := w.jobs[id]
	if !ok {
		w.mu.Unlock()
		return ExportRecord{}, false
	}
	record.UpdatedAt = time.Now().UTC()
	fn(record)
	snapshot := record.copy()
	w.mu.Unlock()

	var meta map[string]any
	if snapshot.Error != "" {
		meta = map[string]any{"error": snapshot.Error}
	}
	w.record(w.ctx, snapshot, meta)
	return snapshot, true
}

func (w *Worker) record(ctx context.Context, r ExportRecord, meta map[string]any) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Action:     "region_export",
		Actor:      r.RequestedBy,
		ExportID:   r.ID,
		Status:     r.Status,
		Reason:     r.Reason,
		Metadata:   meta,
		OccurredAt: r.UpdatedAt,
	})
}

// MemoryAuditLog keeps audit entries in memory.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
