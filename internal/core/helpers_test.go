package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"panrgp/internal/ingest"
	"panrgp/internal/rgp"
	"panrgp/pkg/domain"
)

type stubClock struct{ t time.Time }

func (s stubClock) Now() time.Time { return s.t }

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d:" + msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i:" + msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w:" + msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e:" + msg) }

func (c *captureLogger) has(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if strings.HasPrefix(call, prefix) {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	started []string
	ended   []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	c.started = append(c.started, op)
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

var fixturePartitions = map[string]domain.Partition{
	"P1": domain.PartitionPersistent, "P2": domain.PartitionPersistent,
	"P3": domain.PartitionPersistent, "P4": domain.PartitionPersistent,
	"S1": domain.PartitionShell,
}

// contig lays genes out 1000 bp apart, each 900 bp long. Family IDs not in
// fixturePartitions are cloud.
func contig(org, name string, circular bool, families ...string) domain.Contig {
	c := domain.Contig{Name: name, Circular: circular}
	for i, f := range families {
		c.Genes = append(c.Genes, domain.Gene{
			ID:       fmt.Sprintf("%s_%s_%d", org, name, i),
			FamilyID: f,
			Position: i,
			Start:    i*1000 + 1,
			Stop:     i*1000 + 900,
			Strand:   domain.StrandForward,
		})
	}
	return c
}

func families(orgs []domain.Organism) []domain.Family {
	seen := map[string]bool{}
	var out []domain.Family
	for _, o := range orgs {
		for _, c := range o.Contigs {
			for _, g := range c.Genes {
				if g.FamilyID == "" || seen[g.FamilyID] {
					continue
				}
				seen[g.FamilyID] = true
				p, ok := fixturePartitions[g.FamilyID]
				if !ok {
					p = domain.PartitionCloud
				}
				out = append(out, domain.Family{Base: domain.Base{ID: g.FamilyID}, Name: g.FamilyID, Partition: p})
			}
		}
	}
	return out
}

// fixtureDataset holds three organisms. P3 is carried twice by orgB, which
// makes it multigenic under the default duplication margin.
func fixtureDataset() ingest.Dataset {
	orgs := []domain.Organism{
		{Name: "orgA", Contigs: []domain.Contig{
			contig("orgA", "chr1", false, "P1", "P2", "C1", "C2", "C3", "C4", "P3", "P4"),
		}},
		{Name: "orgB", Contigs: []domain.Contig{
			contig("orgB", "chr1", false, "P1", "P2", "C5", "S1", "C6", "P3", "C7", "P3", "P4"),
		}},
		{Name: "orgC", Contigs: []domain.Contig{
			contig("orgC", "ctg9", true, "C8", "C9", "C10", "C11", "C12"),
		}},
	}
	return ingest.Dataset{Organisms: orgs, Families: families(orgs)}
}

func ingestedService(opts ...ServiceOption) *Service {
	svc := NewInMemoryService(nil, opts...)
	if _, err := svc.Ingest(context.Background(), IngestInput{Dataset: fixtureDataset()}); err != nil {
		panic(err)
	}
	return svc
}

func regionNames(regions []Region) []string {
	out := make([]string, len(regions))
	for i, r := range regions {
		out[i] = r.Name
	}
	return out
}

func defaultPredict() PredictInput {
	return PredictInput{Params: rgp.DefaultParams(), Threads: 2}
}
