package core

import (
	"context"
	"reflect"
	"testing"
)

func predictedService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	svc := ingestedService(opts...)
	if _, err := svc.PredictRGP(context.Background(), defaultPredict()); err != nil {
		t.Fatalf("predict: %v", err)
	}
	return svc
}

func TestRegionsFilter(t *testing.T) {
	ctx := context.Background()
	svc := predictedService(t)
	cases := []struct {
		filter RegionFilter
		want   []string
	}{
		{RegionFilter{}, []string{"orgA_chr1_RGP_0", "orgB_chr1_RGP_0", "orgC_ctg9_RGP_0"}},
		{RegionFilter{OrganismID: "orgB"}, []string{"orgB_chr1_RGP_0"}},
		{RegionFilter{Contig: "chr1"}, []string{"orgA_chr1_RGP_0", "orgB_chr1_RGP_0"}},
		{RegionFilter{MinScore: 6}, []string{"orgB_chr1_RGP_0"}},
		{RegionFilter{OrganismID: "orgC", Contig: "chr1"}, []string{}},
	}
	for _, tc := range cases {
		got, err := svc.Regions(ctx, tc.filter)
		if err != nil {
			t.Fatalf("regions %+v: %v", tc.filter, err)
		}
		if names := regionNames(got); !reflect.DeepEqual(names, tc.want) {
			t.Fatalf("filter %+v: expected %v, got %v", tc.filter, tc.want, names)
		}
	}
}

func TestLocate(t *testing.T) {
	ctx := context.Background()
	svc := predictedService(t)
	cases := []struct {
		locus Locus
		want  []string
	}{
		{Locus{OrganismID: "orgA", Contig: "chr1", Position: 3000}, []string{"orgA_chr1_RGP_0"}},
		{Locus{OrganismID: "orgA", Contig: "chr1", Position: 2001}, []string{"orgA_chr1_RGP_0"}},
		{Locus{OrganismID: "orgA", Contig: "chr1", Position: 1500}, []string{}},
		{Locus{OrganismID: "orgB", Contig: "chr1", Position: 7900}, []string{"orgB_chr1_RGP_0"}},
		{Locus{OrganismID: "orgC", Contig: "ctg9", Position: 10}, []string{"orgC_ctg9_RGP_0"}},
		{Locus{OrganismID: "orgC", Contig: "chr1", Position: 10}, []string{}},
	}
	for _, tc := range cases {
		got, err := svc.Locate(ctx, tc.locus)
		if err != nil {
			t.Fatalf("locate %+v: %v", tc.locus, err)
		}
		if names := regionNames(got); !reflect.DeepEqual(names, tc.want) {
			t.Fatalf("locus %+v: expected %v, got %v", tc.locus, tc.want, names)
		}
	}
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	svc := ingestedService()
	before, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if before.Parameters != nil || before.Regions != 0 || before.Organisms != 3 {
		t.Fatalf("unexpected overview before prediction: %+v", before)
	}
	summary, err := svc.PredictRGP(ctx, defaultPredict())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	after, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if after.Regions != 3 || !after.Status.RegionsPredicted || after.Parameters == nil || after.Parameters.RunID != summary.RunID {
		t.Fatalf("unexpected overview after prediction: %+v", after)
	}
	if after.Families != len(fixtureDataset().Families) {
		t.Fatalf("expected %d families, got %d", len(fixtureDataset().Families), after.Families)
	}
}
