package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"panrgp/internal/core"
	"panrgp/internal/export"
	"panrgp/internal/ingest"
	"panrgp/internal/rgp"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "panrgp",
		Short:         "Predict regions of genomic plasticity in a pangenome",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	a.bindFlags(root)
	root.AddCommand(
		newIngestCmd(a),
		newPredictCmd(a),
		newRegionsCmd(a),
		newLocateCmd(a),
		newExportCmd(a),
		newStatusCmd(a),
		newServeCmd(a),
	)
	return root
}

// withService wraps a subcommand so it runs between setup and teardown.
func (a *app) withService(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err := a.setup(cmd); err != nil {
			return errors.Join(err, a.teardown())
		}
		defer func() {
			if cerr := a.teardown(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func newIngestCmd(a *app) *cobra.Command {
	var (
		fromBlob bool
		force    bool
		gffOpts  ingest.GFFOptions
	)
	cmd := &cobra.Command{
		Use:   "ingest <file|key>...",
		Short: "Store annotated genomes (GFF, one organism per file) and gene families (JSON)",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, args []string) error {
		var (
			summary core.IngestSummary
			err     error
		)
		if fromBlob {
			summary, err = a.svc.IngestBlobs(cmd.Context(), core.IngestBlobsInput{Keys: args, Force: force, GFF: gffOpts})
		} else {
			var d ingest.Dataset
			if d, err = readLocal(args, gffOpts); err != nil {
				return err
			}
			summary, err = a.svc.Ingest(cmd.Context(), core.IngestInput{Dataset: d, Force: force})
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.stdout, "ingested %d organisms, %d families, %d genes\n", summary.Organisms, summary.Families, summary.Genes)
		if err == nil {
			err = printStatus(a.stdout, summary.Status)
		}
		return err
	})
	f := cmd.Flags()
	f.BoolVar(&fromBlob, "from-blob", false, "read arguments as keys of the blob store")
	f.BoolVar(&force, "force", false, "discard previously predicted regions")
	f.StringSliceVar(&gffOpts.GeneTypes, "gene-type", nil, "GFF feature types read as genes (default CDS)")
	f.StringVar(&gffOpts.FamilyAttr, "family-attr", "", "GFF attribute holding the gene family (default family)")
	f.StringVar(&gffOpts.PartitionAttr, "partition-attr", "", "GFF attribute holding the family partition (default partition)")
	return cmd
}

func readLocal(paths []string, opts ingest.GFFOptions) (ingest.Dataset, error) {
	var merged ingest.Dataset
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return ingest.Dataset{}, err
		}
		d, err := ingest.Read(f, p, opts)
		_ = f.Close()
		if err != nil {
			return ingest.Dataset{}, err
		}
		if err := merged.Merge(d); err != nil {
			return ingest.Dataset{}, fmt.Errorf("%s: %w", p, err)
		}
	}
	return merged, nil
}

func newPredictCmd(a *app) *cobra.Command {
	in := core.PredictInput{Params: rgp.DefaultParams()}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict regions of genomic plasticity for every stored organism",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, _ []string) error {
		summary, err := a.svc.PredictRGP(cmd.Context(), in)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "run\t%s\n", summary.RunID)
		_, _ = fmt.Fprintf(w, "regions\t%d\n", summary.Regions)
		_, _ = fmt.Fprintf(w, "multigenic families\t%d\n", summary.Multigenic)
		_, _ = fmt.Fprintf(w, "naming\t%s\n", summary.Scheme)
		return w.Flush()
	})
	f := cmd.Flags()
	f.Float64Var(&in.Params.PersistentPenalty, "persistent-penalty", in.Params.PersistentPenalty, "base of the penalty for consecutive persistent genes")
	f.Float64Var(&in.Params.VariableGain, "variable-gain", in.Params.VariableGain, "score gained per variable gene")
	f.IntVar(&in.Params.MinLength, "min-length", in.Params.MinLength, "minimum region length in bp (exclusive)")
	f.Float64Var(&in.Params.MinScore, "min-score", in.Params.MinScore, "minimum region score")
	f.Float64Var(&in.Params.DupMargin, "dup-margin", in.Params.DupMargin, "fraction of carriers with several copies above which a family is multigenic")
	f.IntVar(&in.Threads, "threads", runtime.GOMAXPROCS(0), "organisms processed concurrently")
	f.BoolVar(&in.Force, "force", false, "replace previously predicted regions")
	return cmd
}

func newRegionsCmd(a *app) *cobra.Command {
	var (
		filter core.RegionFilter
		format string
	)
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List predicted regions",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, _ []string) error {
		f, err := export.ParseFormat(format)
		if err != nil {
			return usageError{err}
		}
		regions, err := a.svc.Regions(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return export.Write(a.stdout, f, export.Input{Regions: regions})
	})
	fl := cmd.Flags()
	fl.StringVar(&filter.OrganismID, "organism", "", "only regions of this organism")
	fl.StringVar(&filter.Contig, "contig", "", "only regions on this contig")
	fl.Float64Var(&filter.MinScore, "min-score", 0, "only regions scoring at least this much")
	fl.StringVar(&format, "format", string(export.FormatTSV), "output format: tsv|json")
	return cmd
}

func newLocateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <organism> <contig> <position>",
		Short: "Show the regions covering a 1-based coordinate",
		Args:  cobra.ExactArgs(3),
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[2])
		if err != nil || pos < 1 {
			return usageError{fmt.Errorf("invalid position %q", args[2])}
		}
		regions, err := a.svc.Locate(cmd.Context(), core.Locus{OrganismID: args[0], Contig: args[1], Position: pos})
		if err != nil {
			return err
		}
		if len(regions) == 0 {
			_, err = fmt.Fprintf(a.stdout, "no region covers %s:%s:%d\n", args[0], args[1], pos)
			return err
		}
		return export.WriteTSV(a.stdout, export.Input{Regions: regions})
	})
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		key    string
		toBlob bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write predicted regions as TSV, JSON or GFF",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, _ []string) error {
		f, err := export.ParseFormat(format)
		if err != nil {
			return usageError{err}
		}
		if toBlob || key != "" {
			info, err := a.svc.Export(cmd.Context(), core.ExportInput{Format: f, Key: key})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.stdout, "wrote %s (%d bytes)\n", info.Key, info.Size)
			return err
		}
		if output == "" || output == "-" {
			return a.svc.ExportTo(cmd.Context(), a.stdout, f)
		}
		var buf bytes.Buffer
		if err := a.svc.ExportTo(cmd.Context(), &buf, f); err != nil {
			return err
		}
		return os.WriteFile(output, buf.Bytes(), 0o644)
	})
	fl := cmd.Flags()
	fl.StringVarP(&format, "format", "f", string(export.FormatTSV), "output format: tsv|json|gff")
	fl.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fl.BoolVar(&toBlob, "to-blob", false, "write to the blob store under runs/<run id>/")
	fl.StringVar(&key, "key", "", "blob key to write (implies --to-blob)")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pangenome status and latest prediction settings",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, _ []string) error {
		ov, err := a.svc.Overview(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(a.stdout, "organisms %d, families %d, regions %d\n", ov.Organisms, ov.Families, ov.Regions)
		if err := printStatus(a.stdout, ov.Status); err != nil {
			return err
		}
		if p := ov.Parameters; p != nil {
			_, err = fmt.Fprintf(a.stdout, "last run %s at %s: penalty=%g gain=%g min_length=%d min_score=%g dup_margin=%g\n",
				p.RunID, p.PredictedAt.Format("2006-01-02T15:04:05Z07:00"), p.PersistentPenalty, p.VariableGain, p.MinLength, p.MinScore, p.DupMargin)
		}
		return err
	})
	return cmd
}

func printStatus(w io.Writer, st core.Status) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range []struct {
		name string
		ok   bool
	}{
		{"annotations", st.Annotations},
		{"families", st.Families},
		{"partitions", st.Partitions},
		{"regions", st.RegionsPredicted},
	} {
		_, _ = fmt.Fprintf(tw, "%s\t%t\n", row.name, row.ok)
	}
	return tw.Flush()
}
