package core

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"panrgp/internal/blob"
	"panrgp/internal/export"
)

// ExportInput selects the output of Export.
type ExportInput struct {
	Format export.Format
	// Key is the destination blob key. It defaults to
	// runs/<run id>/regions.<ext>.
	Key string
}

// Export renders the stored regions and writes them to the blob store,
// replacing any previous object at the same key.
func (s *Service) Export(ctx context.Context, in ExportInput) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, "export", func(ctx context.Context) error {
		if s.blobs == nil {
			return ErrNoBlobStore
		}
		data, err := s.exportInput(ctx)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, in.Format, data); err != nil {
			return err
		}
		key := in.Key
		if key == "" {
			key = "runs/" + data.Parameters.RunID + "/regions." + in.Format.Extension()
		}
		info, err = s.blobs.Put(ctx, key, &buf, blob.PutOptions{
			ContentType: in.Format.ContentType(),
			Overwrite:   true,
			Metadata: map[string]string{
				"run_id":  data.Parameters.RunID,
				"format":  string(in.Format),
				"regions": strconv.Itoa(len(data.Regions)),
			},
		})
		if err != nil {
			return err
		}
		s.logger.Info("regions exported", "key", info.Key, "format", in.Format, "bytes", info.Size)
		return nil
	})
	return info, err
}

// ExportTo renders the stored regions to w.
func (s *Service) ExportTo(ctx context.Context, w io.Writer, format export.Format) error {
	return s.run(ctx, "export_to", func(ctx context.Context) error {
		data, err := s.exportInput(ctx)
		if err != nil {
			return err
		}
		return export.Write(w, format, data)
	})
}

func (s *Service) exportInput(ctx context.Context) (export.Input, error) {
	var in export.Input
	err := s.store.View(ctx, func(v TransactionView) error {
		p, ok := v.Parameters()
		if !ok || !v.Status().RegionsPredicted {
			return ErrNoRegions
		}
		in = export.Input{Regions: v.ListRegions(), Organisms: v.ListOrganisms(), Parameters: &p}
		return nil
	})
	return in, err
}
