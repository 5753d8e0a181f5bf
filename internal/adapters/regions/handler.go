// Package regions exposes predicted regions over HTTP: status, listing,
// locus lookup, streamed exports and asynchronous exports to the blob store.
package regions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"panrgp/internal/core"
	"panrgp/internal/export"
)

// Service is the read side of core.Service used by the handler.
type Service interface {
	Overview(ctx context.Context) (core.Overview, error)
	Regions(ctx context.Context, filter core.RegionFilter) ([]core.Region, error)
	Locate(ctx context.Context, locus core.Locus) ([]core.Region, error)
	ExportTo(ctx context.Context, w io.Writer, format export.Format) error
}

// Handler provides HTTP access to regions and exports.
type Handler struct {
	Service Service
	Exports ExportScheduler
}

// NewHandler constructs a region HTTP handler.
func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "region service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasPrefix(path, "/api/v1/exports"):
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleExports(w, r, path)
		return
	case r.Method != http.MethodGet:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	case path == "/api/v1/status":
		h.handleStatus(w, r)
	case path == "/api/v1/regions":
		h.handleList(w, r)
	case path == "/api/v1/locate":
		h.handleLocate(w, r)
	case path == "/api/v1/export":
		h.handleStream(w, r)
	case strings.HasPrefix(path, "/api/v1/regions/"):
		h.handleRegion(w, r, strings.TrimPrefix(path, "/api/v1/regions/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Service.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.RegionFilter{OrganismID: q.Get("organism"), Contig: q.Get("contig")}
	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_score")
			return
		}
		filter.MinScore = v
	}
	regions, err := h.Service.Regions(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	switch negotiateFormat(r) {
	case export.FormatTSV:
		w.Header().Set("Content-Type", export.FormatTSV.ContentType())
		_ = export.WriteTSV(w, export.Input{Regions: regions})
	case export.FormatJSON:
		if regions == nil {
			regions = []core.Region{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(regions), "regions": regions})
	default:
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
	}
}

func (h *Handler) handleRegion(w http.ResponseWriter, r *http.Request, name string) {
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "region not found")
		return
	}
	regions, err := h.Service.Regions(r.Context(), core.RegionFilter{})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, region := range regions {
		if region.Name == name {
			writeJSON(w, http.StatusOK, map[string]any{"region": region})
			return
		}
	}
	writeError(w, http.StatusNotFound, "region not found")
}

func (h *Handler) handleLocate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pos, err := strconv.Atoi(q.Get("position"))
	if err != nil || pos < 1 || q.Get("organism") == "" || q.Get("contig") == "" {
		writeError(w, http.StatusBadRequest, "organism, contig and a positive position are required")
		return
	}
	regions, err := h.Service.Locate(r.Context(), core.Locus{OrganismID: q.Get("organism"), Contig: q.Get("contig"), Position: pos})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regions == nil {
		regions = []core.Region{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

// handleStream renders every region in the requested format. The body is
// buffered so that failures still produce an error status.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(firstNonEmpty(r.URL.Query().Get("format"), string(export.FormatTSV)))
	if err != nil {
		writeError(w, http.StatusNotAcceptable, err.Error())
		return
	}
	var buf strings.Builder
	if err := h.Service.ExportTo(r.Context(), &buf, f); err != nil {
		writeServiceError(w, err)
		return
	}
	filename := fmt.Sprintf("regions-%s.%s", time.Now().UTC().Format("20060102T150405Z"), f.Extension())
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = io.WriteString(w, buf.String())
}

type exportRequest struct {
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r)
		return
	}
	if !strings.HasPrefix(path, "/api/v1/exports/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/exports/")
	record, ok := h.Exports.GetExport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid export request payload")
		return
	}
	formats := make([]export.Format, 0, len(req.Formats))
	for _, raw := range req.Formats {
		f, err := export.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unsupported export format")
			return
		}
		formats = append(formats, f)
	}
	record, err := h.Exports.EnqueueExport(r.Context(), ExportInput{
		Formats:     formats,
		RequestedBy: firstNonEmpty(req.RequestedBy, "anonymous"),
		Reason:      req.Reason,
	})
	if errors.Is(err, ErrQueueFull) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// negotiateFormat picks JSON or TSV from the format query or Accept header.
func negotiateFormat(r *http.Request) export.Format {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), export.FormatTSV.ContentType()) {
			return export.FormatTSV
		}
		return export.FormatJSON
	}
	switch f := export.Format(wanted); f {
	case export.FormatTSV, export.FormatJSON:
		return f
	}
	return ""
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNoRegions):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, export.ErrUnresolvedWrap):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
