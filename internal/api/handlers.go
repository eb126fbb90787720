package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pedigraph/pedigraph/pkg/buildinfo"
	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/pipeline"
)

// layoutRequest is the body of POST /v1/layout and /v1/render.
type layoutRequest struct {
	Snapshot kin.Snapshot     `json:"snapshot"`
	Options  pipeline.Options `json:"options"`
}

// contentTypes maps output formats to their MIME types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

// handleLayout computes a layout for a snapshot posted in the request body.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	res, err := s.runner.ComputeLayout(r.Context(), req.Snapshot, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRender renders a snapshot posted in the request body. The first
// requested format is returned as the response body with its content type.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	s.render(w, r, req.Snapshot, req.Options)
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": recs})
}

func (s *Server) handleSnapshotPut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, err := kin.ReadSnapshot(r.Body)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot"))
		return
	}

	rec, err := s.store.Save(r.Context(), name, snap)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, rec, err := s.store.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": rec, "snapshot": snap})
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.store.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSnapshotLayout computes a layout for a stored snapshot. Layout
// options come from query parameters.
func (s *Server) handleSnapshotLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, _, err := s.store.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.ComputeLayout(r.Context(), snap, optionsFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSnapshotRender renders a stored snapshot. Render options come from
// query parameters.
func (s *Server) handleSnapshotRender(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	snap, _, err := s.store.Load(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, r, snap, optionsFromQuery(r))
}

// render executes the pipeline and writes the first requested format.
func (s *Server) render(w http.ResponseWriter, r *http.Request, snap kin.Snapshot, opts pipeline.Options) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), snap, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Snapshot-Hash", result.SnapshotHash)
	w.Header().Set("X-Layout-Hash", result.LayoutHash)
	w.Header().Set("X-Cache-Layout", strconv.FormatBool(result.CacheInfo.LayoutHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// optionsFromQuery builds pipeline options from URL query parameters.
// Unknown or malformed numeric parameters fall back to defaults.
func optionsFromQuery(r *http.Request) pipeline.Options {
	q := r.URL.Query()
	opts := pipeline.Options{
		FocalID:  q.Get("focal"),
		View:     q.Get("view"),
		Detailed: q.Get("detailed") == "true",
		Refresh:  q.Get("refresh") == "true",
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if v, err := strconv.ParseFloat(q.Get("card_width"), 64); err == nil {
		opts.CardWidth = v
	}
	if v, err := strconv.ParseFloat(q.Get("card_height"), 64); err == nil {
		opts.CardHeight = v
	}
	if v, err := strconv.ParseFloat(q.Get("v_space"), 64); err == nil {
		opts.VSpace = v
	}
	if v, err := strconv.ParseFloat(q.Get("side_offset"), 64); err == nil {
		opts.SideOffset = v
	}
	return opts
}
