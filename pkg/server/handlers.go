package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/blockseg/pkg/buildinfo"
	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/render"
	"github.com/matzehuels/blockseg/pkg/segment"
	"github.com/matzehuels/blockseg/pkg/store"
)

// SegmentResponse is the JSON body returned by POST /v1/segment.
type SegmentResponse struct {
	Run       *store.Run        `json:"run"`
	Labels    *render.LabelMap  `json:"labels"`
	Segment   segment.Stats     `json:"segment"`
	Artifacts map[string][]byte `json:"artifacts"`
	Cached    cacheStatus       `json:"cached"`
}

type cacheStatus struct {
	Segment bool `json:"segment"`
	Render  bool `json:"render"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseSegmentRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	output := r.URL.Query().Get("output")
	if output != "" {
		if err := pipeline.ValidateFormat(output); err != nil {
			s.writeError(w, err)
			return
		}
		if !contains(opts.Formats, output) {
			opts.Formats = append(opts.Formats, output)
		}
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	run := store.NewRun(opts, result)
	if s.store != nil {
		if err := s.store.Save(r.Context(), run); err != nil {
			s.logger.Warn("failed to save run", "id", run.ID, "error", err)
		}
	}

	if output != "" {
		w.Header().Set("Content-Type", contentType(output))
		w.Header().Set("X-Run-ID", run.ID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[output])
		return
	}

	writeJSON(w, http.StatusOK, SegmentResponse{
		Run:       run,
		Labels:    result.Labels,
		Segment:   result.Segment,
		Artifacts: result.Artifacts,
		Cached: cacheStatus{
			Segment: result.CacheInfo.SegmentHit,
			Render:  result.CacheInfo.RenderHit,
		},
	})
}

// parseSegmentRequest reads the multipart upload into pipeline options.
func (s *Server) parseSegmentRequest(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	opts := s.defaults.Clone()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}

	if raw := r.FormValue("options"); raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing image file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image file")
	}
	opts.Data = data
	opts.Input = ""
	if opts.Name == "" {
		opts.Name = header.Filename
	}
	return opts, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run store disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run store disabled"))
		return
	}
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatAnnotated:
		return imageio.PNG.ContentType()
	default:
		return imageio.Format(format).ContentType()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
