package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/lousa/pkg/board"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/aretw0/lousa/pkg/equiv"
	"github.com/aretw0/lousa/pkg/input"
	"github.com/aretw0/lousa/pkg/relay"
	"github.com/aretw0/lousa/pkg/report"
	"github.com/aretw0/lousa/pkg/settings"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is the part of a multipart body kept in memory before spilling to disk.
const multipartMemory = 8 << 20

type checkRequest struct {
	LHS string `json:"lhs"`
	RHS string `json:"rhs"`
}

type checkResponse struct {
	Verdict  string `json:"verdict"`
	Residual string `json:"residual,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message"`
}

type solveResponse struct {
	Content    string `json:"content"`
	HTML       string `json:"html,omitempty"`
	SolutionID string `json:"solution_id,omitempty"`
}

type boardState struct {
	ID        string `json:"id"`
	Snapshots int    `json:"snapshots"`
	Undone    *bool  `json:"undone,omitempty"`
}

type strokeRequest struct {
	Points []input.PointerEvent `json:"points"`
	Rect   input.Rect           `json:"rect"`
	Width  float64              `json:"width"`
	Mode   string               `json:"mode"`
}

// Solve handles the POST /api/solve request.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	var req relay.Request
	if !s.decodeJSON(w, r, "SolveRequest", &req, false) {
		return
	}
	resp, err := s.solver.Solve(r.Context(), req)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relay.Response{Content: resp.Content})
}

// Check handles the POST /api/check request.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decodeJSON(w, r, "CheckRequest", &req, false) {
		return
	}
	v := equiv.Check(req.LHS, req.RHS)
	if s.metrics != nil {
		s.metrics.ObserveCheck(v.Kind.String())
	}
	writeJSON(w, http.StatusOK, checkResponse{
		Verdict:  v.Kind.String(),
		Residual: v.Residual,
		Reason:   v.Reason,
		Message:  v.Message(),
	})
}

// GetSettings handles the GET /api/settings request.
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	cur, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

// PutSettings handles the PUT /api/settings request. Absent fields keep their stored value.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	var update map[string]any
	if !s.decodeJSON(w, r, "Settings", &update, false) {
		return
	}
	cur, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	next, err := settings.FromMap(cur, update)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings", err.Error())
		return
	}
	if err := s.settings.Save(r.Context(), next); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// ClearSettings handles the DELETE /api/settings request.
func (s *Server) ClearSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Clear(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBoards handles the GET /api/boards request.
func (s *Server) ListBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.boards.List())
}

// CreateBoard handles the POST /api/boards request.
func (s *Server) CreateBoard(w http.ResponseWriter, r *http.Request) {
	id, b, err := s.boards.Create()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, boardState{ID: id, Snapshots: b.Snapshots()})
}

func (s *Server) board(w http.ResponseWriter, r *http.Request) (string, *board.Board, bool) {
	id := chi.URLParam(r, "id")
	b, err := s.boards.Get(id)
	if err != nil {
		s.writeFailure(w, err)
		return id, nil, false
	}
	return id, b, true
}

// DeleteBoard handles the DELETE /api/boards/{id} request.
func (s *Server) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.boards.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddStroke handles the POST /api/boards/{id}/strokes request.
// Points are in display space and are rescaled through rect.
func (s *Server) AddStroke(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req strokeRequest
	if !s.decodeJSON(w, r, "StrokeRequest", &req, false) {
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	width := req.Width
	if width == 0 {
		width = domain.DefaultPenWidth
	}
	stroke := domain.Stroke{Width: width, Mode: mode, Points: make([]domain.Point, 0, len(req.Points))}
	for _, ev := range req.Points {
		p, err := input.ToBuffer(ev, req.Rect)
		if err != nil {
			s.writeFailure(w, err)
			return
		}
		stroke.Points = append(stroke.Points, p)
	}

	if err := b.Stroke(stroke); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardState{ID: id, Snapshots: b.Snapshots()})
}

// ClearBoard handles the POST /api/boards/{id}/clear request.
func (s *Server) ClearBoard(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	if err := b.Clear(); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardState{ID: id, Snapshots: b.Snapshots()})
}

// UndoBoard handles the POST /api/boards/{id}/undo request.
func (s *Server) UndoBoard(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	undone, err := b.Undo()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardState{ID: id, Snapshots: b.Snapshots(), Undone: &undone})
}

// UploadImage handles the POST /api/boards/{id}/image request.
// The body is either the raw image or a multipart form with a "file" part.
func (s *Server) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}

	data, ok := readImageBody(w, r)
	if !ok {
		return
	}

	if err := b.Upload(r.Context(), bytes.NewReader(data)).Wait(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardState{ID: id, Snapshots: b.Snapshots()})
}

// readImageBody reads the whole image before decoding starts, so nothing touches the
// request after the handler returns. Multipart parts are bounded the same way.
func readImageBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeBodyError(w, "invalid multipart body", err)
			return nil, false
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file part", err.Error())
			return nil, false
		}
		defer file.Close()
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		writeBodyError(w, "unreadable image body", err)
		return nil, false
	}
	return data, true
}

func writeBodyError(w http.ResponseWriter, msg string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "image too large", err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, msg, err.Error())
}

// CaptureFrame handles the POST /api/boards/{id}/capture request.
// When url is given a snapshot camera at that URL replaces the open one. The URL must
// be one of the configured cameras; with exactly one configured it may be omitted.
func (s *Server) CaptureFrame(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if !s.decodeJSON(w, r, "", &req, true) {
		return
	}
	if req.URL == "" && !b.CameraOpen() && len(s.cameras) == 1 {
		for u := range s.cameras {
			req.URL = u
		}
	}
	if req.URL != "" {
		if !s.cameras[req.URL] {
			writeError(w, http.StatusBadRequest, "camera url not allowed", req.URL)
			return
		}
		if err := b.OpenCamera(r.Context(), input.NewHTTPCamera(req.URL)); err != nil {
			s.writeFailure(w, err)
			return
		}
	}
	if err := b.Capture(r.Context()).Wait(r.Context()); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardState{ID: id, Snapshots: b.Snapshots()})
}

// ExportImage handles the GET /api/boards/{id}/image.png request.
func (s *Server) ExportImage(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.board(w, r)
	if !ok {
		return
	}
	data, err := report.PNG(b)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// SolveBoard handles the POST /api/boards/{id}/solve request.
func (s *Server) SolveBoard(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	cfg, err := s.settings.Load(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	img, err := b.Export()
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	resp, err := s.solver.Solve(r.Context(), relay.Request{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		DataURL:     relay.DataURL(img),
		Prompt:      cfg.Prompt,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	out := solveResponse{Content: resp.Content}
	if html, err := report.HTML(resp.Content); err == nil {
		out.HTML = html
	} else {
		s.logger.Warn("failed to render solution", "error", err)
	}
	if s.archive != nil {
		// Archive failures are logged; the answer is still returned.
		solID, err := s.archive.Archive(context.WithoutCancel(r.Context()), domain.Solution{
			BoardID:   id,
			Provider:  cfg.Provider,
			Model:     cfg.Model,
			Prompt:    cfg.Prompt,
			Content:   resp.Content,
			Image:     img,
			CreatedAt: time.Now(),
		})
		if err != nil {
			s.logger.Warn("failed to archive solution", "board", id, "error", err)
		} else {
			out.SolutionID = solID
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ReportPDF handles the POST /api/boards/{id}/report.pdf request.
func (s *Server) ReportPDF(w http.ResponseWriter, r *http.Request) {
	id, b, ok := s.board(w, r)
	if !ok {
		return
	}
	var req struct {
		Solution string `json:"solution"`
	}
	if !s.decodeJSON(w, r, "", &req, true) {
		return
	}
	img, err := b.Export()
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.PDF(&buf, report.Report{Image: img, Timestamp: time.Now(), Solution: req.Solution}); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="board-`+id+`.pdf"`)
	w.Write(buf.Bytes())
}

// ListSolutions handles the GET /api/solutions request.
func (s *Server) ListSolutions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.archive.List(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetSolution handles the GET /api/solutions/{id} request.
func (s *Server) GetSolution(w http.ResponseWriter, r *http.Request) {
	sol, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sol)
}

// RecentAudit handles the GET /api/audit request.
func (s *Server) RecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		limit = n
	}
	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
