package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/pipeline"
	"tradeshot/internal/tradelog"
	"tradeshot/internal/types"
)

const (
	maxUploadBytes  = 32 << 20
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

type handlers struct {
	proc      interfaces.Processor
	uploadDir string
	validate  *validator.Validate
}

func newHandlers(proc interfaces.Processor, uploadDir string) *handlers {
	return &handlers{proc: proc, uploadDir: uploadDir, validate: validator.New()}
}

type extractRequest struct {
	ImagePath string `json:"image_path" validate:"required"`
	SendEmail bool   `json:"send_email"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

type searchResponse struct {
	Results    []types.TradeRecord `json:"results"`
	TotalFound int                 `json:"total_found"`
}

type imageInfo struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// GET /api/health
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// POST /api/extract
func (h *handlers) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !h.decode(w, r, &req) {
		return
	}
	if info, err := os.Stat(req.ImagePath); err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "image not found: "+req.ImagePath)
		return
	}
	writeJSON(w, http.StatusOK, h.proc.ProcessSingle(r.Context(), req.ImagePath, req.SendEmail))
}

// POST /api/extract/upload?send_email=true, multipart field "file".
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		writeError(w, http.StatusBadRequest, "file must be an image")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !pipeline.IsImage(ext) {
		ext = ".png"
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		logger.ErrorWithErr(r.Context(), "Upload dir unusable", err, "dir", h.uploadDir)
		writeError(w, http.StatusInternalServerError, "upload directory unavailable")
		return
	}
	dst := filepath.Join(h.uploadDir, uuid.NewString()+ext)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not save upload")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dst)
		writeError(w, http.StatusBadRequest, "upload interrupted")
		return
	}
	if err := out.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save upload")
		return
	}

	writeJSON(w, http.StatusOK, h.proc.ProcessSingle(r.Context(), dst, queryBool(r, "send_email")))
}

// POST /api/search
func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decode(w, r, &req) {
		return
	}
	recs, err := h.proc.SearchLogs(req.Query, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if recs == nil {
		recs = []types.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: recs, TotalFound: len(recs)})
}

// GET /api/trades/latest
func (h *handlers) latest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.proc.LatestTrade()
	if errors.Is(err, tradelog.ErrNoTrades) {
		writeError(w, http.StatusNotFound, tradelog.ErrNoTrades.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read trade log")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/trades/{id}
func (h *handlers) trade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := h.proc.Trade(r.Context(), id)
	if errors.Is(err, tradelog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "trade not found: "+id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read trade")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/stats
func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.proc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/trade-log?limit=N, newest first.
func (h *handlers) tradeLog(w http.ResponseWriter, r *http.Request) {
	recs, err := h.proc.SearchLogs("", queryInt(r, "limit", defaultLogLimit, maxLogLimit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read trade log")
		return
	}
	if recs == nil {
		recs = []types.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": recs, "total": len(recs)})
}

// GET /api/images lists uploaded screenshots, newest first.
func (h *handlers) images(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.uploadDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusInternalServerError, "could not list images")
		return
	}
	out := []imageInfo{}
	for _, e := range entries {
		if e.IsDir() || !pipeline.IsImage(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, imageInfo{
			Name:     e.Name(),
			URL:      "/uploads/" + e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	writeJSON(w, http.StatusOK, map[string]any{"images": out, "total": len(out)})
}
