package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobarin/vidstitch/internal/assembler"
	"github.com/bobarin/vidstitch/internal/audio"
	"github.com/bobarin/vidstitch/internal/fetch"
	"github.com/bobarin/vidstitch/internal/models"
	"github.com/bobarin/vidstitch/internal/queue"
)

type Handler struct {
	assembler *assembler.Assembler
	queue     *queue.Queue
	outputDir string
	workDir   string
	maxUpload int64
}

func NewHandler(asm *assembler.Assembler, q *queue.Queue, workDir, outputDir string, maxUpload int64) *Handler {
	return &Handler{
		assembler: asm,
		queue:     q,
		outputDir: outputDir,
		workDir:   workDir,
		maxUpload: maxUpload,
	}
}

// Combine handles POST /v1/combine — synchronous mode. The request blocks
// until assembly finishes and the finished video streams straight back;
// the output file and workspace are gone once the response is written.
func (h *Handler) Combine(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		discardSpill(req)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.New()
	log.Printf("[API] Sync combine %s: %d clips", jobID, len(req.Videos))

	outPath, err := h.assembler.Assemble(r.Context(), jobID.String(), assembler.FromModel(*req))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	defer func() {
		if rmErr := os.Remove(outPath); rmErr != nil {
			log.Printf("[API] Warning: failed to remove served output %s: %v", outPath, rmErr)
		}
	}()

	serveVideo(w, r, outPath, jobID.String())
}

// CombineAsync handles POST /v1/combine/async — detached mode. The job is
// enqueued and the caller gets the id back immediately; the result is
// fetched later via the download endpoint.
func (h *Handler) CombineAsync(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		discardSpill(req)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := uuid.New()
	if err := h.queue.EnqueueCombine(r.Context(), jobID, *req); err != nil {
		discardSpill(req)
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	log.Printf("[API] Enqueued combine job %s (%d clips)", jobID, len(req.Videos))

	respondJSON(w, http.StatusAccepted, models.CombineAsyncResponse{
		JobID:      jobID,
		Status:     "processing",
		OutputFile: h.assembler.OutputPath(jobID.String()),
	})
}

// Download handles GET /v1/download/{jobID}. The output file itself is the
// only persisted state, so "never existed" and "still processing" are
// indistinguishable here — both are a 404.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	path := filepath.Join(h.outputDir, jobID+".mp4")
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "Video not found or still processing")
		return
	}

	serveVideo(w, r, path, jobID)
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Video combiner API is running. POST /v1/combine to process videos and receive the combined file directly.",
	})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest reads a combine request from either a JSON body or a
// multipart form. The multipart form is how callers ship a narration
// recording as bytes instead of a URL.
func (h *Handler) decodeRequest(r *http.Request) (*models.CombineRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.decodeMultipart(r)
	}

	var req models.CombineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	// Spill paths come from uploads only, never from caller JSON
	req.NarrationFile = ""

	return &req, nil
}

func (h *Handler) decodeMultipart(r *http.Request) (*models.CombineRequest, error) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %v", err)
	}

	req := &models.CombineRequest{
		Videos:          r.MultipartForm.Value["videos"],
		BackgroundAudio: r.FormValue("background_audio"),
		Narration:       r.FormValue("narration"),
	}

	if v := r.FormValue("max_duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("max_duration must be an integer number of seconds")
		}
		req.MaxDuration = n
	}

	file, header, err := r.FormFile("narration_file")
	switch {
	case err == nil:
		defer file.Close()
		path, spillErr := h.spillUpload(file, header.Filename)
		if spillErr != nil {
			return nil, spillErr
		}
		req.NarrationFile = path
	case errors.Is(err, http.ErrMissingFile):
		// No upload — narration may still arrive as a URL
	default:
		return nil, fmt.Errorf("invalid narration_file: %v", err)
	}

	return req, nil
}

// spillUpload writes an uploaded narration track under the workspace root.
// The assembler adopts it into the job workspace, which then owns cleanup.
func (h *Handler) spillUpload(src multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".mp3"
	}

	dir := filepath.Join(h.workDir, "uploads")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(dir, uuid.New().String()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	_, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to save narration upload: %w", err)
	}

	return path, nil
}

// discardSpill removes a spilled narration upload for a request that will
// never reach the assembler. Once assembly starts, the job workspace owns
// the file instead.
func discardSpill(req *models.CombineRequest) {
	if req.NarrationFile == "" {
		return
	}
	if err := os.Remove(req.NarrationFile); err != nil && !os.IsNotExist(err) {
		log.Printf("[API] Warning: failed to remove narration upload %s: %v", req.NarrationFile, err)
	}
}

// statusFor maps the pipeline error taxonomy onto HTTP status classes:
// unreachable/bad inputs are the caller's fault, everything else is ours.
func statusFor(err error) int {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, audio.ErrNoAudioSource) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func serveVideo(w http.ResponseWriter, r *http.Request, path, jobID string) {
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="combined_video_%s.mp4"`, jobID))
	http.ServeFile(w, r, path)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
