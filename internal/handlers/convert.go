package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/matda59/video-to-mp3-converter/internal/models"
	"github.com/matda59/video-to-mp3-converter/internal/status"
	"github.com/matda59/video-to-mp3-converter/internal/storage"
	"github.com/matda59/video-to-mp3-converter/internal/worker"
	"github.com/matda59/video-to-mp3-converter/web/components"
)

// Dispatcher enqueues conversion jobs for background execution.
type Dispatcher interface {
	Enqueue(job worker.Job) error
}

// ConvertHandler serves the conversion endpoints.
type ConvertHandler struct {
	history      *storage.HistoryRepository
	tracker      *status.Tracker
	dispatcher   Dispatcher
	uploadDir    string
	convertedDir string
}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler(history *storage.HistoryRepository, tracker *status.Tracker, dispatcher Dispatcher, uploadDir, convertedDir string) *ConvertHandler {
	return &ConvertHandler{
		history:      history,
		tracker:      tracker,
		dispatcher:   dispatcher,
		uploadDir:    uploadDir,
		convertedDir: convertedDir,
	}
}

// Index renders the conversion history page.
// GET /
func (h *ConvertHandler) Index(c echo.Context) error {
	jobs, err := h.history.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return render(c, components.Index(jobs))
}

// Upload stores the multipart file, records the job and queues the
// conversion. The response returns before the transcode finishes; clients
// poll /status/:id with the returned task id.
// POST /upload
func (h *ConvertHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		// A part with an empty filename parses as a form value, not a file.
		// That is what browsers send when no file was chosen.
		if form, ferr := c.MultipartForm(); ferr == nil && len(form.Value["file"]) > 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No selected file"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}

	filename := sanitizeFilename(fh.Filename)
	if filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No selected file"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer src.Close()

	// Same sanitized name uploaded twice overwrites the previous input.
	inputPath := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(inputPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if err := dst.Close(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	converted := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".mp3"
	outputPath := filepath.Join(h.convertedDir, converted)

	taskID, err := h.history.Insert(ctx, filename, converted, models.StatusInProgress)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	h.tracker.Set(taskID, models.LiveStatus{
		Status: models.StatusInProgress,
		Speed:  models.SpeedUnknown,
	})

	if err := h.dispatcher.Enqueue(worker.Job{TaskID: taskID, InputPath: inputPath, OutputPath: outputPath}); err != nil {
		// The id still resolves: clients polling it see a terminal error
		// instead of a job forever stuck at in_progress.
		h.tracker.Set(taskID, models.LiveStatus{
			Status: models.StatusError,
			Speed:  models.SpeedUnknown,
			Error:  err.Error(),
		})
		_, _ = h.history.UpdateStatus(ctx, taskID, models.StatusError)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Conversion started",
		"task_id": taskID,
	})
}

// Status reports the latest live progress for a task, or status unknown for
// ids nobody is tracking.
// GET /status/:id
func (h *ConvertHandler) Status(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid task id"})
	}
	return c.JSON(http.StatusOK, h.tracker.Get(id))
}

// Download streams a converted artifact as an attachment.
// GET /download/:filename
func (h *ConvertHandler) Download(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	path := filepath.Join(h.convertedDir, filename)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}
	return c.Attachment(path, filename)
}

// Delete removes a job's history row and its converted artifact. Either side
// may be gone already; only a storage failure is reported as an error.
// POST /delete/:id
func (h *ConvertHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}

	converted, err := h.history.Delete(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if converted != "" {
		if err := os.Remove(filepath.Join(h.convertedDir, converted)); err != nil && !os.IsNotExist(err) {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	h.tracker.Remove(id)
	return c.JSON(http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
