package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/zvidmar/inventura/internal/imaging"
)

// maxUploadSize caps uploaded files at 5 MB.
const maxUploadSize = 5 << 20

// UploadHandler stores item photos under the public uploads directory.
type UploadHandler struct {
	Dir string
}

// Upload handles POST /api/upload: accepts a multipart "file" part, runs it
// through the imaging pipeline, and returns the served path.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		jsonError(w, http.StatusBadRequest, "file size exceeds 5MB limit")
		return
	}

	url, err := saveUpload(file, h.Dir)
	if err != nil {
		if errors.Is(err, errUnsupportedImage) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		jsonError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"url": url})
}

var errUnsupportedImage = errors.New("file must be a JPEG, PNG, or WebP image")

// saveUpload normalizes an uploaded image and writes it to dir under a
// collision-resistant name. It returns the path the file is served from.
func saveUpload(file multipart.File, dir string) (string, error) {
	data, err := imaging.Normalize(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUnsupportedImage, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return "/uploads/" + name, nil
}
