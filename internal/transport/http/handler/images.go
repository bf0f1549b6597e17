package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/easymotion-api/internal/application/image"
	"github.com/easymotion-api/internal/transport/http/middleware"
)

const maxUploadSize = 10 << 20 // 10 MiB

type ImageHandler struct {
	svc image.Service
}

func NewImageHandler(svc image.Service) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Upload takes a multipart form with an "image" part and attaches the
// picture to the course from the URL.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing claims")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	img, err := h.svc.Upload(r.Context(), image.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		CourseID:    chi.URLParam(r, "id"),
		UploaderID:  claims.UserID,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *ImageHandler) ListByCourse(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.svc.ListByCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}

func (h *ImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	body, img, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", img.Type)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "image deleted"})
}
