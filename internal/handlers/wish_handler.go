package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"wishwall/internal/models"
	"wishwall/internal/services"
	"wishwall/internal/storage"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// WishResponse is the public listing payload for one approved wish.
type WishResponse struct {
	ID       string `json:"id"`
	PhotoURL string `json:"photo_url"`
	Message  string `json:"message"`
}

type WishHandler struct {
	Service *services.ModerationService
	Blobs   storage.BlobStore
}

func NewWishHandler(service *services.ModerationService, blobs storage.BlobStore) *WishHandler {
	return &WishHandler{
		Service: service,
		Blobs:   blobs,
	}
}

// ListWishesHandler returns all approved wishes, newest first.
func (h *WishHandler) ListWishesHandler(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.Service.ListApproved(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to list approved wishes")
		http.Error(w, "Failed to fetch wishes", http.StatusInternalServerError)
		return
	}

	response := make([]WishResponse, 0, len(wishes))
	for _, wish := range wishes {
		response = append(response, WishResponse{
			ID:       wish.ID.Hex(),
			PhotoURL: "/uploads/" + wish.ImageRef,
			Message:  wish.Message,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// WishImageHandler streams a stored image by its opaque reference.
func (h *WishHandler) WishImageHandler(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	data, err := h.Blobs.Load(r.Context(), ref)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		logrus.WithError(err).WithField("ref", ref).Error("Failed to load image")
		http.Error(w, "Failed to load image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

// IndexHandler renders the gallery page; the page fetches /api/wishes itself.
func (h *WishHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		logrus.WithError(err).Error("Failed to render index page")
	}
}
