package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Randall0514/DormEase/internal/auth"
	"github.com/Randall0514/DormEase/internal/store"
	"github.com/Randall0514/DormEase/internal/upload"
)

const (
	maxPhotoCount = 10
	maxPhotoSize  = 5 << 20 // 5MB per photo
)

type DormHandler struct {
	dormStore *store.DormStore
	uploads   *upload.Store
	logger    *slog.Logger
}

func NewDormHandler(ds *store.DormStore, uploads *upload.Store, logger *slog.Logger) *DormHandler {
	return &DormHandler{
		dormStore: ds,
		uploads:   uploads,
		logger:    logger,
	}
}

// GetMine returns the authenticated user's dorm profile, or a null dorm when
// setup has not been completed yet — absence is a normal outcome.
func (h *DormHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dorm, err := h.dormStore.GetByUserID(ac.UserID)
	if err != nil {
		h.logger.Error("get dorm", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dorm": dorm})
}

// Save creates or replaces the user's dorm profile from the multipart setup
// form. Newly uploaded photos are written to disk first; the store then
// reconciles their URLs against any previously saved list.
func (h *DormHandler) Save(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoCount * maxPhotoSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	fields := store.DormFields{
		DormName: strings.TrimSpace(r.FormValue("dormName")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
		Price:    strings.TrimSpace(r.FormValue("price")),
		Address:  strings.TrimSpace(r.FormValue("address")),
	}
	capacityStr := strings.TrimSpace(r.FormValue("capacity"))

	if fields.DormName == "" || fields.Email == "" || fields.Phone == "" ||
		fields.Price == "" || fields.Address == "" || capacityStr == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	capacity, err := strconv.Atoi(capacityStr)
	if err != nil || capacity < 1 {
		writeMessage(w, http.StatusBadRequest, "Capacity must be a positive number")
		return
	}
	fields.RoomCapacity = capacity

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["photos"]
	}
	if len(files) > maxPhotoCount {
		writeMessage(w, http.StatusBadRequest, "A maximum of 10 photos is allowed")
		return
	}

	var photoURLs []string
	for _, f := range files {
		if f.Size > maxPhotoSize {
			writeMessage(w, http.StatusBadRequest, "Each photo must be 5MB or smaller")
			return
		}
		src, err := f.Open()
		if err != nil {
			h.logger.Error("open uploaded photo", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to save photos")
			return
		}
		url, err := h.uploads.SaveDormPhoto(ac.UserID, f.Filename, src)
		src.Close()
		if err != nil {
			h.logger.Error("save uploaded photo", "error", err)
			writeMessage(w, http.StatusInternalServerError, "Failed to save photos")
			return
		}
		photoURLs = append(photoURLs, url)
	}

	dorm, err := h.dormStore.Upsert(ac.UserID, fields, photoURLs)
	if err != nil {
		h.logger.Error("upsert dorm", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Dorm saved successfully",
		"dorm":    dorm,
	})
}
