package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
)

// Cloudinary exported for testing purposes. Reads its credentials from the
// CLOUDINARY_URL environment variable.
type Cloudinary struct{}

type uploadRequest struct {
	// File is a data URI, remote URL, or base64 payload accepted by cloudinary
	File   string `json:"file"`
	Folder string `json:"folder"`
}

// UploadHandler uploads an avatar or document image to cloudinary and returns
// its delivery URL.
func (c Cloudinary) UploadHandler(w http.ResponseWriter, r *http.Request) {
	var body uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.File == "" {
		config.ErrorStatus("file is required", http.StatusBadRequest, w, errors.New("empty file"))
		return
	}
	if body.Folder == "" {
		body.Folder = "healx"
	}

	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("cloudinary is not configured", http.StatusInternalServerError, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := cld.Upload.Upload(ctx, body.File, uploader.UploadParams{Folder: body.Folder})
	if err != nil {
		config.ErrorStatus("failed to upload file", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{
		"publicId": result.PublicID,
		"url":      result.SecureURL,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
