package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/eventdesk/server/internal/domain/events"
)

const multipartMemory = 8 << 20

func (h *EventsHandler) Images(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	images, err := h.Service.Images(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(images, newImageView))
}

func (h *EventsHandler) AllImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.Service.AllImages(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, mapViews(images, newImageView))
}

// AddImage accepts a multipart upload with an "image" part holding the
// payload and a "metadata" part holding the JSON metadata.
func (h *EventsHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.staffAccount(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, r, err, h.Env)
			return
		}
		writeError(w, r, events.ErrNoImageProvided, h.Env)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	data, err := imagePart(r.MultipartForm)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	meta, err := metadataPart(r.MultipartForm)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	image, err := h.Service.AddImage(r.Context(), id, accountID, data, meta)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, newImageView(*image))
}

func imagePart(form *multipart.Form) ([]byte, error) {
	files := form.File["image"]
	if len(files) == 0 {
		return nil, events.ErrNoImageProvided
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, events.ErrNoImageProvided
	}
	return data, nil
}

// metadataPart accepts the metadata either as a plain form field or as a
// file part, since clients differ in how they send JSON parts.
func metadataPart(form *multipart.Form) (events.ImageMetadata, error) {
	var raw []byte
	if values := form.Value["metadata"]; len(values) > 0 {
		raw = []byte(values[0])
	} else if files := form.File["metadata"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return events.ImageMetadata{}, err
		}
		defer f.Close()
		if raw, err = io.ReadAll(f); err != nil {
			return events.ImageMetadata{}, err
		}
	}
	if len(raw) == 0 {
		return events.ImageMetadata{}, events.ErrNoMetaDataProvided
	}
	var meta events.ImageMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return events.ImageMetadata{}, events.InvalidDataError{Field: "metadata", Value: string(raw)}
	}
	return meta, nil
}

// GetImage returns the image payload.
func (h *EventsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	image, data, err := h.Service.ImageData(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeBinary(w, image.MimeType, data)
}

func (h *EventsHandler) PatchImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	var patch events.ImagePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if err := h.Service.PatchImage(r.Context(), id, patch); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Image patched."})
}

func (h *EventsHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	removed, err := h.Service.DeleteImage(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	if !removed {
		writeError(w, r, events.ErrNoSuchImage, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "Image deleted."})
}
