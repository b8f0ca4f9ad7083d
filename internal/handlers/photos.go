package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
	"github.com/Alexander-D-Karpov/photogallery/internal/services"
)

// listAllPhotos is kept for existing clients; the unfiltered listing does
// not scale.
func (h *Handlers) listAllPhotos(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Deprecation", "true")
	h.writePhotos(w, r, repository.PhotoFilter{})
}

func (h *Handlers) listPhotos(w http.ResponseWriter, r *http.Request) {
	h.writePhotos(w, r, repository.PhotoFilter{
		Theme:      chi.URLParam(r, "theme"),
		Collection: chi.URLParam(r, "collection"),
	})
}

func (h *Handlers) listFavourites(w http.ResponseWriter, r *http.Request) {
	h.writePhotos(w, r, repository.PhotoFilter{FavouritesOnly: true})
}

func (h *Handlers) writePhotos(w http.ResponseWriter, r *http.Request, filter repository.PhotoFilter) {
	photos, err := h.catalog.ListPhotos(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, photos)
}

func (h *Handlers) photoDetail(w http.ResponseWriter, r *http.Request) {
	photo, err := h.catalog.GetPhoto(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, photo)
}

func (h *Handlers) downloadPhoto(w http.ResponseWriter, r *http.Request) {
	link, err := h.catalog.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, map[string]*string{"url": link})
}

func (h *Handlers) setFavourite(w http.ResponseWriter, r *http.Request) {
	favourite, err := strconv.ParseBool(r.URL.Query().Get("favorite"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "query parameter favorite must be true or false")
		return
	}
	if err := h.catalog.SetFavourite(r.Context(), chi.URLParam(r, "id"), favourite); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Favorite status updated")
}

func (h *Handlers) editPhoto(w http.ResponseWriter, r *http.Request) {
	var in services.PhotoInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	if err := h.catalog.UpdatePhoto(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Photo updated successfully")
}

func (h *Handlers) deletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeletePhoto(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Photo deleted successfully")
}

func (h *Handlers) upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.opts.MaxUploadBytes {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.opts.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	theme, collection := r.FormValue("theme"), r.FormValue("collection")
	if theme == "" || collection == "" {
		h.errorResponse(w, http.StatusBadRequest, "theme and collection are required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	id, err := h.ingest.Upload(r.Context(), services.Upload{
		Filename:   header.Filename,
		Reader:     file,
		Theme:      theme,
		Collection: collection,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("upload failed", "file", header.Filename, "theme", theme, "collection", collection, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Upload failed: "+err.Error())
		return
	}
	h.jsonResponse(w, map[string]string{"message": "Photo uploaded successfully", "id": id})
}
