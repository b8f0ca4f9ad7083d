package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Alexander-D-Karpov/photogallery/internal/services"
)

func (h *Handlers) listThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.catalog.ListThemes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, themes)
}

func (h *Handlers) addTheme(w http.ResponseWriter, r *http.Request) {
	var in services.ThemeInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	id, err := h.catalog.CreateTheme(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, map[string]string{"message": "Theme added successfully", "id": id})
}

func (h *Handlers) editTheme(w http.ResponseWriter, r *http.Request) {
	var in services.ThemeInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	if err := h.catalog.UpdateTheme(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Theme updated successfully")
}

func (h *Handlers) deleteTheme(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteTheme(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Theme deleted successfully")
}

func (h *Handlers) listCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.catalog.ListCollections(r.Context(), "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, collections)
}

func (h *Handlers) listCollectionsByTheme(w http.ResponseWriter, r *http.Request) {
	collections, err := h.catalog.ListCollections(r.Context(), chi.URLParam(r, "theme"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, collections)
}

func (h *Handlers) addCollection(w http.ResponseWriter, r *http.Request) {
	var in services.CollectionInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	id, err := h.catalog.CreateCollection(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonResponse(w, map[string]string{"message": "Collection added successfully", "id": id})
}

func (h *Handlers) editCollection(w http.ResponseWriter, r *http.Request) {
	var in services.CollectionInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	if err := h.catalog.UpdateCollection(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Collection updated successfully")
}

func (h *Handlers) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCollection(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.message(w, "Collection deleted successfully")
}
