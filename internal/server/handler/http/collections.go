// Package http provides the HTTP surface consumed by the UI layer: CRUD per
// entity collection, settings access, login/logout and backup transfer.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/store"
)

// CollectionHandler serves list/create/update/delete for one entity
// collection. Prepare, when set, is applied to a decoded record before
// creation (used for defaulting, e.g. stamping a contact's creation date).
type CollectionHandler[T any] struct {
	Name    string
	Col     store.Collection[T]
	Prepare func(T) T
	Log     *zap.Logger
}

// Mount registers the collection routes on r:
//
//	GET    /         → List
//	POST   /         → Create
//	PUT    /         → Update (full record, matched by id)
//	DELETE /{id}     → Delete
func (h *CollectionHandler[T]) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *CollectionHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Col.List(r.Context())
	if err != nil {
		h.Log.Error("list failed", zap.String("collection", h.Name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *CollectionHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if h.Prepare != nil {
		rec = h.Prepare(rec)
	}
	created, err := h.Col.Create(r.Context(), rec)
	if err != nil {
		h.Log.Error("create failed", zap.String("collection", h.Name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CollectionHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Col.Update(r.Context(), rec); err != nil {
		h.Log.Error("update failed", zap.String("collection", h.Name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Col.Delete(r.Context(), id); err != nil {
		h.Log.Error("delete failed", zap.String("collection", h.Name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
