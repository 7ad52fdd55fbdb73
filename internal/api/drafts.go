package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Qualify/internal/hermes"
	"github.com/MikeSquared-Agency/Qualify/internal/intake"
	"github.com/MikeSquared-Agency/Qualify/internal/metrics"
	"github.com/MikeSquared-Agency/Qualify/internal/store"
)

// backupVersion tags the backup document format.
const backupVersion = "1"

type DraftsHandler struct {
	store  store.Store
	hermes hermes.Client
	logger *slog.Logger
}

func NewDraftsHandler(s store.Store, h hermes.Client, logger *slog.Logger) *DraftsHandler {
	return &DraftsHandler{store: s, hermes: h, logger: logger}
}

type draftRequest struct {
	Label string         `json:"label"`
	Data  map[string]any `json:"data"`
}

type backupDocument struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Drafts     []*store.Draft `json:"drafts"`
}

func (h *DraftsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, uuid.Nil, http.StatusCreated)
}

func (h *DraftsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid draft id"})
		return
	}

	existing, err := h.store.GetDraft(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
		return
	}
	h.save(w, r, id, http.StatusOK)
}

func (h *DraftsHandler) save(w http.ResponseWriter, r *http.Request, id uuid.UUID, status int) {
	var req draftRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	if err := intake.CheckShape(req.Data); err != nil {
		writeBadRequest(w, err)
		return
	}

	d := &store.Draft{ID: id, Label: req.Label, Data: req.Data}
	if err := h.store.SaveDraft(r.Context(), d); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	metrics.DraftsSaved.Inc()

	if err := h.hermes.Publish(hermes.SubjectDraftSaved(d.ID.String()), hermes.DraftEvent{
		DraftID:   d.ID.String(),
		Action:    hermes.DraftSaved,
		Timestamp: d.UpdatedAt,
	}); err != nil {
		h.logger.Warn("failed to publish event", "subject", hermes.SubjectDraftSaved(d.ID.String()), "error", err)
	}

	writeJSON(w, status, d)
}

func (h *DraftsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	drafts, err := h.store.ListDrafts(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if drafts == nil {
		drafts = []*store.Draft{}
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (h *DraftsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid draft id"})
		return
	}

	d, err := h.store.GetDraft(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if d == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DraftsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid draft id"})
		return
	}

	if err := h.store.DeleteDraft(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "draft not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := h.hermes.Publish(hermes.SubjectDraftDeleted(id.String()), hermes.DraftEvent{
		DraftID:   id.String(),
		Action:    hermes.DraftDeleted,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		h.logger.Warn("failed to publish event", "subject", hermes.SubjectDraftDeleted(id.String()), "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Backup returns every stored draft as one document that Restore accepts.
func (h *DraftsHandler) Backup(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.store.AllDrafts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if drafts == nil {
		drafts = []*store.Draft{}
	}
	writeJSON(w, http.StatusOK, backupDocument{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
		Drafts:     drafts,
	})
}

func (h *DraftsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var doc backupDocument
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32*maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		writeBadRequest(w, err)
		return
	}
	if doc.Version != backupVersion {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported backup version: " + doc.Version})
		return
	}
	for _, d := range doc.Drafts {
		if d == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "backup contains an empty draft"})
			return
		}
		if d.ID == uuid.Nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "backup contains a draft without id"})
			return
		}
		if d.Data == nil {
			continue
		}
		if err := intake.CheckShape(d.Data); err != nil {
			writeBadRequest(w, err)
			return
		}
	}

	n, err := h.store.RestoreDrafts(r.Context(), doc.Drafts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.logger.Info("drafts restored", "count", n)
	writeJSON(w, http.StatusOK, map[string]int{"restored": n})
}
