package approval

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
)

type Handlers struct {
	Approvals *Repository
	Gate      *Gate
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	status := StatusPending
	if s := r.URL.Query().Get("status"); s != "" {
		switch Status(s) {
		case StatusPending, StatusApproved, StatusRejected:
			status = Status(s)
		default:
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid status filter")
			return
		}
	}

	items, err := h.Approvals.List(r.Context(), status)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	if items == nil {
		items = []Pending{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	p, err := h.Approvals.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "pending change not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

type ReviewRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note,omitempty"`
}

func (h Handlers) Review(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing id")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}

	decision, err := ParseDecision(req.Decision)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "decision must be approved or rejected")
		return
	}

	reviewed, err := h.Gate.Review(r.Context(), a, id, decision, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "pending change not found")
		case errors.Is(err, ErrAlreadyReviewed):
			api.WriteError(w, http.StatusConflict, "ALREADY_REVIEWED", "pending change already reviewed")
		default:
			api.WriteInternal(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reviewed)
}
