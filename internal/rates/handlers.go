package rates

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/audit"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
)

type Handlers struct {
	DB    *pgxpool.Pool
	Rates *Repository

	// OnPublished fires after a publish commits. The router wires the reprice
	// sweep here so every publish fans out to product pricing.
	OnPublished func(ctx context.Context)
}

func (h Handlers) GetCurrent(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Rates.Current(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

type PublishRequest struct {
	Rates Table `json:"rates"`
}

func (h Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if req.Rates.IsEmpty() {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "rate table is empty")
		return
	}
	for purity, rate := range req.Rates.Gold {
		if rate.IsNegative() {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "negative gold rate for "+purity)
			return
		}
	}
	for st, rate := range req.Rates.Silver {
		if rate.IsNegative() {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "negative silver rate for "+st)
			return
		}
	}
	for bucket, rate := range req.Rates.Diamond {
		if rate.IsNegative() {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "negative diamond rate for "+bucket)
			return
		}
	}
	if req.Rates.Platinum.PerGram.IsNegative() {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "negative platinum rate")
		return
	}

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := Publish(r.Context(), tx, req.Rates, a.ID); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, a.ID, "rates", nil, "RATES_PUBLISHED", map[string]any{
			"goldPurities":   len(req.Rates.Gold),
			"silverTypes":    len(req.Rates.Silver),
			"diamondBuckets": len(req.Rates.Diamond),
		})
		return nil
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}

	if h.OnPublished != nil {
		// Detached from the request: repricing the whole catalog can outlive
		// this response.
		go h.OnPublished(context.Background())
	}

	snap, err := h.Rates.Current(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
