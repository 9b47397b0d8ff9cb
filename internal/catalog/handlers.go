package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/approval"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/events"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/logging"
)

// EntityTypeProduct is the approval gate's key for product mutations.
const EntityTypeProduct = "product"

type Handlers struct {
	DB       *pgxpool.Pool
	Products *Repository
	Gate     *approval.Gate
	Validate *validator.Validate
	Log      *logrus.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	items, err := h.Products.List(r.Context(), activeOnly)
	if err != nil {
		logging.LogError(h.Log, "catalog", "List", nil, err)
		api.WriteInternal(w)
		return
	}
	if items == nil {
		items = []Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product code")
		return
	}

	p, err := h.Products.GetByCode(r.Context(), code)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "product not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product code")
		return
	}

	if _, err := h.Products.GetByCode(r.Context(), code); err != nil {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "product not found")
		return
	}

	evs, err := events.ListByEntity(r.Context(), h.DB, EntityTypeProduct, code)
	if err != nil {
		api.WriteInternal(w)
		return
	}
	if evs == nil {
		evs = []events.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": evs})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid body")
		return
	}

	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := h.Validate.Struct(&p); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, validationMessage(err))
		return
	}

	// A create must not clobber an existing code; the unique constraint would
	// also catch it, but checking first gives a clean error.
	if _, err := h.Products.GetByCode(r.Context(), p.ProductCode); err == nil {
		api.WriteError(w, http.StatusConflict, "DUPLICATE_PRODUCT_CODE", "product code already exists")
		return
	}

	h.submit(w, r, approval.ActionCreate, "", body)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product code")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}

	h.submit(w, r, approval.ActionUpdate, code, body)
}

func (h Handlers) Archive(w http.ResponseWriter, r *http.Request) {
	h.submitLifecycle(w, r, approval.ActionArchive)
}

func (h Handlers) Restore(w http.ResponseWriter, r *http.Request) {
	h.submitLifecycle(w, r, approval.ActionRestore)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	h.submitLifecycle(w, r, approval.ActionDelete)
}

func (h Handlers) submitLifecycle(w http.ResponseWriter, r *http.Request, action approval.ActionType) {
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product code")
		return
	}
	h.submit(w, r, action, code, nil)
}

func (h Handlers) submit(w http.ResponseWriter, r *http.Request, action approval.ActionType, code string, body json.RawMessage) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	res, err := h.Gate.Submit(r.Context(), a, EntityTypeProduct, action, code, body)
	if err != nil {
		if errors.Is(err, approval.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "product not found")
			return
		}
		logging.LogError(h.Log, "catalog", "submit", map[string]any{
			"actionType":  action,
			"productCode": code,
		}, err)
		api.WriteInternal(w)
		return
	}

	status := http.StatusOK
	if !res.Applied {
		status = http.StatusAccepted
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return "validation failed"
}
