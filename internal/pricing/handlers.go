package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
)

type Handlers struct {
	Products *catalog.Repository
	Rates    *rates.Repository
	Settings *charges.Repository
}

func (h Handlers) loadInputs(r *http.Request) (Inputs, error) {
	snap, err := h.Rates.Current(r.Context())
	if err != nil {
		return Inputs{}, err
	}
	cfg, err := h.Settings.LoadConfig(r.Context())
	if err != nil {
		return Inputs{}, err
	}
	tax, err := h.Settings.LoadTaxSettings(r.Context())
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{Rates: snap.Table, Tax: tax, Charges: cfg}, nil
}

type PreviewRequest struct {
	Product   json.RawMessage `json:"product"`
	Selection Selection       `json:"selection"`
}

// Preview prices an arbitrary product document without persisting anything.
// The admin UI uses it to show live numbers while a product is being edited.
func (h Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if len(req.Product) == 0 {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product")
		return
	}

	var p catalog.Product
	if err := json.Unmarshal(req.Product, &p); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid product document")
		return
	}

	in, err := h.loadInputs(r)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	breakdown := CalculateVariant(&p, req.Selection, in)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"breakdown": breakdown})
}

// CalculateProduct prices a stored product for one selection.
func (h Handlers) CalculateProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing product code")
		return
	}

	var sel Selection
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
			api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
			return
		}
	}

	p, err := h.Products.GetByCode(r.Context(), code)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, api.CodeNotFound, "product not found")
		return
	}

	in, err := h.loadInputs(r)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	breakdown := CalculateVariant(p, sel, in)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"breakdown": breakdown})
}

// Range returns the {min, max, default} price span across a configurator
// product's variant space.
func (h Handlers) Range(w http.ResponseWriter, r *http.Request) {
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

	in, err := h.loadInputs(r)
	if err != nil {
		api.WriteInternal(w)
		return
	}

	pr := ComputeRange(p, in)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"priceRange": pr})
}
