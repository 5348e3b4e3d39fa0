package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type valuationBody struct {
	Confidentiality float64 `json:"confidentiality"`
	Integrity       float64 `json:"integrity"`
	Availability    float64 `json:"availability"`
	Authenticity    float64 `json:"authenticity"`
	Traceability    float64 `json:"traceability"`
}

type assetBody struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	Owner         string        `json:"owner"`
	Custodian     string        `json:"custodian,omitempty"`
	Location      string        `json:"location,omitempty"`
	Valuation     valuationBody `json:"valuation"`
	EconomicValue float64       `json:"economic_value"`
	Dependencies  []string      `json:"dependencies,omitempty"`
	Services      []string      `json:"services,omitempty"`
}

type assetResponse struct {
	assetBody
	Criticality float64   `json:"criticality"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *assetBody) toModel() *model.Asset {
	deps := make([]types.AssetID, 0, len(b.Dependencies))
	for _, d := range b.Dependencies {
		deps = append(deps, types.AssetID(d))
	}
	return &model.Asset{
		ID:        types.AssetID(b.ID),
		Name:      b.Name,
		Type:      types.AssetType(b.Type),
		Owner:     b.Owner,
		Custodian: b.Custodian,
		Location:  b.Location,
		Valuation: model.Valuation{
			Confidentiality: b.Valuation.Confidentiality,
			Integrity:       b.Valuation.Integrity,
			Availability:    b.Valuation.Availability,
			Authenticity:    b.Valuation.Authenticity,
			Traceability:    b.Valuation.Traceability,
		},
		EconomicValue: b.EconomicValue,
		Dependencies:  deps,
		Services:      b.Services,
	}
}

func toAssetResponse(a *model.Asset) assetResponse {
	deps := make([]string, 0, len(a.Dependencies))
	for _, d := range a.Dependencies {
		deps = append(deps, string(d))
	}
	return assetResponse{
		assetBody: assetBody{
			ID:        string(a.ID),
			Name:      a.Name,
			Type:      string(a.Type),
			Owner:     a.Owner,
			Custodian: a.Custodian,
			Location:  a.Location,
			Valuation: valuationBody{
				Confidentiality: a.Valuation.Confidentiality,
				Integrity:       a.Valuation.Integrity,
				Availability:    a.Valuation.Availability,
				Authenticity:    a.Valuation.Authenticity,
				Traceability:    a.Valuation.Traceability,
			},
			EconomicValue: a.EconomicValue,
			Dependencies:  deps,
			Services:      a.Services,
		},
		Criticality: a.Criticality(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toAssetResponses(assets []*model.Asset) []assetResponse {
	out := make([]assetResponse, len(assets))
	for i, a := range assets {
		out[i] = toAssetResponse(a)
	}
	return out
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var body assetBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.uc.Asset.Create(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toAssetResponse(created))
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := s.uc.Asset.Get(r.Context(), types.AssetID(chi.URLParam(r, "assetID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAssetResponse(asset))
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.uc.Asset.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAssetResponses(assets))
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	var body assetBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	body.ID = chi.URLParam(r, "assetID")

	updated, err := s.uc.Asset.Update(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAssetResponse(updated))
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Asset.Delete(r.Context(), types.AssetID(chi.URLParam(r, "assetID"))); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAssetDependents(w http.ResponseWriter, r *http.Request) {
	dependents, err := s.uc.Asset.Dependents(r.Context(), types.AssetID(chi.URLParam(r, "assetID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toAssetResponses(dependents))
}
