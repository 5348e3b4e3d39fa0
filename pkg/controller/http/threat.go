package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type cveBody struct {
	ID               string    `json:"id"`
	Score            float64   `json:"score"`
	Severity         string    `json:"severity"`
	AffectedSoftware []string  `json:"affected_software,omitempty"`
	PublishedAt      time.Time `json:"published_at"`
	ModifiedAt       time.Time `json:"modified_at"`
	Description      string    `json:"description,omitempty"`
}

type threatBody struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Origin       string    `json:"origin"`
	Description  string    `json:"description,omitempty"`
	Probability  float64   `json:"probability"`
	CVE          *cveBody  `json:"cve,omitempty"`
	AssetIDs     []string  `json:"asset_ids,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at,omitempty"`
}

type threatResponse struct {
	threatBody
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *threatBody) toModel() *model.Threat {
	assetIDs := make([]types.AssetID, 0, len(b.AssetIDs))
	for _, id := range b.AssetIDs {
		assetIDs = append(assetIDs, types.AssetID(id))
	}
	threat := &model.Threat{
		ID:           types.ThreatID(b.ID),
		Name:         b.Name,
		Type:         types.ThreatType(b.Type),
		Origin:       types.ThreatOrigin(b.Origin),
		Description:  b.Description,
		Probability:  b.Probability,
		AssetIDs:     assetIDs,
		DiscoveredAt: b.DiscoveredAt,
	}
	if b.CVE != nil {
		threat.CVE = &model.CVERecord{
			ID:               b.CVE.ID,
			Score:            b.CVE.Score,
			Severity:         types.CVESeverity(b.CVE.Severity),
			AffectedSoftware: b.CVE.AffectedSoftware,
			PublishedAt:      b.CVE.PublishedAt,
			ModifiedAt:       b.CVE.ModifiedAt,
			Description:      b.CVE.Description,
		}
	}
	return threat
}

func toThreatResponse(t *model.Threat) threatResponse {
	assetIDs := make([]string, 0, len(t.AssetIDs))
	for _, id := range t.AssetIDs {
		assetIDs = append(assetIDs, string(id))
	}
	resp := threatResponse{
		threatBody: threatBody{
			ID:           string(t.ID),
			Name:         t.Name,
			Type:         string(t.Type),
			Origin:       string(t.Origin),
			Description:  t.Description,
			Probability:  t.Probability,
			AssetIDs:     assetIDs,
			DiscoveredAt: t.DiscoveredAt,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.CVE != nil {
		resp.CVE = &cveBody{
			ID:               t.CVE.ID,
			Score:            t.CVE.Score,
			Severity:         string(t.CVE.Severity),
			AffectedSoftware: t.CVE.AffectedSoftware,
			PublishedAt:      t.CVE.PublishedAt,
			ModifiedAt:       t.CVE.ModifiedAt,
			Description:      t.CVE.Description,
		}
	}
	return resp
}

func toThreatResponses(threats []*model.Threat) []threatResponse {
	out := make([]threatResponse, len(threats))
	for i, t := range threats {
		out[i] = toThreatResponse(t)
	}
	return out
}

func (s *Server) createThreat(w http.ResponseWriter, r *http.Request) {
	var body threatBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.uc.Threat.Create(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toThreatResponse(created))
}

func (s *Server) getThreat(w http.ResponseWriter, r *http.Request) {
	threat, err := s.uc.Threat.Get(r.Context(), types.ThreatID(chi.URLParam(r, "threatID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toThreatResponse(threat))
}

func (s *Server) listThreats(w http.ResponseWriter, r *http.Request) {
	threats, err := s.uc.Threat.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toThreatResponses(threats))
}

func (s *Server) updateThreat(w http.ResponseWriter, r *http.Request) {
	var body threatBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	body.ID = chi.URLParam(r, "threatID")

	updated, err := s.uc.Threat.Update(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toThreatResponse(updated))
}

func (s *Server) deleteThreat(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Threat.Delete(r.Context(), types.ThreatID(chi.URLParam(r, "threatID"))); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type linkAssetsBody struct {
	AssetIDs []string `json:"asset_ids"`
}

func (s *Server) linkThreatAssets(w http.ResponseWriter, r *http.Request) {
	var body linkAssetsBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	assetIDs := make([]types.AssetID, 0, len(body.AssetIDs))
	for _, id := range body.AssetIDs {
		assetIDs = append(assetIDs, types.AssetID(id))
	}

	updated, err := s.uc.Threat.LinkAssets(r.Context(), types.ThreatID(chi.URLParam(r, "threatID")), assetIDs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toThreatResponse(updated))
}
