package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type vulnerabilityBody struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category,omitempty"`
	Description    string   `json:"description,omitempty"`
	Exploitability float64  `json:"exploitability"`
	AttackVectors  []string `json:"attack_vectors,omitempty"`
	AssetIDs       []string `json:"asset_ids,omitempty"`
	ThreatIDs      []string `json:"threat_ids,omitempty"`
	State          string   `json:"state,omitempty"`
}

type vulnerabilityResponse struct {
	vulnerabilityBody
	DetectedAt  time.Time  `json:"detected_at"`
	MitigatedAt *time.Time `json:"mitigated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (b *vulnerabilityBody) toModel() *model.Vulnerability {
	assetIDs := make([]types.AssetID, 0, len(b.AssetIDs))
	for _, id := range b.AssetIDs {
		assetIDs = append(assetIDs, types.AssetID(id))
	}
	threatIDs := make([]types.ThreatID, 0, len(b.ThreatIDs))
	for _, id := range b.ThreatIDs {
		threatIDs = append(threatIDs, types.ThreatID(id))
	}
	return &model.Vulnerability{
		ID:             types.VulnerabilityID(b.ID),
		Name:           b.Name,
		Category:       b.Category,
		Description:    b.Description,
		Exploitability: b.Exploitability,
		AttackVectors:  b.AttackVectors,
		AssetIDs:       assetIDs,
		ThreatIDs:      threatIDs,
		State:          types.VulnerabilityState(b.State),
	}
}

func toVulnerabilityResponse(v *model.Vulnerability) vulnerabilityResponse {
	assetIDs := make([]string, 0, len(v.AssetIDs))
	for _, id := range v.AssetIDs {
		assetIDs = append(assetIDs, string(id))
	}
	threatIDs := make([]string, 0, len(v.ThreatIDs))
	for _, id := range v.ThreatIDs {
		threatIDs = append(threatIDs, string(id))
	}
	return vulnerabilityResponse{
		vulnerabilityBody: vulnerabilityBody{
			ID:             string(v.ID),
			Name:           v.Name,
			Category:       v.Category,
			Description:    v.Description,
			Exploitability: v.Exploitability,
			AttackVectors:  v.AttackVectors,
			AssetIDs:       assetIDs,
			ThreatIDs:      threatIDs,
			State:          string(v.State),
		},
		DetectedAt:  v.DetectedAt,
		MitigatedAt: v.MitigatedAt,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toVulnerabilityResponses(vulns []*model.Vulnerability) []vulnerabilityResponse {
	out := make([]vulnerabilityResponse, len(vulns))
	for i, v := range vulns {
		out[i] = toVulnerabilityResponse(v)
	}
	return out
}

func (s *Server) createVulnerability(w http.ResponseWriter, r *http.Request) {
	var body vulnerabilityBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.uc.Vulnerability.Create(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toVulnerabilityResponse(created))
}

func (s *Server) getVulnerability(w http.ResponseWriter, r *http.Request) {
	vuln, err := s.uc.Vulnerability.Get(r.Context(), types.VulnerabilityID(chi.URLParam(r, "vulnID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toVulnerabilityResponse(vuln))
}

func (s *Server) listVulnerabilities(w http.ResponseWriter, r *http.Request) {
	vulns, err := s.uc.Vulnerability.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toVulnerabilityResponses(vulns))
}

func (s *Server) updateVulnerability(w http.ResponseWriter, r *http.Request) {
	var body vulnerabilityBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	body.ID = chi.URLParam(r, "vulnID")

	updated, err := s.uc.Vulnerability.Update(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toVulnerabilityResponse(updated))
}

func (s *Server) deleteVulnerability(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Vulnerability.Delete(r.Context(), types.VulnerabilityID(chi.URLParam(r, "vulnID"))); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) mitigateVulnerability(w http.ResponseWriter, r *http.Request) {
	mitigated, err := s.uc.Vulnerability.Mitigate(r.Context(), types.VulnerabilityID(chi.URLParam(r, "vulnID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toVulnerabilityResponse(mitigated))
}
