package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

const defaultTopRisks = 10

type calculationBody struct {
	InherentRisk        float64 `json:"inherent_risk"`
	AdjustedProbability float64 `json:"adjusted_probability"`
	ComputedImpact      float64 `json:"computed_impact"`
	Exposure            float64 `json:"exposure"`
	TemporalFactor      float64 `json:"temporal_factor"`
}

type riskResponse struct {
	ID              string          `json:"id"`
	AssetID         string          `json:"asset_id"`
	ThreatID        string          `json:"threat_id"`
	VulnerabilityID string          `json:"vulnerability_id,omitempty"`
	Calculation     calculationBody `json:"calculation"`
	RiskValue       float64         `json:"risk_value"`
	RiskLevel       string          `json:"risk_level"`
	Probability     float64         `json:"probability"`
	Impact          float64         `json:"impact"`
	CalculatedAt    time.Time       `json:"calculated_at"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toRiskResponse(risk *model.Risk) riskResponse {
	return riskResponse{
		ID:              risk.ID.String(),
		AssetID:         string(risk.AssetID),
		ThreatID:        string(risk.ThreatID),
		VulnerabilityID: string(risk.VulnerabilityID),
		Calculation: calculationBody{
			InherentRisk:        risk.Calculation.InherentRisk,
			AdjustedProbability: risk.Calculation.AdjustedProbability,
			ComputedImpact:      risk.Calculation.ComputedImpact,
			Exposure:            risk.Calculation.Exposure,
			TemporalFactor:      risk.Calculation.TemporalFactor,
		},
		RiskValue:    risk.RiskValue,
		RiskLevel:    string(risk.RiskLevel),
		Probability:  risk.Probability,
		Impact:       risk.Impact,
		CalculatedAt: risk.CalculatedAt,
		Active:       risk.Active,
		CreatedAt:    risk.CreatedAt,
		UpdatedAt:    risk.UpdatedAt,
	}
}

func toRiskResponses(risks []*model.Risk) []riskResponse {
	out := make([]riskResponse, len(risks))
	for i, risk := range risks {
		out[i] = toRiskResponse(risk)
	}
	return out
}

type riskTripleBody struct {
	AssetID         string `json:"asset_id"`
	ThreatID        string `json:"threat_id"`
	VulnerabilityID string `json:"vulnerability_id,omitempty"`
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	var risks []*model.Risk
	var err error
	if r.URL.Query().Get("active") == "true" {
		risks, err = s.uc.Risk.ListActive(r.Context())
	} else {
		risks, err = s.uc.Risk.List(r.Context())
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toRiskResponses(risks))
}

// calculateRisk evaluates a triple without persisting the result
func (s *Server) calculateRisk(w http.ResponseWriter, r *http.Request) {
	var body riskTripleBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	risk, err := s.uc.Risk.Calculate(r.Context(),
		types.AssetID(body.AssetID),
		types.ThreatID(body.ThreatID),
		types.VulnerabilityID(body.VulnerabilityID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) createOrUpdateRisk(w http.ResponseWriter, r *http.Request) {
	var body riskTripleBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	risk, err := s.uc.Risk.CreateOrUpdate(r.Context(),
		types.AssetID(body.AssetID),
		types.ThreatID(body.ThreatID),
		types.VulnerabilityID(body.VulnerabilityID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toRiskResponse(risk))
}

func (s *Server) recalculateRisks(w http.ResponseWriter, r *http.Request) {
	summary, err := s.uc.Risk.RecalculateAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]int{
		"processed": summary.Processed,
		"errors":    summary.Errors,
	})
}

type matrixResponse struct {
	ByLevel map[string][]riskResponse `json:"by_level"`
	Stats   matrixStatsBody           `json:"stats"`
}

type matrixStatsBody struct {
	Total          int            `json:"total"`
	CountByLevel   map[string]int `json:"count_by_level"`
	TotalRiskValue float64        `json:"total_risk_value"`
}

func (s *Server) riskMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.uc.Risk.Matrix(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := matrixResponse{
		ByLevel: make(map[string][]riskResponse, len(matrix.ByLevel)),
		Stats: matrixStatsBody{
			Total:          matrix.Stats.Total,
			CountByLevel:   make(map[string]int, len(matrix.Stats.CountByLevel)),
			TotalRiskValue: matrix.Stats.TotalRiskValue,
		},
	}
	for level, risks := range matrix.ByLevel {
		resp.ByLevel[string(level)] = toRiskResponses(risks)
	}
	for level, count := range matrix.Stats.CountByLevel {
		resp.Stats.CountByLevel[string(level)] = count
	}

	respondJSON(w, r, http.StatusOK, resp)
}

func (s *Server) topRisks(w http.ResponseWriter, r *http.Request) {
	n := defaultTopRisks
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, r, model.ErrValidation)
			return
		}
		n = parsed
	}

	risks, err := s.uc.Risk.TopRisks(r.Context(), n)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toRiskResponses(risks))
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	risk, err := s.uc.Risk.Get(r.Context(), model.RiskID(chi.URLParam(r, "riskID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Risk.Delete(r.Context(), model.RiskID(chi.URLParam(r, "riskID"))); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
