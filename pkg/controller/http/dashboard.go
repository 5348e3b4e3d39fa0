package http

import (
	"net/http"
)

type dashboardResponse struct {
	ActiveRisks    int            `json:"active_risks"`
	TotalRiskValue float64        `json:"total_risk_value"`
	MeanExposure   float64        `json:"mean_exposure"`
	CountByLevel   map[string]int `json:"count_by_level"`
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.uc.Risk.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := dashboardResponse{
		ActiveRisks:    stats.ActiveRisks,
		TotalRiskValue: stats.TotalRiskValue,
		MeanExposure:   stats.MeanExposure,
		CountByLevel:   make(map[string]int, len(stats.CountByLevel)),
	}
	for level, count := range stats.CountByLevel {
		resp.CountByLevel[string(level)] = count
	}

	respondJSON(w, r, http.StatusOK, resp)
}
