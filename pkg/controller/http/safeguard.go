package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type documentationBody struct {
	Title   string    `json:"title"`
	URL     string    `json:"url,omitempty"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at,omitempty"`
}

type kpiBody struct {
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at,omitempty"`
}

type safeguardBody struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Type               string              `json:"type"`
	Category           string              `json:"category,omitempty"`
	Description        string              `json:"description,omitempty"`
	State              string              `json:"state,omitempty"`
	Effectiveness      float64             `json:"effectiveness"`
	ImplementationCost float64             `json:"implementation_cost"`
	MonthlyCost        float64             `json:"monthly_cost"`
	RiskIDs            []string            `json:"risk_ids,omitempty"`
	AssetIDs           []string            `json:"asset_ids,omitempty"`
	Owner              string              `json:"owner,omitempty"`
	ReviewPeriodMonths int                 `json:"review_period_months"`
	Documentation      []documentationBody `json:"documentation,omitempty"`
}

type safeguardResponse struct {
	safeguardBody
	KPIs          []kpiBody  `json:"kpis,omitempty"`
	ImplementedAt *time.Time `json:"implemented_at,omitempty"`
	NextReviewAt  *time.Time `json:"next_review_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (b *safeguardBody) toModel() *model.Safeguard {
	riskIDs := make([]model.RiskID, 0, len(b.RiskIDs))
	for _, id := range b.RiskIDs {
		riskIDs = append(riskIDs, model.RiskID(id))
	}
	assetIDs := make([]types.AssetID, 0, len(b.AssetIDs))
	for _, id := range b.AssetIDs {
		assetIDs = append(assetIDs, types.AssetID(id))
	}
	docs := make([]model.DocumentationEntry, 0, len(b.Documentation))
	for _, d := range b.Documentation {
		docs = append(docs, model.DocumentationEntry{
			Title:   d.Title,
			URL:     d.URL,
			Note:    d.Note,
			AddedAt: d.AddedAt,
		})
	}
	return &model.Safeguard{
		ID:                 types.SafeguardID(b.ID),
		Name:               b.Name,
		Type:               types.SafeguardType(b.Type),
		Category:           b.Category,
		Description:        b.Description,
		State:              types.SafeguardState(b.State),
		Effectiveness:      b.Effectiveness,
		ImplementationCost: b.ImplementationCost,
		MonthlyCost:        b.MonthlyCost,
		RiskIDs:            riskIDs,
		AssetIDs:           assetIDs,
		Owner:              b.Owner,
		ReviewPeriodMonths: b.ReviewPeriodMonths,
		Documentation:      docs,
	}
}

func toSafeguardResponse(sg *model.Safeguard) safeguardResponse {
	riskIDs := make([]string, 0, len(sg.RiskIDs))
	for _, id := range sg.RiskIDs {
		riskIDs = append(riskIDs, string(id))
	}
	assetIDs := make([]string, 0, len(sg.AssetIDs))
	for _, id := range sg.AssetIDs {
		assetIDs = append(assetIDs, string(id))
	}
	docs := make([]documentationBody, 0, len(sg.Documentation))
	for _, d := range sg.Documentation {
		docs = append(docs, documentationBody{
			Title:   d.Title,
			URL:     d.URL,
			Note:    d.Note,
			AddedAt: d.AddedAt,
		})
	}
	kpis := make([]kpiBody, 0, len(sg.KPIs))
	for _, k := range sg.KPIs {
		kpis = append(kpis, kpiBody{
			Name:       k.Name,
			Value:      k.Value,
			MeasuredAt: k.MeasuredAt,
		})
	}
	return safeguardResponse{
		safeguardBody: safeguardBody{
			ID:                 string(sg.ID),
			Name:               sg.Name,
			Type:               string(sg.Type),
			Category:           sg.Category,
			Description:        sg.Description,
			State:              string(sg.State),
			Effectiveness:      sg.Effectiveness,
			ImplementationCost: sg.ImplementationCost,
			MonthlyCost:        sg.MonthlyCost,
			RiskIDs:            riskIDs,
			AssetIDs:           assetIDs,
			Owner:              sg.Owner,
			ReviewPeriodMonths: sg.ReviewPeriodMonths,
			Documentation:      docs,
		},
		KPIs:          kpis,
		ImplementedAt: sg.ImplementedAt,
		NextReviewAt:  sg.NextReviewAt,
		CreatedAt:     sg.CreatedAt,
		UpdatedAt:     sg.UpdatedAt,
	}
}

func toSafeguardResponses(sgs []*model.Safeguard) []safeguardResponse {
	out := make([]safeguardResponse, len(sgs))
	for i, sg := range sgs {
		out[i] = toSafeguardResponse(sg)
	}
	return out
}

func (s *Server) createSafeguard(w http.ResponseWriter, r *http.Request) {
	var body safeguardBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.uc.Safeguard.Create(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, toSafeguardResponse(created))
}

func (s *Server) getSafeguard(w http.ResponseWriter, r *http.Request) {
	sg, err := s.uc.Safeguard.Get(r.Context(), types.SafeguardID(chi.URLParam(r, "safeguardID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSafeguardResponse(sg))
}

func (s *Server) listSafeguards(w http.ResponseWriter, r *http.Request) {
	sgs, err := s.uc.Safeguard.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSafeguardResponses(sgs))
}

func (s *Server) updateSafeguard(w http.ResponseWriter, r *http.Request) {
	var body safeguardBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	body.ID = chi.URLParam(r, "safeguardID")

	updated, err := s.uc.Safeguard.Update(r.Context(), body.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSafeguardResponse(updated))
}

func (s *Server) deleteSafeguard(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Safeguard.Delete(r.Context(), types.SafeguardID(chi.URLParam(r, "safeguardID"))); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) implementSafeguard(w http.ResponseWriter, r *http.Request) {
	sg, err := s.uc.Safeguard.Implement(r.Context(), types.SafeguardID(chi.URLParam(r, "safeguardID")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSafeguardResponse(sg))
}

func (s *Server) addSafeguardKPI(w http.ResponseWriter, r *http.Request) {
	var body kpiBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	sg, err := s.uc.Safeguard.AddKPI(r.Context(),
		types.SafeguardID(chi.URLParam(r, "safeguardID")), body.Name, body.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, toSafeguardResponse(sg))
}

func (s *Server) safeguardROI(w http.ResponseWriter, r *http.Request) {
	id := types.SafeguardID(chi.URLParam(r, "safeguardID"))
	roi, err := s.uc.Safeguard.ROI(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"safeguard_id": string(id),
		"roi":          roi,
	})
}
