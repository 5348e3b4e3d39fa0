package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[model.RiskID]*model.Risk
	// byTriple indexes the single record of each triple; soft-deleted
	// records keep their slot so re-upserting reuses the document
	byTriple map[model.TripleKey]model.RiskID
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks:    make(map[model.RiskID]*model.Risk),
		byTriple: make(map[model.TripleKey]model.RiskID),
	}
}

func copyRisk(r *model.Risk) *model.Risk {
	copied := *r
	return &copied
}

func (r *riskRepository) Upsert(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := risk.Triple()

	if existingID, exists := r.byTriple[key]; exists {
		existing := r.risks[existingID]

		updated := copyRisk(risk)
		updated.ID = existing.ID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = now
		updated.Active = true

		r.risks[updated.ID] = updated
		return copyRisk(updated), nil
	}

	created := copyRisk(risk)
	if created.ID == "" {
		created.ID = model.NewRiskID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Active = true

	r.risks[created.ID] = created
	r.byTriple[key] = created.ID
	return copyRisk(created), nil
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}
	return copyRisk(risk), nil
}

func (r *riskRepository) GetByTriple(ctx context.Context, key model.TripleKey) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byTriple[key]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk not found for triple", goerr.V("triple", key))
	}
	return copyRisk(r.risks[id]), nil
}

func (r *riskRepository) ListActive(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var risks []*model.Risk
	for _, risk := range r.risks {
		if risk.Active {
			risks = append(risks, copyRisk(risk))
		}
	}
	sort.Slice(risks, func(i, j int) bool { return risks[i].ID < risks[j].ID })
	return risks, nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		risks = append(risks, copyRisk(risk))
	}
	sort.Slice(risks, func(i, j int) bool { return risks[i].ID < risks[j].ID })
	return risks, nil
}

func (r *riskRepository) Deactivate(ctx context.Context, id model.RiskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	risk, exists := r.risks[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	risk.Active = false
	risk.UpdatedAt = time.Now().UTC()
	return nil
}
