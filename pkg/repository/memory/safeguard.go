package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

type safeguardRepository struct {
	mu         sync.RWMutex
	safeguards map[types.SafeguardID]*model.Safeguard
}

func newSafeguardRepository() *safeguardRepository {
	return &safeguardRepository{
		safeguards: make(map[types.SafeguardID]*model.Safeguard),
	}
}

func copySafeguard(s *model.Safeguard) *model.Safeguard {
	copied := *s
	if s.RiskIDs != nil {
		copied.RiskIDs = make([]model.RiskID, len(s.RiskIDs))
		copy(copied.RiskIDs, s.RiskIDs)
	}
	if s.AssetIDs != nil {
		copied.AssetIDs = make([]types.AssetID, len(s.AssetIDs))
		copy(copied.AssetIDs, s.AssetIDs)
	}
	if s.Documentation != nil {
		copied.Documentation = make([]model.DocumentationEntry, len(s.Documentation))
		copy(copied.Documentation, s.Documentation)
	}
	if s.KPIs != nil {
		copied.KPIs = make([]model.KPIMeasurement, len(s.KPIs))
		copy(copied.KPIs, s.KPIs)
	}
	if s.ImplementedAt != nil {
		implemented := *s.ImplementedAt
		copied.ImplementedAt = &implemented
	}
	if s.NextReviewAt != nil {
		next := *s.NextReviewAt
		copied.NextReviewAt = &next
	}
	return &copied
}

func (r *safeguardRepository) Create(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.safeguards[sg.ID]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "safeguard already exists", goerr.V("id", sg.ID))
	}

	now := time.Now().UTC()
	created := copySafeguard(sg)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.safeguards[created.ID] = created
	return copySafeguard(created), nil
}

func (r *safeguardRepository) Get(ctx context.Context, id types.SafeguardID) (*model.Safeguard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sg, exists := r.safeguards[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "safeguard not found", goerr.V("id", id))
	}
	return copySafeguard(sg), nil
}

func (r *safeguardRepository) List(ctx context.Context) ([]*model.Safeguard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	safeguards := make([]*model.Safeguard, 0, len(r.safeguards))
	for _, sg := range r.safeguards {
		safeguards = append(safeguards, copySafeguard(sg))
	}
	sort.Slice(safeguards, func(i, j int) bool { return safeguards[i].ID < safeguards[j].ID })
	return safeguards, nil
}

func (r *safeguardRepository) Update(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.safeguards[sg.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "safeguard not found", goerr.V("id", sg.ID))
	}

	updated := copySafeguard(sg)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.safeguards[updated.ID] = updated
	return copySafeguard(updated), nil
}

func (r *safeguardRepository) Delete(ctx context.Context, id types.SafeguardID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.safeguards[id]; !exists {
		return goerr.Wrap(ErrNotFound, "safeguard not found", goerr.V("id", id))
	}
	delete(r.safeguards, id)
	return nil
}

func (r *safeguardRepository) ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.Safeguard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Safeguard
	for _, sg := range r.safeguards {
		for _, id := range sg.RiskIDs {
			if id == riskID {
				result = append(result, copySafeguard(sg))
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
