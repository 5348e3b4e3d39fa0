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

type threatRepository struct {
	mu      sync.RWMutex
	threats map[types.ThreatID]*model.Threat
}

func newThreatRepository() *threatRepository {
	return &threatRepository{
		threats: make(map[types.ThreatID]*model.Threat),
	}
}

func copyThreat(t *model.Threat) *model.Threat {
	copied := *t
	if t.CVE != nil {
		cve := *t.CVE
		if t.CVE.AffectedSoftware != nil {
			cve.AffectedSoftware = make([]string, len(t.CVE.AffectedSoftware))
			copy(cve.AffectedSoftware, t.CVE.AffectedSoftware)
		}
		copied.CVE = &cve
	}
	if t.AssetIDs != nil {
		copied.AssetIDs = make([]types.AssetID, len(t.AssetIDs))
		copy(copied.AssetIDs, t.AssetIDs)
	}
	return &copied
}

func (r *threatRepository) Create(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.threats[threat.ID]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "threat already exists", goerr.V("id", threat.ID))
	}

	now := time.Now().UTC()
	created := copyThreat(threat)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.threats[created.ID] = created
	return copyThreat(created), nil
}

func (r *threatRepository) Get(ctx context.Context, id types.ThreatID) (*model.Threat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	threat, exists := r.threats[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", id))
	}
	return copyThreat(threat), nil
}

func (r *threatRepository) List(ctx context.Context) ([]*model.Threat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	threats := make([]*model.Threat, 0, len(r.threats))
	for _, threat := range r.threats {
		threats = append(threats, copyThreat(threat))
	}
	sort.Slice(threats, func(i, j int) bool { return threats[i].ID < threats[j].ID })
	return threats, nil
}

func (r *threatRepository) Update(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.threats[threat.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", threat.ID))
	}

	updated := copyThreat(threat)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.threats[updated.ID] = updated
	return copyThreat(updated), nil
}

func (r *threatRepository) Delete(ctx context.Context, id types.ThreatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.threats[id]; !exists {
		return goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", id))
	}
	delete(r.threats, id)
	return nil
}

func (r *threatRepository) Upsert(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	upserted := copyThreat(threat)
	upserted.UpdatedAt = now

	if existing, exists := r.threats[threat.ID]; exists {
		upserted.CreatedAt = existing.CreatedAt
	} else {
		upserted.CreatedAt = now
	}

	r.threats[upserted.ID] = upserted
	return copyThreat(upserted), nil
}
