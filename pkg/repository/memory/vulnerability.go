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

type vulnerabilityRepository struct {
	mu    sync.RWMutex
	vulns map[types.VulnerabilityID]*model.Vulnerability
}

func newVulnerabilityRepository() *vulnerabilityRepository {
	return &vulnerabilityRepository{
		vulns: make(map[types.VulnerabilityID]*model.Vulnerability),
	}
}

func copyVulnerability(v *model.Vulnerability) *model.Vulnerability {
	copied := *v
	if v.AttackVectors != nil {
		copied.AttackVectors = make([]string, len(v.AttackVectors))
		copy(copied.AttackVectors, v.AttackVectors)
	}
	if v.AssetIDs != nil {
		copied.AssetIDs = make([]types.AssetID, len(v.AssetIDs))
		copy(copied.AssetIDs, v.AssetIDs)
	}
	if v.ThreatIDs != nil {
		copied.ThreatIDs = make([]types.ThreatID, len(v.ThreatIDs))
		copy(copied.ThreatIDs, v.ThreatIDs)
	}
	if v.MitigatedAt != nil {
		mitigated := *v.MitigatedAt
		copied.MitigatedAt = &mitigated
	}
	return &copied
}

func (r *vulnerabilityRepository) Create(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vulns[vuln.ID]; exists {
		return nil, goerr.Wrap(model.ErrConflict, "vulnerability already exists", goerr.V("id", vuln.ID))
	}

	now := time.Now().UTC()
	created := copyVulnerability(vuln)
	created.CreatedAt = now
	created.UpdatedAt = now

	r.vulns[created.ID] = created
	return copyVulnerability(created), nil
}

func (r *vulnerabilityRepository) Get(ctx context.Context, id types.VulnerabilityID) (*model.Vulnerability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vuln, exists := r.vulns[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vulnerability not found", goerr.V("id", id))
	}
	return copyVulnerability(vuln), nil
}

func (r *vulnerabilityRepository) List(ctx context.Context) ([]*model.Vulnerability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vulns := make([]*model.Vulnerability, 0, len(r.vulns))
	for _, vuln := range r.vulns {
		vulns = append(vulns, copyVulnerability(vuln))
	}
	sort.Slice(vulns, func(i, j int) bool { return vulns[i].ID < vulns[j].ID })
	return vulns, nil
}

func (r *vulnerabilityRepository) Update(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.vulns[vuln.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "vulnerability not found", goerr.V("id", vuln.ID))
	}

	updated := copyVulnerability(vuln)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.vulns[updated.ID] = updated
	return copyVulnerability(updated), nil
}

func (r *vulnerabilityRepository) Delete(ctx context.Context, id types.VulnerabilityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vulns[id]; !exists {
		return goerr.Wrap(ErrNotFound, "vulnerability not found", goerr.V("id", id))
	}
	delete(r.vulns, id)
	return nil
}
