package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

// VulnerabilityRepository persists vulnerabilities
type VulnerabilityRepository interface {
	Create(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error)
	Get(ctx context.Context, id types.VulnerabilityID) (*model.Vulnerability, error)
	List(ctx context.Context) ([]*model.Vulnerability, error)
	Update(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error)
	Delete(ctx context.Context, id types.VulnerabilityID) error
}
