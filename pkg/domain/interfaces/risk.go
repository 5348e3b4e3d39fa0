package interfaces

import (
	"context"

	"github.com/secops-lab/magerisk/pkg/domain/model"
)

// RiskRepository persists computed risk records and enforces the
// one-active-record-per-triple invariant at the storage layer
type RiskRepository interface {
	// Upsert writes the record under its triple key. If an active record
	// for the same triple exists, its calculation fields and timestamps
	// are overwritten in place and its ID is kept; otherwise a new record
	// is inserted. Never creates a second record for the same triple.
	Upsert(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	Get(ctx context.Context, id model.RiskID) (*model.Risk, error)
	GetByTriple(ctx context.Context, key model.TripleKey) (*model.Risk, error)

	// ListActive returns all records with Active=true
	ListActive(ctx context.Context) ([]*model.Risk, error)
	// List returns every record including soft-deleted ones
	List(ctx context.Context) ([]*model.Risk, error)

	// Deactivate performs the soft delete: the record stays queryable
	// with Active=false
	Deactivate(ctx context.Context, id model.RiskID) error
}
