// Package firestore implements the repository interfaces on Google Cloud
// Firestore. Risk records are keyed by their triple so the document store
// itself enforces the one-record-per-triple invariant.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
)

// ErrNotFound aliases the shared sentinel so call sites read the same in
// both repository implementations
var ErrNotFound = model.ErrNotFound

type Firestore struct {
	client    *firestore.Client
	asset     *assetRepository
	threat    *threatRepository
	vuln      *vulnerabilityRepository
	risk      *riskRepository
	safeguard *safeguardRepository
	user      *userRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, mainly for tests
// sharing a project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.asset.collectionPrefix = prefix
		f.threat.collectionPrefix = prefix
		f.vuln.collectionPrefix = prefix
		f.risk.collectionPrefix = prefix
		f.safeguard.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:    client,
		asset:     newAssetRepository(client),
		threat:    newThreatRepository(client),
		vuln:      newVulnerabilityRepository(client),
		risk:      newRiskRepository(client),
		safeguard: newSafeguardRepository(client),
		user:      newUserRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Asset() interfaces.AssetRepository {
	return f.asset
}

func (f *Firestore) Threat() interfaces.ThreatRepository {
	return f.threat
}

func (f *Firestore) Vulnerability() interfaces.VulnerabilityRepository {
	return f.vuln
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Safeguard() interfaces.SafeguardRepository {
	return f.safeguard
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
