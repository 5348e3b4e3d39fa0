package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type cveDocument struct {
	ID               string    `firestore:"id"`
	Score            float64   `firestore:"score"`
	Severity         string    `firestore:"severity"`
	AffectedSoftware []string  `firestore:"affected_software"`
	PublishedAt      time.Time `firestore:"published_at"`
	ModifiedAt       time.Time `firestore:"modified_at"`
	Description      string    `firestore:"description"`
}

type threatDocument struct {
	ID           string       `firestore:"id"`
	Name         string       `firestore:"name"`
	Type         string       `firestore:"type"`
	Origin       string       `firestore:"origin"`
	Description  string       `firestore:"description"`
	Probability  float64      `firestore:"probability"`
	CVE          *cveDocument `firestore:"cve,omitempty"`
	AssetIDs     []string     `firestore:"asset_ids"`
	DiscoveredAt time.Time    `firestore:"discovered_at"`
	CreatedAt    time.Time    `firestore:"created_at"`
	UpdatedAt    time.Time    `firestore:"updated_at"`
}

type threatRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newThreatRepository(client *firestore.Client) *threatRepository {
	return &threatRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *threatRepository) threatsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_threats"
	}
	return "threats"
}

func threatToDocument(threat *model.Threat) *threatDocument {
	doc := &threatDocument{
		ID:           string(threat.ID),
		Name:         threat.Name,
		Type:         string(threat.Type),
		Origin:       string(threat.Origin.Normalize()),
		Description:  threat.Description,
		Probability:  threat.Probability,
		DiscoveredAt: threat.DiscoveredAt,
		CreatedAt:    threat.CreatedAt,
		UpdatedAt:    threat.UpdatedAt,
	}
	if threat.CVE != nil {
		doc.CVE = &cveDocument{
			ID:               threat.CVE.ID,
			Score:            threat.CVE.Score,
			Severity:         string(threat.CVE.Severity),
			AffectedSoftware: threat.CVE.AffectedSoftware,
			PublishedAt:      threat.CVE.PublishedAt,
			ModifiedAt:       threat.CVE.ModifiedAt,
			Description:      threat.CVE.Description,
		}
	}
	for _, id := range threat.AssetIDs {
		doc.AssetIDs = append(doc.AssetIDs, string(id))
	}
	return doc
}

func threatToModel(doc *threatDocument) *model.Threat {
	threat := &model.Threat{
		ID:           types.ThreatID(doc.ID),
		Name:         doc.Name,
		Type:         types.ThreatType(doc.Type),
		Origin:       types.ThreatOrigin(doc.Origin),
		Description:  doc.Description,
		Probability:  doc.Probability,
		DiscoveredAt: doc.DiscoveredAt,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if doc.CVE != nil {
		threat.CVE = &model.CVERecord{
			ID:               doc.CVE.ID,
			Score:            doc.CVE.Score,
			Severity:         types.CVESeverity(doc.CVE.Severity),
			AffectedSoftware: doc.CVE.AffectedSoftware,
			PublishedAt:      doc.CVE.PublishedAt,
			ModifiedAt:       doc.CVE.ModifiedAt,
			Description:      doc.CVE.Description,
		}
	}
	for _, id := range doc.AssetIDs {
		threat.AssetIDs = append(threat.AssetIDs, types.AssetID(id))
	}
	return threat
}

func (r *threatRepository) Create(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	now := time.Now().UTC()
	threat.CreatedAt = now
	threat.UpdatedAt = now

	doc := threatToDocument(threat)
	docRef := r.client.Collection(r.threatsCollection()).Doc(string(threat.ID))

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "threat already exists", goerr.V("id", threat.ID))
		}
		return nil, goerr.Wrap(err, "failed to create threat", goerr.V("id", threat.ID))
	}

	return threatToModel(doc), nil
}

func (r *threatRepository) Get(ctx context.Context, id types.ThreatID) (*model.Threat, error) {
	docRef := r.client.Collection(r.threatsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "threat not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get threat", goerr.V("id", id))
	}

	var data threatDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode threat document", goerr.V("id", id))
	}
	return threatToModel(&data), nil
}

func (r *threatRepository) List(ctx context.Context) ([]*model.Threat, error) {
	iter := r.client.Collection(r.threatsCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var threats []*model.Threat
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate threats")
		}

		var data threatDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode threat document")
		}
		threats = append(threats, threatToModel(&data))
	}
	return threats, nil
}

func (r *threatRepository) Update(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	existing, err := r.Get(ctx, threat.ID)
	if err != nil {
		return nil, err
	}

	threat.CreatedAt = existing.CreatedAt
	threat.UpdatedAt = time.Now().UTC()

	doc := threatToDocument(threat)
	docRef := r.client.Collection(r.threatsCollection()).Doc(string(threat.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update threat", goerr.V("id", threat.ID))
	}

	return threatToModel(doc), nil
}

func (r *threatRepository) Delete(ctx context.Context, id types.ThreatID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	docRef := r.client.Collection(r.threatsCollection()).Doc(string(id))
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete threat", goerr.V("id", id))
	}
	return nil
}

// Upsert overwrites an existing threat document in place, preserving its
// creation timestamp. CVE re-ingestion goes through here so one CVE is
// always one threat document.
func (r *threatRepository) Upsert(ctx context.Context, threat *model.Threat) (*model.Threat, error) {
	docRef := r.client.Collection(r.threatsCollection()).Doc(string(threat.ID))

	now := time.Now().UTC()
	result := threatToDocument(threat)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get threat for upsert")
			}
			result.CreatedAt = now
			result.UpdatedAt = now
			return tx.Set(docRef, result)
		}

		var existing threatDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode threat document")
		}
		result.CreatedAt = existing.CreatedAt
		result.UpdatedAt = now
		return tx.Set(docRef, result)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert threat", goerr.V("id", threat.ID))
	}

	return threatToModel(result), nil
}
