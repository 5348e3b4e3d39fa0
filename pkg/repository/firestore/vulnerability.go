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

type vulnerabilityDocument struct {
	ID             string     `firestore:"id"`
	Name           string     `firestore:"name"`
	Category       string     `firestore:"category"`
	Description    string     `firestore:"description"`
	Exploitability float64    `firestore:"exploitability"`
	AttackVectors  []string   `firestore:"attack_vectors"`
	AssetIDs       []string   `firestore:"asset_ids"`
	ThreatIDs      []string   `firestore:"threat_ids"`
	State          string     `firestore:"state"`
	DetectedAt     time.Time  `firestore:"detected_at"`
	MitigatedAt    *time.Time `firestore:"mitigated_at,omitempty"`
	CreatedAt      time.Time  `firestore:"created_at"`
	UpdatedAt      time.Time  `firestore:"updated_at"`
}

type vulnerabilityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newVulnerabilityRepository(client *firestore.Client) *vulnerabilityRepository {
	return &vulnerabilityRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *vulnerabilityRepository) vulnerabilitiesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_vulnerabilities"
	}
	return "vulnerabilities"
}

func vulnerabilityToDocument(vuln *model.Vulnerability) *vulnerabilityDocument {
	doc := &vulnerabilityDocument{
		ID:             string(vuln.ID),
		Name:           vuln.Name,
		Category:       vuln.Category,
		Description:    vuln.Description,
		Exploitability: vuln.Exploitability,
		AttackVectors:  vuln.AttackVectors,
		State:          string(vuln.State.Normalize()),
		DetectedAt:     vuln.DetectedAt,
		MitigatedAt:    vuln.MitigatedAt,
		CreatedAt:      vuln.CreatedAt,
		UpdatedAt:      vuln.UpdatedAt,
	}
	for _, id := range vuln.AssetIDs {
		doc.AssetIDs = append(doc.AssetIDs, string(id))
	}
	for _, id := range vuln.ThreatIDs {
		doc.ThreatIDs = append(doc.ThreatIDs, string(id))
	}
	return doc
}

func vulnerabilityToModel(doc *vulnerabilityDocument) *model.Vulnerability {
	vuln := &model.Vulnerability{
		ID:             types.VulnerabilityID(doc.ID),
		Name:           doc.Name,
		Category:       doc.Category,
		Description:    doc.Description,
		Exploitability: doc.Exploitability,
		AttackVectors:  doc.AttackVectors,
		State:          types.VulnerabilityState(doc.State),
		DetectedAt:     doc.DetectedAt,
		MitigatedAt:    doc.MitigatedAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for _, id := range doc.AssetIDs {
		vuln.AssetIDs = append(vuln.AssetIDs, types.AssetID(id))
	}
	for _, id := range doc.ThreatIDs {
		vuln.ThreatIDs = append(vuln.ThreatIDs, types.ThreatID(id))
	}
	return vuln
}

func (r *vulnerabilityRepository) Create(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	now := time.Now().UTC()
	vuln.CreatedAt = now
	vuln.UpdatedAt = now

	doc := vulnerabilityToDocument(vuln)
	docRef := r.client.Collection(r.vulnerabilitiesCollection()).Doc(string(vuln.ID))

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "vulnerability already exists", goerr.V("id", vuln.ID))
		}
		return nil, goerr.Wrap(err, "failed to create vulnerability", goerr.V("id", vuln.ID))
	}

	return vulnerabilityToModel(doc), nil
}

func (r *vulnerabilityRepository) Get(ctx context.Context, id types.VulnerabilityID) (*model.Vulnerability, error) {
	docRef := r.client.Collection(r.vulnerabilitiesCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "vulnerability not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get vulnerability", goerr.V("id", id))
	}

	var data vulnerabilityDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode vulnerability document", goerr.V("id", id))
	}
	return vulnerabilityToModel(&data), nil
}

func (r *vulnerabilityRepository) List(ctx context.Context) ([]*model.Vulnerability, error) {
	iter := r.client.Collection(r.vulnerabilitiesCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var vulns []*model.Vulnerability
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vulnerabilities")
		}

		var data vulnerabilityDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode vulnerability document")
		}
		vulns = append(vulns, vulnerabilityToModel(&data))
	}
	return vulns, nil
}

func (r *vulnerabilityRepository) Update(ctx context.Context, vuln *model.Vulnerability) (*model.Vulnerability, error) {
	existing, err := r.Get(ctx, vuln.ID)
	if err != nil {
		return nil, err
	}

	vuln.CreatedAt = existing.CreatedAt
	vuln.UpdatedAt = time.Now().UTC()

	doc := vulnerabilityToDocument(vuln)
	docRef := r.client.Collection(r.vulnerabilitiesCollection()).Doc(string(vuln.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update vulnerability", goerr.V("id", vuln.ID))
	}

	return vulnerabilityToModel(doc), nil
}

func (r *vulnerabilityRepository) Delete(ctx context.Context, id types.VulnerabilityID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	docRef := r.client.Collection(r.vulnerabilitiesCollection()).Doc(string(id))
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete vulnerability", goerr.V("id", id))
	}
	return nil
}
