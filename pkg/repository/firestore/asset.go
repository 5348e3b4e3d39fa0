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

type valuationDocument struct {
	Confidentiality float64 `firestore:"confidentiality"`
	Integrity       float64 `firestore:"integrity"`
	Availability    float64 `firestore:"availability"`
	Authenticity    float64 `firestore:"authenticity"`
	Traceability    float64 `firestore:"traceability"`
}

type assetDocument struct {
	ID            string            `firestore:"id"`
	Name          string            `firestore:"name"`
	Type          string            `firestore:"type"`
	Owner         string            `firestore:"owner"`
	Custodian     string            `firestore:"custodian"`
	Location      string            `firestore:"location"`
	Valuation     valuationDocument `firestore:"valuation"`
	EconomicValue float64           `firestore:"economic_value"`
	Dependencies  []string          `firestore:"dependencies"`
	Services      []string          `firestore:"services"`
	CreatedAt     time.Time         `firestore:"created_at"`
	UpdatedAt     time.Time         `firestore:"updated_at"`
}

type assetRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssetRepository(client *firestore.Client) *assetRepository {
	return &assetRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *assetRepository) assetsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_assets"
	}
	return "assets"
}

func assetToDocument(asset *model.Asset) *assetDocument {
	doc := &assetDocument{
		ID:        string(asset.ID),
		Name:      asset.Name,
		Type:      string(asset.Type),
		Owner:     asset.Owner,
		Custodian: asset.Custodian,
		Location:  asset.Location,
		Valuation: valuationDocument{
			Confidentiality: asset.Valuation.Confidentiality,
			Integrity:       asset.Valuation.Integrity,
			Availability:    asset.Valuation.Availability,
			Authenticity:    asset.Valuation.Authenticity,
			Traceability:    asset.Valuation.Traceability,
		},
		EconomicValue: asset.EconomicValue,
		Services:      asset.Services,
		CreatedAt:     asset.CreatedAt,
		UpdatedAt:     asset.UpdatedAt,
	}
	for _, dep := range asset.Dependencies {
		doc.Dependencies = append(doc.Dependencies, string(dep))
	}
	return doc
}

func assetToModel(doc *assetDocument) *model.Asset {
	asset := &model.Asset{
		ID:        types.AssetID(doc.ID),
		Name:      doc.Name,
		Type:      types.AssetType(doc.Type),
		Owner:     doc.Owner,
		Custodian: doc.Custodian,
		Location:  doc.Location,
		Valuation: model.Valuation{
			Confidentiality: doc.Valuation.Confidentiality,
			Integrity:       doc.Valuation.Integrity,
			Availability:    doc.Valuation.Availability,
			Authenticity:    doc.Valuation.Authenticity,
			Traceability:    doc.Valuation.Traceability,
		},
		EconomicValue: doc.EconomicValue,
		Services:      doc.Services,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
	for _, dep := range doc.Dependencies {
		asset.Dependencies = append(asset.Dependencies, types.AssetID(dep))
	}
	return asset
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	doc := assetToDocument(asset)
	docRef := r.client.Collection(r.assetsCollection()).Doc(string(asset.ID))

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "asset already exists", goerr.V("id", asset.ID))
		}
		return nil, goerr.Wrap(err, "failed to create asset", goerr.V("id", asset.ID))
	}

	return assetToModel(doc), nil
}

func (r *assetRepository) Get(ctx context.Context, id types.AssetID) (*model.Asset, error) {
	docRef := r.client.Collection(r.assetsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V("id", id))
	}

	var data assetDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode asset document", goerr.V("id", id))
	}
	return assetToModel(&data), nil
}

func (r *assetRepository) List(ctx context.Context) ([]*model.Asset, error) {
	iter := r.client.Collection(r.assetsCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var assets []*model.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assets")
		}

		var data assetDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset document")
		}
		assets = append(assets, assetToModel(&data))
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) (*model.Asset, error) {
	existing, err := r.Get(ctx, asset.ID)
	if err != nil {
		return nil, err
	}

	asset.CreatedAt = existing.CreatedAt
	asset.UpdatedAt = time.Now().UTC()

	doc := assetToDocument(asset)
	docRef := r.client.Collection(r.assetsCollection()).Doc(string(asset.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update asset", goerr.V("id", asset.ID))
	}

	return assetToModel(doc), nil
}

func (r *assetRepository) Delete(ctx context.Context, id types.AssetID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	docRef := r.client.Collection(r.assetsCollection()).Doc(string(id))
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete asset", goerr.V("id", id))
	}
	return nil
}

func (r *assetRepository) ListDependents(ctx context.Context, id types.AssetID) ([]*model.Asset, error) {
	iter := r.client.Collection(r.assetsCollection()).
		Where("dependencies", "array-contains", string(id)).
		Documents(ctx)
	defer iter.Stop()

	var dependents []*model.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate dependent assets", goerr.V("id", id))
		}

		var data assetDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode asset document")
		}
		dependents = append(dependents, assetToModel(&data))
	}
	return dependents, nil
}
