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

type documentationEntryDocument struct {
	Title   string    `firestore:"title"`
	URL     string    `firestore:"url"`
	Note    string    `firestore:"note"`
	AddedAt time.Time `firestore:"added_at"`
}

type kpiMeasurementDocument struct {
	Name       string    `firestore:"name"`
	Value      float64   `firestore:"value"`
	MeasuredAt time.Time `firestore:"measured_at"`
}

type safeguardDocument struct {
	ID                 string                       `firestore:"id"`
	Name               string                       `firestore:"name"`
	Type               string                       `firestore:"type"`
	Category           string                       `firestore:"category"`
	Description        string                       `firestore:"description"`
	State              string                       `firestore:"state"`
	Effectiveness      float64                      `firestore:"effectiveness"`
	ImplementationCost float64                      `firestore:"implementation_cost"`
	MonthlyCost        float64                      `firestore:"monthly_cost"`
	RiskIDs            []string                     `firestore:"risk_ids"`
	AssetIDs           []string                     `firestore:"asset_ids"`
	Owner              string                       `firestore:"owner"`
	ReviewPeriodMonths int                          `firestore:"review_period_months"`
	ImplementedAt      *time.Time                   `firestore:"implemented_at,omitempty"`
	NextReviewAt       *time.Time                   `firestore:"next_review_at,omitempty"`
	Documentation      []documentationEntryDocument `firestore:"documentation"`
	KPIs               []kpiMeasurementDocument     `firestore:"kpis"`
	CreatedAt          time.Time                    `firestore:"created_at"`
	UpdatedAt          time.Time                    `firestore:"updated_at"`
}

type safeguardRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSafeguardRepository(client *firestore.Client) *safeguardRepository {
	return &safeguardRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *safeguardRepository) safeguardsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_safeguards"
	}
	return "safeguards"
}

func safeguardToDocument(sg *model.Safeguard) *safeguardDocument {
	doc := &safeguardDocument{
		ID:                 string(sg.ID),
		Name:               sg.Name,
		Type:               string(sg.Type),
		Category:           sg.Category,
		Description:        sg.Description,
		State:              string(sg.State.Normalize()),
		Effectiveness:      sg.Effectiveness,
		ImplementationCost: sg.ImplementationCost,
		MonthlyCost:        sg.MonthlyCost,
		Owner:              sg.Owner,
		ReviewPeriodMonths: sg.ReviewPeriodMonths,
		ImplementedAt:      sg.ImplementedAt,
		NextReviewAt:       sg.NextReviewAt,
		CreatedAt:          sg.CreatedAt,
		UpdatedAt:          sg.UpdatedAt,
	}
	for _, id := range sg.RiskIDs {
		doc.RiskIDs = append(doc.RiskIDs, string(id))
	}
	for _, id := range sg.AssetIDs {
		doc.AssetIDs = append(doc.AssetIDs, string(id))
	}
	for _, entry := range sg.Documentation {
		doc.Documentation = append(doc.Documentation, documentationEntryDocument(entry))
	}
	for _, kpi := range sg.KPIs {
		doc.KPIs = append(doc.KPIs, kpiMeasurementDocument(kpi))
	}
	return doc
}

func safeguardToModel(doc *safeguardDocument) *model.Safeguard {
	sg := &model.Safeguard{
		ID:                 types.SafeguardID(doc.ID),
		Name:               doc.Name,
		Type:               types.SafeguardType(doc.Type),
		Category:           doc.Category,
		Description:        doc.Description,
		State:              types.SafeguardState(doc.State),
		Effectiveness:      doc.Effectiveness,
		ImplementationCost: doc.ImplementationCost,
		MonthlyCost:        doc.MonthlyCost,
		Owner:              doc.Owner,
		ReviewPeriodMonths: doc.ReviewPeriodMonths,
		ImplementedAt:      doc.ImplementedAt,
		NextReviewAt:       doc.NextReviewAt,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
	for _, id := range doc.RiskIDs {
		sg.RiskIDs = append(sg.RiskIDs, model.RiskID(id))
	}
	for _, id := range doc.AssetIDs {
		sg.AssetIDs = append(sg.AssetIDs, types.AssetID(id))
	}
	for _, entry := range doc.Documentation {
		sg.Documentation = append(sg.Documentation, model.DocumentationEntry(entry))
	}
	for _, kpi := range doc.KPIs {
		sg.KPIs = append(sg.KPIs, model.KPIMeasurement(kpi))
	}
	return sg
}

func (r *safeguardRepository) Create(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	now := time.Now().UTC()
	sg.CreatedAt = now
	sg.UpdatedAt = now

	doc := safeguardToDocument(sg)
	docRef := r.client.Collection(r.safeguardsCollection()).Doc(string(sg.ID))

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrConflict, "safeguard already exists", goerr.V("id", sg.ID))
		}
		return nil, goerr.Wrap(err, "failed to create safeguard", goerr.V("id", sg.ID))
	}

	return safeguardToModel(doc), nil
}

func (r *safeguardRepository) Get(ctx context.Context, id types.SafeguardID) (*model.Safeguard, error) {
	docRef := r.client.Collection(r.safeguardsCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "safeguard not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get safeguard", goerr.V("id", id))
	}

	var data safeguardDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode safeguard document", goerr.V("id", id))
	}
	return safeguardToModel(&data), nil
}

func (r *safeguardRepository) List(ctx context.Context) ([]*model.Safeguard, error) {
	iter := r.client.Collection(r.safeguardsCollection()).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var safeguards []*model.Safeguard
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate safeguards")
		}

		var data safeguardDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode safeguard document")
		}
		safeguards = append(safeguards, safeguardToModel(&data))
	}
	return safeguards, nil
}

func (r *safeguardRepository) Update(ctx context.Context, sg *model.Safeguard) (*model.Safeguard, error) {
	existing, err := r.Get(ctx, sg.ID)
	if err != nil {
		return nil, err
	}

	sg.CreatedAt = existing.CreatedAt
	sg.UpdatedAt = time.Now().UTC()

	doc := safeguardToDocument(sg)
	docRef := r.client.Collection(r.safeguardsCollection()).Doc(string(sg.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update safeguard", goerr.V("id", sg.ID))
	}

	return safeguardToModel(doc), nil
}

func (r *safeguardRepository) Delete(ctx context.Context, id types.SafeguardID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	docRef := r.client.Collection(r.safeguardsCollection()).Doc(string(id))
	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete safeguard", goerr.V("id", id))
	}
	return nil
}

func (r *safeguardRepository) ListByRisk(ctx context.Context, riskID model.RiskID) ([]*model.Safeguard, error) {
	iter := r.client.Collection(r.safeguardsCollection()).
		Where("risk_ids", "array-contains", string(riskID)).
		Documents(ctx)
	defer iter.Stop()

	var safeguards []*model.Safeguard
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate safeguards by risk", goerr.V("risk_id", riskID))
		}

		var data safeguardDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode safeguard document")
		}
		safeguards = append(safeguards, safeguardToModel(&data))
	}
	return safeguards, nil
}
