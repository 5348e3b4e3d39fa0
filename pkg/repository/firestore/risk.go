package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type calculationDocument struct {
	InherentRisk        float64 `firestore:"inherent_risk"`
	AdjustedProbability float64 `firestore:"adjusted_probability"`
	ComputedImpact      float64 `firestore:"computed_impact"`
	Exposure            float64 `firestore:"exposure"`
	TemporalFactor      float64 `firestore:"temporal_factor"`
}

type riskDocument struct {
	ID              string              `firestore:"id"`
	AssetID         string              `firestore:"asset_id"`
	ThreatID        string              `firestore:"threat_id"`
	VulnerabilityID string              `firestore:"vulnerability_id"`
	Calculation     calculationDocument `firestore:"calculation"`
	RiskValue       float64             `firestore:"risk_value"`
	RiskLevel       string              `firestore:"risk_level"`
	Probability     float64             `firestore:"probability"`
	Impact          float64             `firestore:"impact"`
	CalculatedAt    time.Time           `firestore:"calculated_at"`
	Active          bool                `firestore:"active"`
	CreatedAt       time.Time           `firestore:"created_at"`
	UpdatedAt       time.Time           `firestore:"updated_at"`
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) risksCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_risks"
	}
	return "risks"
}

// tripleDocID turns a triple key into the document ID. Using the triple as
// the document identity is what makes the uniqueness invariant a property
// of the store rather than of careful callers.
func tripleDocID(key model.TripleKey) string {
	return strings.ReplaceAll(string(key), "/", "~")
}

func riskToDocument(risk *model.Risk) *riskDocument {
	return &riskDocument{
		ID:              string(risk.ID),
		AssetID:         string(risk.AssetID),
		ThreatID:        string(risk.ThreatID),
		VulnerabilityID: string(risk.VulnerabilityID),
		Calculation: calculationDocument{
			InherentRisk:        risk.Calculation.InherentRisk,
			AdjustedProbability: risk.Calculation.AdjustedProbability,
			ComputedImpact:      risk.Calculation.ComputedImpact,
			Exposure:            risk.Calculation.Exposure,
			TemporalFactor:      risk.Calculation.TemporalFactor,
		},
		RiskValue:    risk.RiskValue,
		RiskLevel:    string(risk.RiskLevel),
		Probability:  risk.Probability,
		Impact:       risk.Impact,
		CalculatedAt: risk.CalculatedAt,
		Active:       risk.Active,
		CreatedAt:    risk.CreatedAt,
		UpdatedAt:    risk.UpdatedAt,
	}
}

func riskToModel(doc *riskDocument) *model.Risk {
	return &model.Risk{
		ID:              model.RiskID(doc.ID),
		AssetID:         types.AssetID(doc.AssetID),
		ThreatID:        types.ThreatID(doc.ThreatID),
		VulnerabilityID: types.VulnerabilityID(doc.VulnerabilityID),
		Calculation: model.Calculation{
			InherentRisk:        doc.Calculation.InherentRisk,
			AdjustedProbability: doc.Calculation.AdjustedProbability,
			ComputedImpact:      doc.Calculation.ComputedImpact,
			Exposure:            doc.Calculation.Exposure,
			TemporalFactor:      doc.Calculation.TemporalFactor,
		},
		RiskValue:    doc.RiskValue,
		RiskLevel:    types.RiskLevel(doc.RiskLevel),
		Probability:  doc.Probability,
		Impact:       doc.Impact,
		CalculatedAt: doc.CalculatedAt,
		Active:       doc.Active,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// Upsert writes the record under its triple document. The transaction
// keeps the existing record's identity and creation timestamp while
// overwriting every calculation field, so repeated upserts of the same
// triple converge on a single document.
func (r *riskRepository) Upsert(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(tripleDocID(risk.Triple()))

	now := time.Now().UTC()
	result := riskToDocument(risk)
	result.Active = true

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get risk for upsert")
			}
			if result.ID == "" {
				result.ID = string(model.NewRiskID())
			}
			result.CreatedAt = now
			result.UpdatedAt = now
			return tx.Set(docRef, result)
		}

		var existing riskDocument
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode risk document")
		}
		result.ID = existing.ID
		result.CreatedAt = existing.CreatedAt
		result.UpdatedAt = now
		return tx.Set(docRef, result)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert risk", goerr.V("triple", risk.Triple()))
	}

	return riskToModel(result), nil
}

func (r *riskRepository) Get(ctx context.Context, id model.RiskID) (*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Where("id", "==", string(id)).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var data riskDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk document", goerr.V("id", id))
	}
	return riskToModel(&data), nil
}

func (r *riskRepository) GetByTriple(ctx context.Context, key model.TripleKey) (*model.Risk, error) {
	docRef := r.client.Collection(r.risksCollection()).Doc(tripleDocID(key))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found for triple", goerr.V("triple", key))
		}
		return nil, goerr.Wrap(err, "failed to get risk by triple", goerr.V("triple", key))
	}

	var data riskDocument
	if err := doc.DataTo(&data); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk document", goerr.V("triple", key))
	}
	return riskToModel(&data), nil
}

// ListActive returns active records ordered by descending monetary risk.
// The composite (active, risk_value DESC) index is managed by the migrate
// command.
func (r *riskRepository) ListActive(ctx context.Context) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).
		Where("active", "==", true).
		OrderBy("risk_value", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()
	return r.collect(iter)
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	iter := r.client.Collection(r.risksCollection()).Documents(ctx)
	defer iter.Stop()
	return r.collect(iter)
}

func (r *riskRepository) collect(iter *firestore.DocumentIterator) ([]*model.Risk, error) {
	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var data riskDocument
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk document")
		}
		risks = append(risks, riskToModel(&data))
	}
	return risks, nil
}

func (r *riskRepository) Deactivate(ctx context.Context, id model.RiskID) error {
	risk, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	docRef := r.client.Collection(r.risksCollection()).Doc(tripleDocID(risk.Triple()))
	if _, err := docRef.Update(ctx, []firestore.Update{
		{Path: "active", Value: false},
		{Path: "updated_at", Value: time.Now().UTC()},
	}); err != nil {
		return goerr.Wrap(err, "failed to deactivate risk", goerr.V("id", id))
	}
	return nil
}
