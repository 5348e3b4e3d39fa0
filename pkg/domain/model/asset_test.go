package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
)

func TestCriticalityIsMaxDimension(t *testing.T) {
	cases := []struct {
		name string
		v    model.Valuation
		want float64
	}{
		{"confidentiality dominates", model.Valuation{Confidentiality: 9, Integrity: 3, Availability: 5}, 9},
		{"availability dominates", model.Valuation{Confidentiality: 2, Integrity: 2, Availability: 8, Authenticity: 1}, 8},
		{"traceability dominates", model.Valuation{Traceability: 7}, 7},
		{"all equal", model.Valuation{Confidentiality: 5, Integrity: 5, Availability: 5, Authenticity: 5, Traceability: 5}, 5},
		{"zero valuation", model.Valuation{}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, model.Criticality(tc.v)).Equal(tc.want)
		})
	}
}

func TestAssetValidate(t *testing.T) {
	valid := func() *model.Asset {
		return &model.Asset{
			ID:            "srv-db-001",
			Name:          "Primary database server",
			Type:          types.AssetTypeHardware,
			Owner:         "infra",
			Valuation:     model.Valuation{Confidentiality: 8, Availability: 9},
			EconomicValue: 50000,
		}
	}

	t.Run("valid asset passes", func(t *testing.T) {
		gt.NoError(t, valid().Validate())
	})

	t.Run("negative economic value rejected", func(t *testing.T) {
		a := valid()
		a.EconomicValue = -1
		gt.Error(t, a.Validate())
	})

	t.Run("valuation above 10 rejected", func(t *testing.T) {
		a := valid()
		a.Valuation.Integrity = 11
		gt.Error(t, a.Validate())
	})

	t.Run("self dependency rejected", func(t *testing.T) {
		a := valid()
		a.Dependencies = []types.AssetID{a.ID}
		gt.Error(t, a.Validate())
	})

	t.Run("invalid type rejected", func(t *testing.T) {
		a := valid()
		a.Type = "quantum"
		gt.Error(t, a.Validate())
	})
}

func TestAssetDependsOn(t *testing.T) {
	a := &model.Asset{
		ID:           "app-core",
		Dependencies: []types.AssetID{"srv-db-001", "net-fw-001"},
	}
	gt.Bool(t, a.DependsOn("srv-db-001")).True()
	gt.Bool(t, a.DependsOn("srv-web-002")).False()
}
