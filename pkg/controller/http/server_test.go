package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	controller "github.com/secops-lab/magerisk/pkg/controller/http"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/repository/memory"
	"github.com/secops-lab/magerisk/pkg/usecase"
)

func newTestServer(t *testing.T) (*controller.Server, *usecase.UseCases) {
	t.Helper()

	uc := gt.R1(usecase.New(memory.New())).NoError(t)
	srv := gt.R1(controller.New(uc)).NoError(t)
	return srv, uc
}

func doJSON(t *testing.T, srv *controller.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func assetPayload(id string, econ float64) map[string]any {
	return map[string]any{
		"id":    id,
		"name":  "Asset " + id,
		"type":  string(types.AssetTypeServices),
		"owner": "it-ops",
		"valuation": map[string]any{
			"confidentiality": 8.0,
			"integrity":       10.0,
			"availability":    7.0,
			"authenticity":    6.0,
			"traceability":    5.0,
		},
		"economic_value": econ,
	}
}

func threatPayload(id string, probability float64) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        "Threat " + id,
		"type":        string(types.ThreatTypeIntentionalAttack),
		"origin":      string(types.ThreatOriginManual),
		"probability": probability,
	}
}

func TestAssetEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("create and fetch", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/assets", assetPayload("srv-web", 100000))
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		rec = doJSON(t, srv, http.MethodGet, "/api/assets/srv-web", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var got map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got)).Required()
		gt.Value(t, got["id"]).Equal("srv-web")
		gt.Value(t, got["criticality"]).Equal(10.0)
	})

	t.Run("invalid valuation is rejected", func(t *testing.T) {
		payload := assetPayload("srv-bad", 1000)
		payload["valuation"].(map[string]any)["integrity"] = 12.0

		rec := doJSON(t, srv, http.MethodPost, "/api/assets", payload)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing asset yields 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/assets/no-such", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("delete blocked by dependents", func(t *testing.T) {
		gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/assets", assetPayload("db-core", 50000)).Code).
			Equal(http.StatusCreated)

		dependent := assetPayload("app-front", 20000)
		dependent["dependencies"] = []string{"db-core"}
		gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/assets", dependent).Code).
			Equal(http.StatusCreated)

		rec := doJSON(t, srv, http.MethodDelete, "/api/assets/db-core", nil)
		gt.Value(t, rec.Code).Equal(http.StatusConflict)

		rec = doJSON(t, srv, http.MethodGet, "/api/assets/db-core/dependents", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var dependents []map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dependents)).Required()
		gt.Array(t, dependents).Length(1)

		gt.Value(t, doJSON(t, srv, http.MethodDelete, "/api/assets/app-front", nil).Code).
			Equal(http.StatusNoContent)
		gt.Value(t, doJSON(t, srv, http.MethodDelete, "/api/assets/db-core", nil).Code).
			Equal(http.StatusNoContent)
	})
}

func TestRiskEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/assets", assetPayload("srv-app", 100000)).Code).
		Equal(http.StatusCreated)
	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/threats", threatPayload("phishing", 4)).Code).
		Equal(http.StatusCreated)

	triple := map[string]any{"asset_id": "srv-app", "threat_id": "phishing"}

	t.Run("calculate does not persist", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/risks/calculate", triple)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var risks []map[string]any
		rec = doJSON(t, srv, http.MethodGet, "/api/risks", nil)
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &risks)).Required()
		gt.Array(t, risks).Length(0)
	})

	t.Run("create then recalculate", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/risks", triple)
		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var created map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created)).Required()
		gt.Value(t, created["active"]).Equal(true)

		// Same triple keeps a single record
		gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/risks", triple).Code).
			Equal(http.StatusCreated)

		var risks []map[string]any
		rec = doJSON(t, srv, http.MethodGet, "/api/risks", nil)
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &risks)).Required()
		gt.Array(t, risks).Length(1)

		rec = doJSON(t, srv, http.MethodPost, "/api/risks/recalculate", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var summary map[string]int
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary)).Required()
		gt.Value(t, summary["processed"]).Equal(1)
		gt.Value(t, summary["errors"]).Equal(0)
	})

	t.Run("matrix and dashboard", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/risks/matrix", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var matrix struct {
			Stats struct {
				Total int `json:"total"`
			} `json:"stats"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix)).Required()
		gt.Value(t, matrix.Stats.Total).Equal(1)

		rec = doJSON(t, srv, http.MethodGet, "/api/dashboard", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var dash map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash)).Required()
		gt.Value(t, dash["active_risks"]).Equal(1.0)
	})

	t.Run("top risks rejects bad n", func(t *testing.T) {
		gt.Value(t, doJSON(t, srv, http.MethodGet, "/api/risks/top?n=0", nil).Code).
			Equal(http.StatusBadRequest)
		gt.Value(t, doJSON(t, srv, http.MethodGet, "/api/risks/top?n=5", nil).Code).
			Equal(http.StatusOK)
	})

	t.Run("unknown triple member yields 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/risks", map[string]any{
			"asset_id":  "srv-app",
			"threat_id": "no-such-threat",
		})
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestVulnerabilityMitigation(t *testing.T) {
	srv, _ := newTestServer(t)

	vuln := map[string]any{
		"id":             "weak-tls",
		"name":           "Weak TLS configuration",
		"exploitability": 8.0,
	}
	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/vulnerabilities", vuln).Code).
		Equal(http.StatusCreated)

	rec := doJSON(t, srv, http.MethodPost, "/api/vulnerabilities/weak-tls/mitigate", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var got map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got)).Required()
	gt.Value(t, got["state"]).Equal(string(types.VulnerabilityStateMitigated))
	gt.Value(t, got["mitigated_at"]).NotNil()
}

func TestSafeguardEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	sg := map[string]any{
		"id":                   "waf",
		"name":                 "Web application firewall",
		"type":                 string(types.SafeguardTypePreventive),
		"state":                string(types.SafeguardStatePlanned),
		"effectiveness":        70.0,
		"implementation_cost":  10000.0,
		"monthly_cost":         500.0,
		"review_period_months": 6,
	}
	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/safeguards", sg).Code).
		Equal(http.StatusCreated)

	rec := doJSON(t, srv, http.MethodPost, "/api/safeguards/waf/implement", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var got map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got)).Required()
	gt.Value(t, got["state"]).Equal(string(types.SafeguardStateImplemented))
	gt.Value(t, got["next_review_at"]).NotNil()

	rec = doJSON(t, srv, http.MethodPost, "/api/safeguards/waf/kpis", map[string]any{
		"name":  "blocked_requests",
		"value": 1234.0,
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, srv, http.MethodGet, "/api/safeguards/waf/roi", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestLogin(t *testing.T) {
	srv, uc := newTestServer(t)

	ctx := context.Background()
	gt.R1(uc.User.Create(ctx, "analyst@example.com", "Analyst", "s3cret-pass", types.UserRoleOperator)).NoError(t)

	t.Run("valid credentials", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "analyst@example.com",
			"password": "s3cret-pass",
		})
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var got map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got)).Required()
		gt.Value(t, got["email"]).Equal("analyst@example.com")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "analyst@example.com",
			"password": "wrong-pass",
		})
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestThreatAssetLink(t *testing.T) {
	srv, uc := newTestServer(t)

	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/assets", assetPayload("srv-mail", 50000)).Code).
		Equal(http.StatusCreated)
	gt.Value(t, doJSON(t, srv, http.MethodPost, "/api/threats", threatPayload("spoofing", 5)).Code).
		Equal(http.StatusCreated)

	rec := doJSON(t, srv, http.MethodPost, "/api/threats/spoofing/assets", map[string]any{
		"asset_ids": []string{"srv-mail"},
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	// Linking computes a risk for the pair
	risks := gt.R1(uc.Risk.ListActive(context.Background())).NoError(t)
	gt.Array(t, risks).Length(1)
	gt.Value(t, risks[0].AssetID).Equal(types.AssetID("srv-mail"))
	gt.Value(t, risks[0].ThreatID).Equal(types.ThreatID("spoofing"))
	gt.Value(t, risks[0].VulnerabilityID).Equal(types.VulnerabilityID(""))
}

func TestInvalidJSONBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/assets", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
}
