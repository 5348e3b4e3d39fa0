package nvd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secops-lab/magerisk/pkg/service/nvd"
)

const singleCVEResponse = `{
	"resultsPerPage": 1,
	"startIndex": 0,
	"totalResults": 1,
	"format": "NVD_CVE",
	"version": "2.0",
	"vulnerabilities": [
		{
			"cve": {
				"id": "CVE-2024-12345",
				"published": "2024-11-02T10:15:00.000",
				"lastModified": "2024-11-20T08:00:00.000",
				"vulnStatus": "Analyzed",
				"descriptions": [
					{"lang": "es", "value": "descripcion en espanol"},
					{"lang": "en", "value": "Remote code execution in example server"}
				],
				"metrics": {
					"cvssMetricV31": [
						{
							"source": "nvd@nist.gov",
							"type": "Primary",
							"cvssData": {
								"version": "3.1",
								"vectorString": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
								"baseScore": 9.8,
								"baseSeverity": "CRITICAL"
							}
						}
					]
				},
				"configurations": [
					{
						"nodes": [
							{
								"operator": "OR",
								"cpeMatch": [
									{"vulnerable": true, "criteria": "cpe:2.3:a:example:server:1.0:*:*:*:*:*:*:*"},
									{"vulnerable": false, "criteria": "cpe:2.3:a:example:client:1.0:*:*:*:*:*:*:*"}
								]
							}
						]
					}
				]
			}
		}
	]
}`

func TestFetchCVE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Query().Get("cveId")).Equal("CVE-2024-12345")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(singleCVEResponse))
	}))
	defer srv.Close()

	svc := nvd.New(nvd.WithBaseURL(srv.URL))

	item, err := svc.FetchCVE(context.Background(), "CVE-2024-12345")
	gt.NoError(t, err).Required()
	gt.Value(t, item.ID).Equal("CVE-2024-12345")
	gt.Value(t, item.EnglishDescription()).Equal("Remote code execution in example server")

	metric, ok := item.BaseMetric()
	gt.Bool(t, ok).True()
	gt.Number(t, metric.BaseScore).Equal(9.8)
	gt.Value(t, metric.BaseSeverity).Equal("CRITICAL")

	products := item.AffectedProducts()
	gt.Array(t, products).Length(1)
	gt.Value(t, products[0]).Equal("cpe:2.3:a:example:server:1.0:*:*:*:*:*:*:*")
}

func TestFetchCVENotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultsPerPage":0,"startIndex":0,"totalResults":0,"vulnerabilities":[]}`))
	}))
	defer srv.Close()

	svc := nvd.New(nvd.WithBaseURL(srv.URL))

	_, err := svc.FetchCVE(context.Background(), "CVE-1999-0000")
	gt.Error(t, err)
}

func TestFetchModifiedSincePagination(t *testing.T) {
	// Two pages of one result each
	page := func(id string, startIndex int) string {
		return `{
			"resultsPerPage": 1,
			"startIndex": ` + strconv.Itoa(startIndex) + `,
			"totalResults": 2,
			"vulnerabilities": [{"cve": {"id": "` + id + `"}}]
		}`
	}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gt.Value(t, r.URL.Query().Get("lastModStartDate")).NotEqual("")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("startIndex") {
		case "0":
			_, _ = w.Write([]byte(page("CVE-2024-0001", 0)))
		case "1":
			_, _ = w.Write([]byte(page("CVE-2024-0002", 1)))
		default:
			t.Errorf("unexpected startIndex: %s", r.URL.Query().Get("startIndex"))
		}
	}))
	defer srv.Close()

	svc := nvd.New(nvd.WithBaseURL(srv.URL), nvd.WithPageSize(1))

	items, err := svc.FetchModifiedSince(context.Background(), time.Now().Add(-24*time.Hour))
	gt.NoError(t, err).Required()
	gt.Array(t, items).Length(2)
	gt.Value(t, items[0].ID).Equal("CVE-2024-0001")
	gt.Value(t, items[1].ID).Equal("CVE-2024-0002")
	gt.Number(t, requests).Equal(2)
}

func TestAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc := nvd.New(nvd.WithBaseURL(srv.URL))

	_, err := svc.FetchCVE(context.Background(), "CVE-2024-12345")
	gt.Error(t, err)
}
