package nvd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/utils/safe"
)

const (
	// DefaultBaseURL is the NVD CVE API 2.0 endpoint.
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"

	// DefaultPageSize is the number of CVE records requested per page.
	// The API caps resultsPerPage at 2000.
	DefaultPageSize = 2000
)

// Service fetches CVE records from the NVD API.
type Service interface {
	FetchCVE(ctx context.Context, cveID string) (*CVEItem, error)
	FetchModifiedSince(ctx context.Context, since time.Time) ([]CVEItem, error)
}

// client implements Service against the NVD CVE API 2.0
type client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithAPIKey sets the NVD API key. Keyed requests get a higher rate limit.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithPageSize sets resultsPerPage for paginated queries.
func WithPageSize(size int) Option {
	return func(c *client) {
		c.pageSize = size
	}
}

// New creates a new NVD API client
func New(opts ...Option) Service {
	c := &client{
		baseURL:    DefaultBaseURL,
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchCVE retrieves a single CVE record by its ID
func (c *client) FetchCVE(ctx context.Context, cveID string) (*CVEItem, error) {
	if cveID == "" {
		return nil, goerr.New("CVE ID is required")
	}

	resp, err := c.query(ctx, url.Values{"cveId": []string{cveID}})
	if err != nil {
		return nil, err
	}

	if len(resp.Vulnerabilities) == 0 {
		return nil, goerr.New("CVE not found in NVD", goerr.V("cve_id", cveID))
	}

	return &resp.Vulnerabilities[0].CVE, nil
}

// FetchModifiedSince retrieves all CVE records modified after the given
// time, following the API pagination until the full window is consumed.
func (c *client) FetchModifiedSince(ctx context.Context, since time.Time) ([]CVEItem, error) {
	var items []CVEItem
	startIndex := 0

	for {
		params := url.Values{
			// NVD requires both ends of the modification window
			"lastModStartDate": []string{since.UTC().Format(time.RFC3339)},
			"lastModEndDate":   []string{time.Now().UTC().Format(time.RFC3339)},
			"resultsPerPage":   []string{strconv.Itoa(c.pageSize)},
			"startIndex":       []string{strconv.Itoa(startIndex)},
		}

		resp, err := c.query(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, v := range resp.Vulnerabilities {
			items = append(items, v.CVE)
		}

		startIndex += len(resp.Vulnerabilities)
		if startIndex >= resp.TotalResults || len(resp.Vulnerabilities) == 0 {
			break
		}
	}

	return items, nil
}

func (c *client) query(ctx context.Context, params url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build NVD request")
	}
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call NVD API")
	}
	defer safe.Close(ctx, httpResp.Body)

	if httpResp.StatusCode != http.StatusOK {
		return nil, goerr.New("NVD API returned non-OK status",
			goerr.V("status", httpResp.StatusCode),
			goerr.V("url", c.baseURL))
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode NVD response")
	}

	return &resp, nil
}
