package nvd

// Response is the paginated envelope returned by the NVD CVE API 2.0.
type Response struct {
	ResultsPerPage  int             `json:"resultsPerPage"`
	StartIndex      int             `json:"startIndex"`
	TotalResults    int             `json:"totalResults"`
	Format          string          `json:"format"`
	Version         string          `json:"version"`
	Timestamp       string          `json:"timestamp"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Vulnerability wraps a single CVE entry in the response.
type Vulnerability struct {
	CVE CVEItem `json:"cve"`
}

// CVEItem is the CVE record as served by the API 2.0 endpoint.
type CVEItem struct {
	ID               string        `json:"id"`
	SourceIdentifier string        `json:"sourceIdentifier"`
	Published        string        `json:"published"`
	LastModified     string        `json:"lastModified"`
	VulnStatus       string        `json:"vulnStatus"`
	Descriptions     []Description `json:"descriptions"`
	Metrics          Metrics       `json:"metrics"`
	Configurations   []Config      `json:"configurations"`
}

type Description struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Metrics carries the CVSS metric sets. Only one of the slices is
// populated per record depending on which CVSS version NVD scored it with.
type Metrics struct {
	CVSSMetricV31 []CVSSMetric `json:"cvssMetricV31"`
	CVSSMetricV30 []CVSSMetric `json:"cvssMetricV30"`
	CVSSMetricV2  []CVSSMetric `json:"cvssMetricV2"`
}

type CVSSMetric struct {
	Source   string   `json:"source"`
	Type     string   `json:"type"`
	CVSSData CVSSData `json:"cvssData"`
}

type CVSSData struct {
	Version      string  `json:"version"`
	VectorString string  `json:"vectorString"`
	BaseScore    float64 `json:"baseScore"`
	BaseSeverity string  `json:"baseSeverity"`
}

type Config struct {
	Nodes []Node `json:"nodes"`
}

type Node struct {
	Operator string     `json:"operator"`
	Negate   bool       `json:"negate"`
	CPEMatch []CPEMatch `json:"cpeMatch"`
}

type CPEMatch struct {
	Vulnerable      bool   `json:"vulnerable"`
	Criteria        string `json:"criteria"`
	MatchCriteriaID string `json:"matchCriteriaId"`
}

// EnglishDescription returns the first English description of the CVE,
// or an empty string when none is present.
func (c *CVEItem) EnglishDescription() string {
	for _, desc := range c.Descriptions {
		if desc.Lang == "en" {
			return desc.Value
		}
	}
	return ""
}

// BaseMetric returns the preferred CVSS metric of the CVE, favoring the
// newest CVSS version available. The second return value is false when
// the record carries no metric at all.
func (c *CVEItem) BaseMetric() (CVSSData, bool) {
	for _, set := range [][]CVSSMetric{
		c.Metrics.CVSSMetricV31,
		c.Metrics.CVSSMetricV30,
		c.Metrics.CVSSMetricV2,
	} {
		if len(set) > 0 {
			return set[0].CVSSData, true
		}
	}
	return CVSSData{}, false
}

// AffectedProducts extracts the vulnerable CPE criteria strings from the
// CVE configurations.
func (c *CVEItem) AffectedProducts() []string {
	var products []string
	for _, cfg := range c.Configurations {
		for _, node := range cfg.Nodes {
			for _, match := range node.CPEMatch {
				if match.Vulnerable {
					products = append(products, match.Criteria)
				}
			}
		}
	}
	return products
}
