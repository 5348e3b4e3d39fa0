package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/secops-lab/magerisk/pkg/service/riskcalc"
	"github.com/urfave/cli/v3"
)

// Policy holds the CLI flag pointing at the engine policy file
type Policy struct {
	path string
}

// policyDoc is the TOML shape of the policy file. All fields are optional;
// absent fields keep their stock values.
type policyDoc struct {
	Thresholds struct {
		Critical float64 `toml:"critical"`
		High     float64 `toml:"high"`
		Medium   float64 `toml:"medium"`
		Low      float64 `toml:"low"`
	} `toml:"thresholds"`
	DefaultExploitFactor float64            `toml:"default_exploit_factor"`
	EconomicAnchor       float64            `toml:"economic_anchor"`
	SeverityProbability  map[string]float64 `toml:"severity_probability"`
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "Path to the risk engine policy file (TOML). Stock policy is used when omitted",
			Sources:     cli.EnvVars("MAGERISK_POLICY_FILE"),
			Destination: &p.path,
		},
	}
}

// Configure loads the engine policy, applying file overrides on top of the
// stock policy when a file is configured
func (p *Policy) Configure() (riskcalc.Policy, error) {
	policy := riskcalc.DefaultPolicy()
	if p.path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, goerr.Wrap(ErrConfigNotFound, "policy file not found",
				goerr.V(ConfigPathKey, p.path))
		}
		return policy, goerr.Wrap(err, "failed to read policy file", goerr.V(ConfigPathKey, p.path))
	}

	doc := policyDoc{
		DefaultExploitFactor: policy.DefaultExploitFactor,
		EconomicAnchor:       policy.EconomicAnchor,
	}
	doc.Thresholds.Critical = policy.CriticalThreshold
	doc.Thresholds.High = policy.HighThreshold
	doc.Thresholds.Medium = policy.MediumThreshold
	doc.Thresholds.Low = policy.LowThreshold

	if err := toml.Unmarshal(data, &doc); err != nil {
		return policy, goerr.Wrap(ErrInvalidConfig, "failed to parse policy file",
			goerr.V(ConfigPathKey, p.path), goerr.V("parse_error", err.Error()))
	}

	policy.CriticalThreshold = doc.Thresholds.Critical
	policy.HighThreshold = doc.Thresholds.High
	policy.MediumThreshold = doc.Thresholds.Medium
	policy.LowThreshold = doc.Thresholds.Low
	policy.DefaultExploitFactor = doc.DefaultExploitFactor
	policy.EconomicAnchor = doc.EconomicAnchor

	for raw, prob := range doc.SeverityProbability {
		sev, err := types.ParseCVESeverity(raw)
		if err != nil {
			return policy, goerr.Wrap(ErrInvalidConfig, "invalid severity in policy file",
				goerr.V(ConfigPathKey, p.path), goerr.V("severity", raw))
		}
		policy.SeverityProbability[sev] = prob
	}

	if err := policy.Validate(); err != nil {
		return policy, goerr.Wrap(err, "invalid policy file", goerr.V(ConfigPathKey, p.path))
	}

	return policy, nil
}
