// Package memory provides an in-memory repository used for development and
// tests. It mirrors the firestore implementation behavior, including the
// one-active-risk-per-triple invariant.
package memory

import (
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/domain/model"
)

// ErrNotFound aliases the shared sentinel so call sites read the same in
// both repository implementations
var ErrNotFound = model.ErrNotFound

type Memory struct {
	asset     *assetRepository
	threat    *threatRepository
	vuln      *vulnerabilityRepository
	risk      *riskRepository
	safeguard *safeguardRepository
	user      *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		asset:     newAssetRepository(),
		threat:    newThreatRepository(),
		vuln:      newVulnerabilityRepository(),
		risk:      newRiskRepository(),
		safeguard: newSafeguardRepository(),
		user:      newUserRepository(),
	}
}

func (m *Memory) Asset() interfaces.AssetRepository {
	return m.asset
}

func (m *Memory) Threat() interfaces.ThreatRepository {
	return m.threat
}

func (m *Memory) Vulnerability() interfaces.VulnerabilityRepository {
	return m.vuln
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Safeguard() interfaces.SafeguardRepository {
	return m.safeguard
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
