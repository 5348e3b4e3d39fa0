package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Asset() AssetRepository
	Threat() ThreatRepository
	Vulnerability() VulnerabilityRepository
	Risk() RiskRepository
	Safeguard() SafeguardRepository
	User() UserRepository

	Close() error
}
