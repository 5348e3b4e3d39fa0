package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrAssetNotFound         = errors.New("asset not found")
	ErrThreatNotFound        = errors.New("threat not found")
	ErrVulnerabilityNotFound = errors.New("vulnerability not found")
	ErrRiskNotFound          = errors.New("risk not found")
	ErrSafeguardNotFound     = errors.New("safeguard not found")
	ErrUserNotFound          = errors.New("user not found")

	// Integrity errors
	ErrAssetHasDependents = errors.New("asset is a dependency of other assets")
	ErrDuplicateEntity    = errors.New("entity already exists")

	// Access errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Context keys for error values
const (
	AssetIDKey         = "asset_id"
	ThreatIDKey        = "threat_id"
	VulnerabilityIDKey = "vulnerability_id"
	RiskIDKey          = "risk_id"
	SafeguardIDKey     = "safeguard_id"
	UserEmailKey       = "user_email"
)
