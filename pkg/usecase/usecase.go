package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/interfaces"
	"github.com/secops-lab/magerisk/pkg/service/notify"
	"github.com/secops-lab/magerisk/pkg/service/riskcalc"
)

type UseCases struct {
	repo     interfaces.Repository
	policy   riskcalc.Policy
	notifier notify.Service
	cacheTTL time.Duration
	now      func() time.Time

	Asset         *AssetUseCase
	Threat        *ThreatUseCase
	Vulnerability *VulnerabilityUseCase
	Risk          *RiskUseCase
	Safeguard     *SafeguardUseCase
	User          *UserUseCase
}

type Option func(*UseCases)

// WithPolicy overrides the default risk engine policy
func WithPolicy(policy riskcalc.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithNotifier enables notifications for risks reaching the critical level
func WithNotifier(notifier notify.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

// WithCacheTTL sets the TTL of the matrix and dashboard caches
func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.cacheTTL = ttl
	}
}

// WithClock replaces the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:   repo,
		policy: riskcalc.DefaultPolicy(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	calculator, err := riskcalc.New(uc.policy)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build risk calculator")
	}

	uc.Risk = newRiskUseCase(repo, calculator, uc.notifier, uc.cacheTTL, uc.now)
	uc.Asset = newAssetUseCase(repo, uc.Risk)
	uc.Threat = newThreatUseCase(repo, calculator.Policy(), uc.Risk, uc.now)
	uc.Vulnerability = newVulnerabilityUseCase(repo, uc.Risk, uc.now)
	uc.Safeguard = newSafeguardUseCase(repo, uc.now)
	uc.User = newUserUseCase(repo, uc.now)

	return uc, nil
}
