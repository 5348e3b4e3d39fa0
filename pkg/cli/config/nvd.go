package config

import (
	"time"

	"github.com/secops-lab/magerisk/pkg/service/nvd"
	"github.com/urfave/cli/v3"
)

// NVD holds CLI flags for the CVE feed client
type NVD struct {
	apiKey       string
	baseURL      string
	syncEnabled  bool
	syncInterval time.Duration
}

// Flags returns CLI flags for NVD configuration
func (n *NVD) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "nvd-api-key",
			Usage:       "NVD API key (raises the feed rate limit, optional)",
			Sources:     cli.EnvVars("MAGERISK_NVD_API_KEY"),
			Destination: &n.apiKey,
		},
		&cli.StringFlag{
			Name:        "nvd-base-url",
			Usage:       "NVD CVE API base URL",
			Value:       nvd.DefaultBaseURL,
			Sources:     cli.EnvVars("MAGERISK_NVD_BASE_URL"),
			Destination: &n.baseURL,
		},
		&cli.BoolFlag{
			Name:        "cve-sync",
			Usage:       "Enable the periodic CVE feed sync worker",
			Sources:     cli.EnvVars("MAGERISK_CVE_SYNC"),
			Destination: &n.syncEnabled,
		},
		&cli.DurationFlag{
			Name:        "cve-sync-interval",
			Usage:       "Interval between CVE feed sync cycles",
			Value:       6 * time.Hour,
			Sources:     cli.EnvVars("MAGERISK_CVE_SYNC_INTERVAL"),
			Destination: &n.syncInterval,
		},
	}
}

// SyncEnabled reports whether the periodic sync worker should run
func (n *NVD) SyncEnabled() bool {
	return n.syncEnabled
}

// SyncInterval returns the configured sync interval
func (n *NVD) SyncInterval() time.Duration {
	return n.syncInterval
}

// Configure builds the NVD feed client
func (n *NVD) Configure() nvd.Service {
	opts := []nvd.Option{}
	if n.baseURL != "" {
		opts = append(opts, nvd.WithBaseURL(n.baseURL))
	}
	if n.apiKey != "" {
		opts = append(opts, nvd.WithAPIKey(n.apiKey))
	}
	return nvd.New(opts...)
}
