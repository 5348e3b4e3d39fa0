package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/cli/config"
	"github.com/secops-lab/magerisk/pkg/usecase"
	"github.com/secops-lab/magerisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdIngestCVE() *cli.Command {
	var cveIDs []string
	var lookback time.Duration
	var repoCfg config.Repository
	var policyCfg config.Policy
	var nvdCfg config.NVD

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "cve",
			Usage:       "CVE IDs to ingest (repeatable). When omitted, recently modified records are pulled",
			Destination: &cveIDs,
		},
		&cli.DurationFlag{
			Name:        "lookback",
			Usage:       "How far back to pull modified CVE records when no IDs are given",
			Value:       7 * 24 * time.Hour,
			Destination: &lookback,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, nvdCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest-cve",
		Usage: "Ingest CVE records from the NVD feed as threats and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load engine policy")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc, err := usecase.New(repo, usecase.WithPolicy(policy))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			nvdSvc := nvdCfg.Configure()
			logger := logging.Default()

			if len(cveIDs) > 0 {
				for _, cveID := range cveIDs {
					item, err := nvdSvc.FetchCVE(ctx, cveID)
					if err != nil {
						return goerr.Wrap(err, "failed to fetch CVE", goerr.V("cve", cveID))
					}
					threat, err := uc.Threat.UpsertFromCVE(ctx, item)
					if err != nil {
						return goerr.Wrap(err, "failed to ingest CVE", goerr.V("cve", cveID))
					}
					logger.Info("Ingested CVE", "cve", cveID, "probability", threat.Probability)
				}
				return nil
			}

			since := time.Now().Add(-lookback)
			items, err := nvdSvc.FetchModifiedSince(ctx, since)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch modified CVE records")
			}

			var ingested, failed int
			for i := range items {
				if _, err := uc.Threat.UpsertFromCVE(ctx, &items[i]); err != nil {
					logger.Error("failed to ingest CVE record", "cve", items[i].ID, "error", err.Error())
					failed++
					continue
				}
				ingested++
			}

			logger.Info("CVE ingestion completed",
				"since", since,
				"ingested", ingested,
				"failed", failed)
			return nil
		},
	}
}
