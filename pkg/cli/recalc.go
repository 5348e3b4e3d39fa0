package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/cli/config"
	"github.com/secops-lab/magerisk/pkg/usecase"
	"github.com/secops-lab/magerisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRecalc() *cli.Command {
	var repoCfg config.Repository
	var policyCfg config.Policy

	flags := []cli.Flag{}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "recalc",
		Usage: "Recalculate every active risk record and exit",
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

			summary, err := uc.Risk.RecalculateAll(ctx)
			if err != nil {
				return goerr.Wrap(err, "recalculation failed")
			}

			logging.Default().Info("Recalculation completed",
				"processed", summary.Processed,
				"errors", summary.Errors)
			return nil
		},
	}
}
