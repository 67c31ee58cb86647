package commands

import (
	"context"

	"github.com/DRSN-tech/furniture-search/internal/app"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/urfave/cli/v3"
)

func ReindexAction(log logger.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return withCore(ctx, cmd, log, func(ctx context.Context, core *app.Core) error {
			n, err := core.Catalog.Reindex(ctx, int(cmd.Int("batch")))
			if err != nil {
				return err
			}

			log.Infof("reindex finished: %d items", n)
			return nil
		})
	}
}

func ResetAction(log logger.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return withCore(ctx, cmd, log, func(ctx context.Context, core *app.Core) error {
			return core.Catalog.Reset(ctx)
		})
	}
}
