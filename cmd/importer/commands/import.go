package commands

import (
	"context"

	"github.com/DRSN-tech/furniture-search/internal/app"
	"github.com/DRSN-tech/furniture-search/internal/importer"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/urfave/cli/v3"
)

func ImportAction(log logger.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return withCore(ctx, cmd, log, func(ctx context.Context, core *app.Core) error {
			if cmd.Bool("reset") {
				if err := core.Catalog.Reset(ctx); err != nil {
					return err
				}
			}

			dataDir := cmd.String("data-dir")
			if dataDir == "" {
				dataDir = core.Cfg.Import.DataDir
			}

			imp := importer.New(core.Catalog, core.Images, importer.Config{
				Workers:       core.Cfg.Import.Workers,
				UploadRetries: core.Cfg.Import.UploadRetries,
				BatchSize:     int(cmd.Int("batch")),
			}, log)

			report, err := imp.Import(ctx, dataDir)
			if err != nil {
				return err
			}

			log.Infof("import finished: %d imported, %d skipped", report.Imported, report.Skipped)
			return nil
		})
	}
}
