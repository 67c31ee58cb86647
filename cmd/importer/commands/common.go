package commands

import (
	"context"
	"os"
	"time"

	"github.com/DRSN-tech/furniture-search/internal/app"
	config "github.com/DRSN-tech/furniture-search/internal/cfg"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/urfave/cli/v3"
)

const closeTimeout = 10 * time.Second

// withCore загружает конфигурацию из env-файла, поднимает Core и закрывает его после fn.
func withCore(ctx context.Context, cmd *cli.Command, log logger.Logger, fn func(ctx context.Context, core *app.Core) error) error {
	if env := cmd.String("env"); env != "" {
		os.Setenv("ENV_FILE", env)
	}

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}

	core, err := app.NewCore(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := core.Close(closeCtx); err != nil {
			log.Warnf("close: %v", err)
		}
	}()

	return fn(ctx, core)
}
