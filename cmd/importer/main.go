package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/DRSN-tech/furniture-search/cmd/importer/commands"
	"github.com/DRSN-tech/furniture-search/pkg/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewSlogLogger()

	envFlag := &cli.StringFlag{
		Name:    "env",
		Usage:   "путь к файлу переменных окружения",
		Value:   ".env",
		Sources: cli.EnvVars("ENV_FILE"),
	}

	app := &cli.Command{
		Name:  "importer",
		Usage: "загрузка и обслуживание индекса каталога",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "импортировать товары из папки data/<sku>/",
				Flags: []cli.Flag{
					envFlag,
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "папка с товарами (по умолчанию IMPORT_DATA_DIR)",
					},
					&cli.IntFlag{
						Name:  "batch",
						Usage: "размер пачки записи",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "очистить каталог перед импортом",
					},
				},
				Action: commands.ImportAction(log),
			},
			{
				Name:  "reindex",
				Usage: "пересобрать векторный индекс из сохранённых эмбеддингов",
				Flags: []cli.Flag{
					envFlag,
					&cli.IntFlag{
						Name:  "batch",
						Usage: "размер страницы",
						Value: 100,
					},
				},
				Action: commands.ReindexAction(log),
			},
			{
				Name:   "reset",
				Usage:  "удалить все товары и пересоздать векторный индекс",
				Flags:  []cli.Flag{envFlag},
				Action: commands.ResetAction(log),
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Errorf(err, "importer failed")
		os.Exit(1)
	}
}
