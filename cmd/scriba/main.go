package main

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
	"github.com/gedvilas/scriba/internal/pkg/convert"
	"github.com/gedvilas/scriba/internal/pkg/localfs"
	"github.com/gedvilas/scriba/internal/pkg/pipeline"
	"github.com/gedvilas/scriba/internal/pkg/postgres"
	"github.com/gedvilas/scriba/internal/pkg/runner"
	"github.com/gedvilas/scriba/internal/pkg/scriba"
	"github.com/gedvilas/scriba/internal/pkg/utils"
	"github.com/gedvilas/scriba/internal/pkg/whisper"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &scriba.Data{}
	data.Port = cfg.GetInt("port")
	var err error

	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	if err := waitForDB(ctx, db); err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't access db")
	}
	data.DB = db

	rootDir := cfg.GetString("root.dir")
	data.Saver, err = localfs.NewFiler(rootDir, cfg.GetString("uploads.dir"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init file saver")
	}

	execRunner := runner.NewExec()

	converter, err := convert.NewConverter(cfg.GetString("ffmpeg.bin"), execRunner)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init converter")
	}

	transcriber, err := whisper.NewAdapter(cfg.GetString("whisper.bin"),
		cfg.GetString("whisper.model"), cfg.GetString("transcripts.dir"), execRunner)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init whisper adapter")
	}

	data.Pipeline, err = pipeline.NewPipeline(pipeline.Data{DB: db, Converter: converter,
		Transcriber: transcriber, RootDir: rootDir, Timeout: cfg.GetDuration("process.timeout")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init pipeline")
	}

	go utils.RunPerfEndpoint()

	err = scriba.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
}

func waitForDB(ctx context.Context, db *postgres.DB) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8), ctx)
	return backoff.Retry(func() error {
		err := db.Live(ctx)
		if err != nil {
			goapp.Log.Warn().Err(err).Msg("waiting for db")
		}
		return err
	}, bo)
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
   _____ __________  ________  ___
  / ___// ____/ __ \/  _/ __ )/   |
  \__ \/ /   / /_/ // // __  / /| |
 ___/ / /___/ _, _// // /_/ / ___ |
/____/\____/_/ |_/___/_____/_/  |_|  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/gedvilas/scriba"))
}
