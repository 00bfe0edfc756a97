package scriba

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/pkg/errors"

	"github.com/gedvilas/scriba/internal/pkg/api"
	"github.com/gedvilas/scriba/internal/pkg/persistence"
	"github.com/gedvilas/scriba/internal/pkg/pipeline"
	"github.com/gedvilas/scriba/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Saver stores the uploaded audio stream
type Saver interface {
	SaveFile(ctx context.Context, ext string, r io.Reader) (string, error)
}

// Pipeline drives a recording through conversion and transcription
type Pipeline interface {
	Upload(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error)
	Run(ctx context.Context, audioPath, mimeType string) (*persistence.Recording, error)
}

// DB loads recordings for inspection
type DB interface {
	LoadRecording(ctx context.Context, id string) (*persistence.Recording, error)
	Live(ctx context.Context) error
}

// Data keeps data required for service work
type Data struct {
	Port     int
	Saver    Saver
	Pipeline Pipeline
	DB       DB
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Int("port", data.Port).Msg("Starting HTTP scriba service")
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Saver == nil {
		return errors.New("no file saver")
	}
	if data.Pipeline == nil {
		return fmt.Errorf("no pipeline")
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("scriba", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimit("25M"))
	promMdlw.Use(e)

	e.POST("/recordings", recordAndTranscribe(data))
	e.POST("/upload", upload(data))
	e.GET("/recordings/:id", recording(data))
	e.GET("/live", live(data))
	e.GET("/live/db", liveDB(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func liveDB(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if err := data.DB.Live(c.Request().Context()); err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "DB error")
		}
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK","db":"OK"}`))
	}
}

func recordAndTranscribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("recordAndTranscribe method")()
		ctx := c.Request().Context()

		audioPath, mimeType, err := saveAudio(ctx, c, data.Saver)
		if err != nil {
			return err
		}

		rec, err := data.Pipeline.Run(ctx, audioPath, mimeType)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			var pErr *pipeline.Error
			if errors.As(err, &pErr) {
				return c.JSON(http.StatusInternalServerError, api.Failure{Error: "transcription failed",
					RecordingID: pErr.ID, Details: pErr.Error()})
			}
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		return c.JSON(http.StatusCreated, mapRecording(rec))
	}
}

func upload(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload method")()
		ctx := c.Request().Context()

		audioPath, mimeType, err := saveAudio(ctx, c, data.Saver)
		if err != nil {
			return err
		}

		rec, err := data.Pipeline.Upload(ctx, audioPath, mimeType)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		return c.JSON(http.StatusCreated, mapRecording(rec))
	}
}

func recording(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("recording method")()

		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		rec, err := data.DB.LoadRecording(c.Request().Context(), id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if rec == nil {
			return echo.NewHTTPError(http.StatusNotFound, "No recording")
		}
		return c.JSON(http.StatusOK, mapRecording(rec))
	}
}

// saveAudio validates the multipart input and stores the audio bytes.
// No row is created when the audio field is missing
func saveAudio(ctx context.Context, c echo.Context, saver Saver) (string, string, error) {
	fh, err := c.FormFile(api.PrmAudio)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("no form file parameter '%s'", api.PrmAudio))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != "" && !utils.SupportAudioExt(ext) {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "wrong file extension: "+ext)
	}
	file, err := fh.Open()
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "wrong input form")
	}
	defer file.Close()

	audioPath, err := saver.SaveFile(ctx, ext, file)
	if err != nil {
		goapp.Log.Error().Err(err).Send()
		return "", "", echo.NewHTTPError(http.StatusInternalServerError)
	}
	return audioPath, takeMimeType(fh), nil
}

func takeMimeType(fh *multipart.FileHeader) string {
	res := fh.Header.Get("Content-Type")
	if res == "" {
		res = "application/octet-stream"
	}
	return res
}

func mapRecording(rec *persistence.Recording) *api.Recording {
	return &api.Recording{ID: rec.ID, Created: rec.Created, AudioPath: rec.AudioPath,
		MimeType: rec.MimeType, Status: rec.Status,
		Transcript: utils.FromSQLStr(rec.Transcript), Error: utils.FromSQLStr(rec.Error)}
}
