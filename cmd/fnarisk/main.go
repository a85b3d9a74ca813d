// Command fnarisk is the host shell around the risk scoring engine: it loads
// the feature schema and trained model artifact, wires metrics and the
// optional audit store, and exposes single-sample and batch assessment
// commands. The engine API itself stays free of CLI concerns.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"fna-risk/internal/cfg"
	"fna-risk/internal/engine"
	"fna-risk/internal/ingest"
	"fna-risk/internal/metrics"
	"fna-risk/internal/model"
	"fna-risk/internal/storage"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	root := &cli.Command{
		Name:  "fnarisk",
		Usage: "Breast cancer malignancy risk assessment from FNA biopsy measurements",
		Commands: []*cli.Command{
			assessCommand(),
			batchCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// app holds the wired host components shared by all commands.
type app struct {
	settings cfg.Settings
	scorer   *engine.Scorer
	metrics  *metrics.Metrics
	store    *storage.Store
	modelVer string
}

func newApp() (*app, error) {
	settings, err := cfg.Load()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	schema, err := ingest.LoadSchema(settings.SchemaPath)
	if err != nil {
		return nil, err
	}

	forest, err := model.Load(settings.ModelPath, settings.ModelSHA256)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	if !forest.Meta.CreatedAt.IsZero() {
		m.ModelAge.Set(time.Since(forest.Meta.CreatedAt).Seconds())
	}

	scorer, err := engine.NewScorer(schema, forest, m)
	if err != nil {
		return nil, fmt.Errorf("scorer init failed: %w", err)
	}

	a := &app{
		settings: settings,
		scorer:   scorer,
		metrics:  m,
		modelVer: forest.Meta.Version,
	}

	if settings.DataPath != "" {
		store, err := storage.New(settings.DataPath)
		if err != nil {
			log.Warn().Err(err).Str("data_path", settings.DataPath).
				Msg("audit store unavailable, continuing without it")
		} else {
			a.store = store
		}
	}

	if settings.MetricsPort > 0 {
		startMetricsServer(settings.MetricsPort)
	}

	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("audit store close failed")
		}
	}
}

func (a *app) audit(id string, res *engine.RiskResult) {
	if a.store == nil || res == nil {
		return
	}

	top := res.ContributingFeatures
	if len(top) > 3 {
		top = top[:3]
	}
	record := storage.AssessmentRecord{
		SampleID:   id,
		Timestamp:  time.Now(),
		Label:      res.Label,
		Confidence: res.Confidence,
		TopFactors: top,
		ModelVer:   a.modelVer,
	}
	if err := a.store.StoreAssessment(record); err != nil {
		log.Warn().Err(err).Str("sample_id", id).Msg("audit write failed")
	}
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", port).Msg("metrics server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func assessCommand() *cli.Command {
	return &cli.Command{
		Name:  "assess",
		Usage: "Score a single sample from a JSON file or --set flags",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "JSON file mapping feature names to values"},
			&cli.StringSliceFlag{Name: "set", Usage: "feature value as name=value, repeatable"},
			&cli.StringFlag{Name: "id", Usage: "sample identifier for the audit log", Value: "sample"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			sample, err := readSample(cmd.String("input"), cmd.StringSlice("set"))
			if err != nil {
				return err
			}

			res, err := a.scorer.Score(sample)
			if err != nil {
				return fmt.Errorf("assessment failed: %w", err)
			}
			a.audit(cmd.String("id"), res)

			out := struct {
				ID string `json:"id"`
				*engine.RiskResult
				NeedsReview bool `json:"needs_review"`
			}{
				ID:          cmd.String("id"),
				RiskResult:  res,
				NeedsReview: res.Confidence < a.settings.ReviewThreshold,
			}
			return writeJSON(os.Stdout, out)
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Score every row of a CSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "CSV file with a header row", Required: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: json or csv", Value: "json"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(cmd.String("input"))
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()

			batch, err := ingest.ReadSamples(f, a.scorer.Schema())
			if err != nil {
				return err
			}

			if a.settings.BatchTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, a.settings.BatchTimeout)
				defer cancel()
			}

			result := a.scorer.ScoreBatch(ctx, batch.Samples, a.settings.BatchWorkers)
			a.metrics.ObserveBatch(len(result.PerRow), result.Summary.ErrorCount)

			for _, row := range result.PerRow {
				if row.Err == nil {
					a.audit(batch.IDs[row.RowIndex], row.Result)
				}
			}

			log.Info().
				Int("rows", len(result.PerRow)).
				Int("scored", result.Summary.Count).
				Int("errors", result.Summary.ErrorCount).
				Msg("batch complete")

			out := os.Stdout
			if path := cmd.String("output"); path != "" {
				out, err = os.Create(path)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer out.Close()
			}

			switch cmd.String("format") {
			case "csv":
				return ingest.WriteResults(out, batch, result)
			case "json":
				return writeJSON(out, renderBatch(batch, result))
			default:
				return fmt.Errorf("unknown format %q", cmd.String("format"))
			}
		},
	}
}

// batchView is the JSON rendering of a batch result. Errors become strings
// here, at the presentation boundary; the engine only ever returns typed
// error values.
type batchView struct {
	PerRow  []rowView   `json:"per_row"`
	Summary summaryView `json:"summary"`
}

type rowView struct {
	RowIndex int                `json:"row_index"`
	ID       string             `json:"id,omitempty"`
	Result   *engine.RiskResult `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type summaryView struct {
	Count            int      `json:"count"`
	MalignantCount   int      `json:"malignant_count"`
	BenignCount      int      `json:"benign_count"`
	ErrorCount       int      `json:"error_count"`
	MeanConfidence   *float64 `json:"mean_confidence"`
	NoSuccessfulRows bool     `json:"no_successful_rows,omitempty"`
}

func renderBatch(batch *ingest.Batch, result *engine.BatchResult) batchView {
	view := batchView{
		PerRow: make([]rowView, len(result.PerRow)),
		Summary: summaryView{
			Count:          result.Summary.Count,
			MalignantCount: result.Summary.MalignantCount,
			BenignCount:    result.Summary.BenignCount,
			ErrorCount:     result.Summary.ErrorCount,
		},
	}

	for i, row := range result.PerRow {
		v := rowView{RowIndex: row.RowIndex, Result: row.Result}
		if row.RowIndex < len(batch.IDs) {
			v.ID = batch.IDs[row.RowIndex]
		}
		if row.Err != nil {
			v.Error = row.Err.Error()
		}
		view.PerRow[i] = v
	}

	if mean, err := result.Summary.MeanConfidence(); err == nil {
		view.Summary.MeanConfidence = &mean
	} else {
		view.Summary.NoSuccessfulRows = true
	}

	return view
}

func readSample(inputPath string, sets []string) (engine.Sample, error) {
	sample := engine.Sample{}

	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("read sample file: %w", err)
		}
		if err := json.Unmarshal(data, &sample); err != nil {
			return nil, fmt.Errorf("parse sample file: %w", err)
		}
	}

	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --set %q, want name=value", set)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed value in --set %q: %w", set, err)
		}
		sample[strings.TrimSpace(name)] = v
	}

	if len(sample) == 0 {
		return nil, fmt.Errorf("no sample provided; use --input or --set")
	}
	return sample, nil
}

func writeJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
