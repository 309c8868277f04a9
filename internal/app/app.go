package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"movie_keywords/internal/config"
	"movie_keywords/internal/db"
	"movie_keywords/internal/filter"
	"movie_keywords/internal/keywords"
	"movie_keywords/internal/logger"
	"movie_keywords/internal/metrics"
	"movie_keywords/internal/output"
	"movie_keywords/internal/report"
)

// KeywordApp runs one keyword extraction: classify every movie of the
// corpus, collect the names of eligible ones and write the keyword files.
type KeywordApp struct {
	config  *config.Config
	log     logger.Logger
	metrics *metrics.Metrics
	stdout  io.Writer
	runID   string
}

// Result summarises a finished run.
type Result struct {
	RunID       string
	Accumulator *keywords.Accumulator
	Files       []output.File
}

func NewKeywordApp(cfg *config.Config, log logger.Logger) (*KeywordApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	runID := uuid.NewString()
	return &KeywordApp{
		config:  cfg,
		log:     log.With(logger.String("run_id", runID)),
		metrics: metrics.New(),
		stdout:  os.Stdout,
		runID:   runID,
	}, nil
}

// SetOutput redirects the summary tables, which go to stdout by default.
func (a *KeywordApp) SetOutput(w io.Writer) {
	a.stdout = w
}

// Run connects to MongoDB and processes the configured collection.
func (a *KeywordApp) Run(ctx context.Context) (*Result, error) {
	a.log.Info("connecting to MongoDB",
		logger.String("host", a.config.DB.Host),
		logger.Int("port", a.config.DB.Port),
		logger.String("database", a.config.DB.Database),
		logger.String("collection", a.config.DB.Collection))

	mongoDB, err := db.NewMongoDB(ctx, a.config.DB)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := mongoDB.Close(); err != nil {
			a.log.Warn("failed to disconnect from MongoDB", logger.Error(err))
		}
	}()

	return a.Process(ctx, mongoDB)
}

// Process runs the corpus pass over src and writes the results.
func (a *KeywordApp) Process(ctx context.Context, src keywords.Source) (*Result, error) {
	policy, err := a.config.Policy()
	if err != nil {
		return nil, err
	}

	agg := keywords.NewAggregator(filter.New(policy, a.log), a.log, keywords.Options{
		ProgressEvery: a.config.Keywords.ProgressEvery,
		Cleaner:       keywords.NewCleaner(a.config.Keywords.StripMarkup, a.config.Keywords.NormalizeURLs),
		Recorder:      a.metrics,
	})

	acc, err := agg.Run(ctx, src)
	if err != nil {
		return nil, err
	}

	report.Log(a.log, acc)
	report.Render(a.stdout, acc)

	files, err := output.NewWriter(a.config.Output.Dir, a.log).WriteAll(acc)
	if err != nil {
		return nil, fmt.Errorf("write keyword files: %w", err)
	}

	a.metrics.RecordKeywords(acc)
	a.metrics.MarkSuccess()
	if path := a.config.Output.MetricsFile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.log.Warn("failed to write metrics", logger.Error(err))
		}
	}

	return &Result{RunID: a.runID, Accumulator: acc, Files: files}, nil
}
