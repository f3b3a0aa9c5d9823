package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"emoeval/internal/aggregate"
	"emoeval/internal/config"
	"emoeval/internal/dataset"
	"emoeval/internal/inference"
	"emoeval/internal/spec"
)

// Run executes every selected task against the dataset. Setup problems are
// returned as errors before any call is made; per-trial failures are
// recorded and never abort the run. When ctx is cancelled no new trials
// are scheduled and the completed records are returned.
func Run(ctx context.Context, cfg spec.Config, params RunParams) (Results, error) {
	root, err := resolveRoot(params.Root)
	if err != nil {
		return Results{}, err
	}
	plans, err := planTasks(cfg, root, params.TaskIDs, params.ModelOverride)
	if err != nil {
		return Results{}, err
	}
	datasetPath := config.ResolvePath(root, cfg.Dataset)
	ds, err := dataset.Load(datasetPath)
	if err != nil {
		return Results{}, err
	}
	trials := dataset.Limit(ds.Trials(), params.Limit)

	endpoint := inference.Endpoint{
		Kind:       cfg.Endpoint.Kind,
		URL:        cfg.Endpoint.URL,
		InstanceID: cfg.Endpoint.InstanceID,
		PlatformID: cfg.Endpoint.PlatformID,
		Token:      params.Credentials.Token,
		Timeout:    time.Duration(cfg.Endpoint.TimeoutSeconds * float64(time.Second)),
	}
	clientFactory := params.Deps.ClientFactory
	if clientFactory == nil {
		clientFactory = inference.NewClient
	}
	client, err := clientFactory(endpoint)
	if err != nil {
		return Results{}, fmt.Errorf("create inference client: %w", err)
	}

	runID, err := ensureRunID(params.Deps.RunID)
	if err != nil {
		return Results{}, err
	}
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	sleep := params.Deps.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := params.Deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := params.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	workers := max(cfg.Rate.Workers, 1)
	delay := DefaultDelay
	if cfg.Rate.DelayMS != nil {
		delay = time.Duration(*cfg.Rate.DelayMS) * time.Millisecond
	}
	limiter := newLimiter(cfg.Rate.MaxPerSecond)
	verboseWriter := syncVerboseWriter(workers, params.VerboseWriter)
	topK := cfg.Report.TopK

	results := Results{
		RunID:     runID,
		Dataset:   cfg.Dataset,
		Endpoint:  EndpointInfo{Kind: endpoint.Kind, URL: endpoint.URL},
		StartedAt: now(),
	}
	logger.Info("run started",
		zap.String("run_id", runID),
		zap.String("dataset", datasetPath),
		zap.Int("trials", len(trials)),
		zap.Int("tasks", len(plans)),
		zap.Int("workers", workers),
	)
	logVerbose(params.Verbose, verboseWriter, params.NoColor, styleTask,
		"run %s: %d trials x %d tasks, %d workers, delay %s", runID, len(trials), len(plans), workers, delay)
	observer.OnRunStart(runID, cfg.Dataset)

	for _, plan := range plans {
		if ctx.Err() != nil {
			break
		}
		observer.OnTaskStart(plan.Task.ID, plan.Model, len(trials))
		logVerbose(params.Verbose, verboseWriter, params.NoColor, styleTask,
			"task %s: model %s, calls %v", plan.Task.ID, plan.Model, plan.callIDs())

		runner := &taskRunner{
			plan:          plan,
			client:        client,
			observer:      observer,
			logger:        logger,
			now:           now,
			verbose:       params.Verbose,
			verboseWriter: verboseWriter,
			noColor:       params.NoColor,
			total:         len(trials),
		}
		for _, trial := range trials {
			runner.emit(trial, TrialEvent{Type: TrialQueued})
		}
		batch := NewBatch(len(trials))
		pacers := make([]*pacer, workers)
		for i := range pacers {
			pacers[i] = &pacer{delay: delay, limiter: limiter, sleep: sleep}
		}
		if workers == 1 {
			runSequential(ctx, trials, pacers[0], batch, runner.runTrial)
		} else if err := runPooled(ctx, trials, pacers, batch, runner.runTrial); err != nil {
			return Results{}, err
		}

		task := TaskResult{
			TaskID:        plan.Task.ID,
			Model:         plan.Model,
			Temperature:   plan.Temperature,
			AccuracyField: plan.AccuracyField,
			Calls:         plan.callInfo(),
			Fields:        plan.Fields,
			Planned:       len(trials),
			Records:       batch.Records(),
		}
		task.Summary = aggregate.Summarize(task.Records, task.SummaryOptions(topK))
		results.Tasks = append(results.Tasks, task)
		logTaskEnd(logger, task)
		observer.OnTaskEnd(task)
	}

	if err := ctx.Err(); err != nil {
		results.Cancelled = true
		logger.Warn("run cancelled", zap.Error(err))
		logVerbose(params.Verbose, verboseWriter, params.NoColor, styleError, "run cancelled: %v", err)
	}
	results.FinishedAt = now()
	observer.OnRunEnd(results)
	return results, nil
}

// RunAndWrite runs and persists the results. Outputs are written even when
// ctx was cancelled mid-run.
func RunAndWrite(ctx context.Context, cfg spec.Config, params RunParams) (Results, OutputPaths, error) {
	root, err := resolveRoot(params.Root)
	if err != nil {
		return Results{}, OutputPaths{}, err
	}
	params.Root = root
	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = config.ResolvePath(root, cfg.OutputDir)
	}
	runID, err := ensureRunID(params.Deps.RunID)
	if err != nil {
		return Results{}, OutputPaths{}, err
	}
	params.Deps.RunID = func() (string, error) { return runID, nil }
	paths, err := NewOutputPaths(outputDir, runID)
	if err != nil {
		return Results{}, OutputPaths{}, err
	}

	if params.Deps.Logger == nil {
		logger, closeLog, err := NewFileLogger(paths.LogPath())
		if err != nil {
			return Results{}, OutputPaths{}, err
		}
		defer func() { _ = closeLog() }()
		params.Deps.Logger = logger
	}

	results, err := Run(ctx, cfg, params)
	if err != nil {
		params.Deps.Logger.Error("run failed", zap.Error(err))
		return Results{}, paths, err
	}
	if err := WriteRunOutputs(results, paths); err != nil {
		return Results{}, OutputPaths{}, err
	}
	return results, paths, nil
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", errors.New("root is not a directory")
	}
	return abs, nil
}

func logTaskEnd(logger *zap.Logger, task TaskResult) {
	fields := []zap.Field{
		zap.String("task", task.TaskID),
		zap.String("model", task.Model),
		zap.Int("records", len(task.Records)),
		zap.Int("planned", task.Planned),
	}
	if acc := task.Summary.Accuracy; acc != nil {
		fields = append(fields,
			zap.Int("valid", acc.Valid),
			zap.Int("correct", acc.Correct),
			zap.Float64("accuracy_percent", acc.Percent),
		)
	}
	logger.Info("task finished", fields...)
}
