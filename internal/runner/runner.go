// Package runner executes a run spec against a model: it loads the
// scenario, adapts instances into prompts, issues requests through a
// caching client, scores completions and persists the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polyglotai/polybench/internal/client"
	"github.com/polyglotai/polybench/internal/leaderboard"
	"github.com/polyglotai/polybench/internal/metric"
	"github.com/polyglotai/polybench/internal/runspec"
	"github.com/polyglotai/polybench/internal/scenario"
	"github.com/polyglotai/polybench/internal/store"
)

const (
	defaultConcurrency      = 4
	defaultMaxEvalInstances = 100
)

// Runner evaluates run specs with one client/model pair. Store and
// Board are optional; when nil the run is not persisted or ranked.
type Runner struct {
	Client   client.Client
	Provider string
	Model    string
	Store    store.RunWriter
	Board    *leaderboard.Store
	Log      *zap.Logger

	MaxEvalInstances int
	Concurrency      int
}

// Run executes the spec and returns the stored record. Individual
// request failures score zero and are recorded, they never abort the
// run; only setup problems (unknown metric, unloadable scenario) do.
func (r *Runner) Run(ctx context.Context, spec *runspec.RunSpec) (*store.RunRecord, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if spec == nil {
		return nil, errors.New("runner: nil run spec")
	}
	if r.Client == nil {
		return nil, errors.New("runner: nil client")
	}

	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	metrics := make([]metric.Metric, 0, len(spec.MetricNames))
	for _, name := range spec.MetricNames {
		m, err := metric.New(name)
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		metrics = append(metrics, m)
	}
	if len(metrics) == 0 {
		return nil, errors.New("runner: run spec names no metrics")
	}

	instances, err := spec.Scenario.Instances(ctx)
	if err != nil {
		return nil, fmt.Errorf("runner: load scenario: %w", err)
	}

	var train, eval []scenario.Instance
	for _, inst := range instances {
		if inst.Split == scenario.TrainSplit {
			train = append(train, inst)
		} else {
			eval = append(eval, inst)
		}
	}

	maxEval := r.MaxEvalInstances
	if maxEval <= 0 {
		maxEval = defaultMaxEvalInstances
	}
	if len(eval) > maxEval {
		eval = eval[:maxEval]
	}
	if len(eval) == 0 {
		return nil, fmt.Errorf("runner: scenario %q yielded no eval instances", spec.Scenario.Name())
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	log.Info("starting run",
		zap.String("spec", spec.Name),
		zap.String("model", r.Model),
		zap.Int("train_instances", len(train)),
		zap.Int("eval_instances", len(eval)),
		zap.Int("concurrency", concurrency),
	)

	startedAt := time.Now().UTC()
	results := make([]store.InstanceRecord, len(eval))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, inst := range eval {
		g.Go(func() error {
			rec, err := r.evalInstance(gctx, spec, metrics, train, inst)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	record := r.summarize(spec, metrics, results, startedAt)

	if r.Store != nil {
		if err := r.Store.SaveRun(ctx, record); err != nil {
			return nil, fmt.Errorf("runner: save run: %w", err)
		}
	}
	if r.Board != nil {
		entry := boardEntry(record, spec.MetricNames[0])
		if err := r.Board.Save(ctx, entry); err != nil {
			return nil, fmt.Errorf("runner: save leaderboard entry: %w", err)
		}
	}

	log.Info("run finished",
		zap.String("run_id", record.ID),
		zap.Int("successes", record.SuccessCount),
		zap.Int("failures", record.FailureCount),
		zap.Int("cache_hits", record.CacheHits),
		zap.Any("scores", record.Scores),
	)
	return record, nil
}

func (r *Runner) evalInstance(ctx context.Context, spec *runspec.RunSpec, metrics []metric.Metric, train []scenario.Instance, inst scenario.Instance) (store.InstanceRecord, error) {
	prompt, err := spec.Adapter.Prompt(train, inst)
	if err != nil {
		return store.InstanceRecord{}, fmt.Errorf("runner: build prompt for %q: %w", inst.ID, err)
	}
	expected, err := spec.Adapter.ExpectedAnswers(inst)
	if err != nil {
		return store.InstanceRecord{}, fmt.Errorf("runner: %w", err)
	}

	req := &client.Request{
		Model:          r.Model,
		Prompt:         prompt,
		Temperature:    spec.Adapter.Temperature,
		MaxTokens:      spec.Adapter.MaxTokens,
		StopSequences:  spec.Adapter.StopSequences,
		NumCompletions: 1,
	}
	res := r.Client.MakeRequest(ctx, req)

	rec := store.InstanceRecord{
		InstanceID:  inst.ID,
		Success:     res.Success,
		Cached:      res.Cached,
		Error:       res.Error,
		RequestTime: res.RequestTime,
		Scores:      make(map[string]float64, len(metrics)),
	}

	var completion string
	if res.Success && len(res.Completions) > 0 {
		completion = res.Completions[0].Text
	}
	rec.Completion = completion

	for _, m := range metrics {
		if res.Success {
			rec.Scores[m.Name()] = m.Score(completion, expected)
		} else {
			rec.Scores[m.Name()] = 0
		}
	}
	return rec, nil
}

func (r *Runner) summarize(spec *runspec.RunSpec, metrics []metric.Metric, results []store.InstanceRecord, startedAt time.Time) *store.RunRecord {
	record := &store.RunRecord{
		ID:             uuid.NewString(),
		SpecName:       spec.Name,
		Provider:       r.Provider,
		Model:          r.Model,
		StartedAt:      startedAt,
		FinishedAt:     time.Now().UTC(),
		TotalInstances: len(results),
		Scores:         make(map[string]float64, len(metrics)),
		Results:        results,
	}

	for _, rec := range results {
		if rec.Success {
			record.SuccessCount++
		} else {
			record.FailureCount++
		}
		if rec.Cached {
			record.CacheHits++
		}
	}

	for _, m := range metrics {
		var sum float64
		for _, rec := range results {
			sum += rec.Scores[m.Name()]
		}
		record.Scores[m.Name()] = sum / float64(len(results))
	}
	return record
}

func boardEntry(record *store.RunRecord, primaryMetric string) *leaderboard.Entry {
	var latencySum float64
	var uncached int
	for _, rec := range record.Results {
		if !rec.Cached && rec.Success {
			latencySum += rec.RequestTime
			uncached++
		}
	}
	var latency float64
	if uncached > 0 {
		latency = latencySum / float64(uncached)
	}

	return &leaderboard.Entry{
		Model:        record.Model,
		Provider:     record.Provider,
		Spec:         record.SpecName,
		Score:        record.Scores[primaryMetric],
		CacheHitRate: float64(record.CacheHits) / float64(record.TotalInstances),
		Latency:      latency,
		EvalDate:     record.FinishedAt,
	}
}
