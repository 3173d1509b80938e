package match

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Stage identifies a pipeline step. A run moves
// RETRIEVE -> COMPUTE_METRICS -> SCORE -> FILTER_ANNOTATE -> RANK -> DONE,
// with ERROR terminal reachable from any step.
type Stage string

const (
	StageRetrieve       Stage = "RETRIEVE"
	StageComputeMetrics Stage = "COMPUTE_METRICS"
	StageScore          Stage = "SCORE"
	StageFilterAnnotate Stage = "FILTER_ANNOTATE"
	StageRank           Stage = "RANK"
	StageDone           Stage = "DONE"
	StageError          Stage = "ERROR"
)

const (
	// DefaultTopK is the number of results returned to the caller.
	DefaultTopK = 10
	// DefaultPoolSize is the retrieval pool width. Deliberately wider than
	// TopK: metrics are computed and persisted for the whole pool.
	DefaultPoolSize = 50
	// DefaultMinSimilarity is the standard retrieval similarity floor,
	// applied by the configuration layer. An Options floor of zero is
	// honored as "no floor".
	DefaultMinSimilarity = 0.5
	// DefaultConcurrency bounds the per-candidate metric fan-out.
	DefaultConcurrency = 8
)

// Options configures a single match run. Zero sizes fall back to defaults;
// retrieval pool size and returned size are independent knobs.
type Options struct {
	TopK     int
	PoolSize int
	// MinSimilarity is the retrieval floor in [0,1]. Zero means no floor.
	MinSimilarity float64
	Weights       *WeightConfig
	HardFilter    bool // exclude constraint failures instead of annotating
	Concurrency   int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Observer receives pipeline timing and outcome signals. Implemented by the
// Prometheus exporter; a nil observer disables observation.
type Observer interface {
	ObserveStage(stage Stage, seconds float64)
	ObserveRun(stage Stage, seconds float64, scored int)
}

// Pipeline orchestrates one match run: retrieval, per-candidate metric
// computation, composite scoring, constraint annotation, and ranking.
// A Pipeline is stateless between runs and safe for concurrent use; each
// run is pure given its inputs except for the final persistence write.
type Pipeline struct {
	retriever Retriever
	sink      ResultSink // optional
	observer  Observer   // optional
}

// NewPipeline creates a match pipeline. The sink and observer may be nil.
func NewPipeline(retriever Retriever, sink ResultSink, observer Observer) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		sink:      sink,
		observer:  observer,
	}
}

// Match runs the pipeline for one job and returns ranked, explained results.
//
// Zero retrieved candidates is a valid outcome: the report carries an empty
// result list and a summary saying why. A candidate whose metric computation
// fails is dropped with a logged warning. A retrieval failure is fatal and
// returned as a RetrievalError.
func (p *Pipeline) Match(ctx context.Context, job JobRequirements, jobEmbedding []float32, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if opts.MinSimilarity < 0 || opts.MinSimilarity > 1 {
		return nil, errors.Errorf("similarity floor out of range: %f", opts.MinSimilarity)
	}
	started := time.Now()

	report := &Report{
		RunID:     uuid.NewString(),
		JobID:     job.JobID,
		StartedAt: started,
	}

	weights := DefaultWeights()
	if opts.Weights != nil {
		if !opts.Weights.Valid() {
			return nil, errors.New("invalid weight configuration")
		}
		weights = *opts.Weights
	}

	// RETRIEVE
	pool, err := p.timedRetrieve(ctx, job.JobID, jobEmbedding, opts)
	if err != nil {
		p.observeRun(StageError, started, 0)
		return nil, err
	}

	if len(pool) == 0 {
		report.Results = []MatchResult{}
		report.Summary = p.buildSummary(&job, 0, 0, 0,
			"no candidates met the similarity floor; consider relaxing requirements or lowering the floor")
		report.CompletedAt = time.Now()
		p.observeRun(StageDone, started, 0)
		return report, nil
	}

	// COMPUTE_METRICS: embarrassingly parallel per candidate.
	metricSets := p.computeMetrics(ctx, &job, pool, opts.Concurrency)

	// SCORE + FILTER_ANNOTATE
	results := p.scoreAndAnnotate(&job, pool, metricSets, weights, opts.HardFilter)

	// RANK
	rankStart := time.Now()
	sortResults(results)
	p.observeStage(StageRank, rankStart)

	scored := len(results)
	p.persist(ctx, job.JobID, report.RunID, results)

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	report.Results = results
	report.Summary = p.buildSummary(&job, len(pool), scored, len(results), "")
	report.CompletedAt = time.Now()
	p.observeRun(StageDone, started, scored)

	slog.Info("match run complete",
		"job_id", job.JobID,
		"run_id", report.RunID,
		"retrieved", len(pool),
		"scored", scored,
		"returned", len(results),
		"duration", time.Since(started))

	return report, nil
}

func (p *Pipeline) timedRetrieve(ctx context.Context, jobID int32, jobEmbedding []float32, opts Options) ([]RetrievedCandidate, error) {
	start := time.Now()
	pool, err := p.retriever.Retrieve(ctx, jobEmbedding, opts.PoolSize, opts.MinSimilarity)
	p.observeStage(StageRetrieve, start)
	if err != nil {
		return nil, &RetrievalError{JobID: jobID, Cause: err}
	}
	return pool, nil
}

// computeMetrics fans out metric computation across the pool. Order within
// the result slice matches the pool; failed candidates leave a nil slot.
func (p *Pipeline) computeMetrics(ctx context.Context, job *JobRequirements, pool []RetrievedCandidate, concurrency int) []*MetricSet {
	start := time.Now()
	metricSets := make([]*MetricSet, len(pool))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range pool {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			ms, err := computeCandidate(job, &pool[i])
			if err != nil {
				cerr := &CandidateComputeError{CandidateID: pool[i].Profile.CandidateID, Cause: err}
				slog.Warn("dropping candidate from match run", "job_id", job.JobID, "error", cerr)
				return nil
			}
			metricSets[i] = &ms
			return nil
		})
	}
	_ = g.Wait() // goroutines only ever return nil

	p.observeStage(StageComputeMetrics, start)
	return metricSets
}

func (p *Pipeline) scoreAndAnnotate(job *JobRequirements, pool []RetrievedCandidate, metricSets []*MetricSet, weights WeightConfig, hardFilter bool) []MatchResult {
	scoreStart := time.Now()
	results := make([]MatchResult, 0, len(pool))
	poolIdx := make([]int, 0, len(pool))
	for i, rc := range pool {
		if metricSets[i] == nil {
			continue
		}
		results = append(results, MatchResult{
			CandidateID:        rc.Profile.CandidateID,
			Name:               rc.Profile.Name,
			CompositeScore:     CompositeScore(*metricSets[i], weights),
			SemanticSimilarity: rc.Document.SemanticSimilarity,
			Metrics:            *metricSets[i],
		})
		poolIdx = append(poolIdx, i)
	}
	p.observeStage(StageScore, scoreStart)

	filterStart := time.Now()
	annotated := make([]MatchResult, 0, len(results))
	for i := range results {
		report := EvaluateConstraints(job, &pool[poolIdx[i]].Profile)
		results[i].Constraints = report
		results[i].Rationale = Rationale(results[i].Metrics, report, weights)

		if hardFilter && !report.Passed {
			continue
		}
		annotated = append(annotated, results[i])
	}
	p.observeStage(StageFilterAnnotate, filterStart)

	return annotated
}

func computeCandidate(job *JobRequirements, rc *RetrievedCandidate) (ms MetricSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during metric computation: %v", r)
		}
	}()

	if err := validateProfile(&rc.Profile); err != nil {
		return MetricSet{}, err
	}
	return ComputeMetrics(job, &rc.Profile, &rc.Document), nil
}

// sortResults applies the total order: composite score descending, then
// skills match, then semantic similarity, then candidate id ascending so
// re-runs with identical inputs rank identically.
func sortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Metrics.SkillsMatch != b.Metrics.SkillsMatch {
			return a.Metrics.SkillsMatch > b.Metrics.SkillsMatch
		}
		if a.SemanticSimilarity != b.SemanticSimilarity {
			return a.SemanticSimilarity > b.SemanticSimilarity
		}
		return a.CandidateID < b.CandidateID
	})
}

// persist writes the scored set to the sink. Results are a derived cache,
// so a failed write is logged and the run still succeeds.
func (p *Pipeline) persist(ctx context.Context, jobID int32, runID string, results []MatchResult) {
	if p.sink == nil || len(results) == 0 {
		return
	}
	if err := p.sink.SaveResults(ctx, jobID, runID, results); err != nil {
		slog.Error("failed to persist match results", "job_id", jobID, "run_id", runID, "error", err)
	}
}

func (p *Pipeline) buildSummary(job *JobRequirements, retrieved, scored, returned int, message string) Summary {
	return Summary{
		RoleTitle:          job.Title,
		KeyRequiredSkills:  capList(job.RequiredSkills, 10),
		NiceToHaveSkills:   capList(job.PreferredSkills, 10),
		ConstraintsApplied: FormatConstraints(job),
		Retrieved:          retrieved,
		Scored:             scored,
		Returned:           returned,
		Message:            message,
	}
}

func (p *Pipeline) observeStage(stage Stage, start time.Time) {
	if p.observer != nil {
		p.observer.ObserveStage(stage, time.Since(start).Seconds())
	}
}

func (p *Pipeline) observeRun(stage Stage, start time.Time, scored int) {
	if p.observer != nil {
		p.observer.ObserveRun(stage, time.Since(start).Seconds(), scored)
	}
}
