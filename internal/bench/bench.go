// Package bench runs the solver over scene batches and collects results.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
	"github.com/elektrokombinacija/rgm/internal/gen"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
	"github.com/elektrokombinacija/rgm/internal/sim"
)

// ErrNoScenes is returned when a batch is empty.
var ErrNoScenes = errors.New("bench: no scenes")

// Job is one named scene to solve.
type Job struct {
	Name  string
	Scene *core.Scene
}

// Result stores the outcome of one solver run.
type Result struct {
	RunID      string  `json:"run_id"`
	Timestamp  string  `json:"timestamp"`
	GoVersion  string  `json:"go_version"`
	OS         string  `json:"os"`
	Arch       string  `json:"arch"`
	Scene      string  `json:"scene"`
	GridSize   string  `json:"grid_size"`
	Robots     int     `json:"robots"`
	Solver     string  `json:"solver"`
	Success    bool    `json:"success"`
	Reason     string  `json:"reason,omitempty"`
	Moves      int     `json:"moves"`
	Distance   int     `json:"distance"`
	Cycles     int     `json:"cycles"`
	DurationMs float64 `json:"duration_ms"`
}

// Runner solves jobs concurrently, at most Workers at a time.
type Runner struct {
	Workers int
	Options algo.Options
	Verify  bool
	Logger  *slog.Logger

	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	moves    prometheus.Histogram
}

// NewRunner creates a runner registering its collectors with reg. A nil
// reg leaves the collectors unregistered.
func NewRunner(workers int, opts algo.Options, reg prometheus.Registerer) *Runner {
	if workers < 1 {
		workers = 1
	}
	factory := promauto.With(reg)
	return &Runner{
		Workers: workers,
		Options: opts,
		Logger:  slog.New(slog.DiscardHandler),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rgm_bench_runs_total",
			Help: "Total benchmark runs by outcome",
		}, []string{"result", "reason"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rgm_bench_solve_duration_seconds",
			Help:    "Solve duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		moves: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rgm_bench_moves",
			Help:    "Moves per successful solve",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// Run solves every job and returns results in job order. Solver failures
// are results, not errors; only cancellation aborts the batch.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, ErrNoScenes
	}

	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(ctx, job)
			if results[i].Reason == "canceled" {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, job Job) Result {
	solver := algo.NewRGM(r.Options)
	res := Result{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Scene:     job.Name,
		GridSize:  fmt.Sprintf("%dx%d", job.Scene.Width, job.Scene.Height),
		Robots:    len(job.Scene.Robots),
		Solver:    solver.Name(),
	}

	run, err := sim.Run(ctx, sim.RunConfig{Scene: job.Scene, Solver: solver, Verify: r.Verify})
	res.DurationMs = run.DurationMs
	res.Cycles = run.Cycles
	r.duration.Observe(run.DurationMs / 1000)
	if err != nil {
		res.Reason = run.Reason
		r.runs.WithLabelValues("failure", res.Reason).Inc()
		r.Logger.Debug("run failed", slog.String("scene", job.Name), slog.String("reason", res.Reason), slog.String("error", err.Error()))
		return res
	}

	res.Success = true
	res.Moves = run.Metrics.Moves
	res.Distance = run.Metrics.TotalDistance
	r.runs.WithLabelValues("success", "").Inc()
	r.moves.Observe(float64(res.Moves))
	r.Logger.Debug("run solved", slog.String("scene", job.Name), slog.Int("moves", res.Moves), slog.Float64("duration_ms", res.DurationMs))
	return res
}

// GenerateJobs builds n scenes from consecutive seeds starting at p.Seed.
// Seeds for which generation gives up are skipped.
func GenerateJobs(p gen.Params, n int) ([]Job, error) {
	var jobs []Job
	for i := 0; i < n; i++ {
		q := p
		q.Seed = p.Seed + int64(i)
		scene, err := gen.Generate(q)
		if errors.Is(err, gen.ErrRetriesExhausted) {
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{Name: q.Name(), Scene: scene})
	}
	if len(jobs) == 0 {
		return nil, ErrNoScenes
	}
	return jobs, nil
}

// LoadJobs reads every *.json scene in dir, sorted by name.
func LoadJobs(dir string) ([]Job, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	sort.Strings(files)

	var jobs []Job
	for _, f := range files {
		scene, err := scenefile.LoadScene(f)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		jobs = append(jobs, Job{Name: name, Scene: scene})
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScenes, dir)
	}
	return jobs, nil
}
