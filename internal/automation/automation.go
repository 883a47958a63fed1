// Package automation runs scripted batches of recordings and option sweeps.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/metrics"
	"github.com/san-kum/particlefield/internal/record"
	"github.com/san-kum/particlefield/internal/storage"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted list of recordings.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Workers bounds how many steps record at once; zero uses GOMAXPROCS.
	Workers int            `yaml:"workers"`
	Steps   []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one recording. Zero sizes and counts fall back to the
// defaults in package config.
type ScenarioStep struct {
	Preset string `yaml:"preset"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Frames int    `yaml:"frames"`
	FPS    int    `yaml:"fps"`
	Seed   int64  `yaml:"seed"`
	Orbit  bool   `yaml:"orbit"`
	// SaveAs also writes the GIF to this path.
	SaveAs string `yaml:"save_as"`
}

// StepResult reports one finished step. SessionID is empty when no store
// was given.
type StepResult struct {
	Step      int
	Preset    string
	SessionID string
	Metrics   map[string]float64
	Elapsed   time.Duration
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// RunScenario records every step on a bounded pool of workers. Results keep
// step order. The first failing step cancels the rest.
func RunScenario(parent context.Context, scenario *Scenario, store *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := scenario.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]StepResult, len(scenario.Steps))
	errs := make([]error, len(scenario.Steps))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = runStep(ctx, i, scenario.Steps[i], store, logger)
				if errs[i] != nil {
					cancel()
				}
			}
		}()
	}

feed:
	for i := range scenario.Steps {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func runStep(ctx context.Context, i int, step ScenarioStep, store *storage.Store, logger *log.Logger) (StepResult, error) {
	cfg, err := config.FromPreset(orDefault(step.Preset, config.DefaultPreset))
	if err != nil {
		return StepResult{}, err
	}
	if step.Width > 0 {
		cfg.Width = step.Width
	}
	if step.Height > 0 {
		cfg.Height = step.Height
	}
	if step.Frames > 0 {
		cfg.Frames = step.Frames
	}
	if step.FPS > 0 {
		cfg.FPS = step.FPS
	}
	if err := cfg.Validate(); err != nil {
		return StepResult{}, err
	}

	logger.Info("recording step", "step", i+1, "preset", cfg.Preset, "frames", cfg.Frames)
	start := time.Now()
	res, err := record.Run(ctx, record.Options{
		Field:  cfg.Field,
		Width:  cfg.Width,
		Height: cfg.Height,
		Frames: cfg.Frames,
		FPS:    cfg.FPS,
		Seed:   step.Seed,
		Orbit:  step.Orbit,
		Logger: logger,
	})
	if err != nil {
		return StepResult{}, err
	}

	out := StepResult{Step: i + 1, Preset: cfg.Preset, Metrics: res.Metrics, Elapsed: time.Since(start)}
	if step.SaveAs != "" {
		if err := os.WriteFile(step.SaveAs, res.GIF, 0644); err != nil {
			return out, err
		}
	}
	if store != nil {
		out.SessionID, err = store.Save(storage.SessionMetadata{
			Preset:  cfg.Preset,
			Seed:    step.Seed,
			Width:   cfg.Width,
			Height:  cfg.Height,
			FPS:     cfg.FPS,
			Metrics: res.Metrics,
			Options: cfg.Field,
		}, res.Frames, map[string][]byte{"backdrop.gif": res.GIF})
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Sweep varies one numeric field option between Min and Max and measures
// the field headlessly at each value. Every value starts from the same seed.
type Sweep struct {
	Preset string
	Param  string
	Min    float64
	Max    float64
	Steps  int
	Width  float64
	Height float64
	Frames int
	Seed   int64
}

type SweepResult struct {
	Value   float64
	Metrics map[string]float64
}

type sweepParam struct {
	set func(*field.Options, float64)
	ok  func(float64) bool
	// need describes the accepted range for error messages.
	need string
}

func positive(v float64) bool { return v > 0 }

// sweepParams maps sweepable names to setters on field.Options. Only options
// that move a headless metric are listed; drawing-only options such as
// link_opacity or trail_alpha do not.
var sweepParams = map[string]sweepParam{
	"link_distance":     {func(o *field.Options, v float64) { o.LinkDistance = v }, positive, "> 0"},
	"speed":             {func(o *field.Options, v float64) { o.Speed = v }, func(v float64) bool { return v >= 0 }, ">= 0"},
	"count":             {setCount, func(v float64) bool { return v >= 1 }, ">= 1"},
	"area_per_particle": {setArea, positive, "> 0"},
}

// setCount switches the options to a fixed count.
func setCount(o *field.Options, v float64) {
	o.AreaPerParticle = 0
	o.Count = int(v)
	o.MaxCount = max(o.MaxCount, o.Count)
}

// setArea switches the options to an area-derived count, keeping the
// count bounds wide enough to show the change.
func setArea(o *field.Options, v float64) {
	o.AreaPerParticle = v
	o.MinCount = min(o.MinCount, 1)
	o.MaxCount = max(o.MaxCount, 500)
}

// SweepParams lists the option names RunSweep accepts.
func SweepParams() []string {
	return []string{"area_per_particle", "count", "link_distance", "speed"}
}

func RunSweep(ctx context.Context, sweep Sweep) ([]SweepResult, error) {
	param, ok := sweepParams[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("automation: cannot sweep %q (have %v)", sweep.Param, SweepParams())
	}
	if sweep.Steps < 2 {
		return nil, fmt.Errorf("automation: sweep needs at least 2 steps, got %d", sweep.Steps)
	}
	if sweep.Frames <= 0 {
		return nil, record.ErrNoFrames
	}
	if lo := min(sweep.Min, sweep.Max); !param.ok(lo) {
		return nil, fmt.Errorf("automation: %s must be %s, got %g", sweep.Param, param.need, lo)
	}
	base := config.GetPreset(orDefault(sweep.Preset, config.DefaultPreset))
	if base == nil {
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownPreset, sweep.Preset)
	}

	results := make([]SweepResult, 0, sweep.Steps)
	stepSize := (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	for i := 0; i < sweep.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		value := sweep.Min + float64(i)*stepSize
		opts := base.Field()
		param.set(&opts, value)

		values, err := measure(opts, sweep, sweep.Seed)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, value, err)
		}
		results = append(results, SweepResult{Value: value, Metrics: values})
	}
	return results, nil
}

func measure(opts field.Options, sweep Sweep, seed int64) (map[string]float64, error) {
	f, err := field.New(opts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	if err := f.HandleResize(sweep.Width, sweep.Height); err != nil {
		return nil, err
	}
	set := metrics.Default(sweep.Width, sweep.Height)
	interval := time.Second / 60
	for i := 0; i < sweep.Frames; i++ {
		elapsed := time.Duration(i) * interval
		f.Step(elapsed)
		stats := f.Render(field.Discard)
		set.Observe(anim.FrameInfo{
			Frame:     uint64(i + 1),
			Elapsed:   elapsed,
			Stats:     stats,
			Particles: f.Particles(),
		})
	}
	return set.Values(), nil
}
