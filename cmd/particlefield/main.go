package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlefield/internal/automation"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/export"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/gui"
	"github.com/san-kum/particlefield/internal/raster"
	"github.com/san-kum/particlefield/internal/record"
	"github.com/san-kum/particlefield/internal/server"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/san-kum/particlefield/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	debug      bool

	width     int
	height    int
	frameRate int
	frames    int
	theme     string
	scale     float64
	addr      string

	pick     bool
	orbit    bool
	outFile  string
	trails   bool
	noSave   bool
	limit    int
	listOnly string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "particlefield",
		Short:        "animated particle backdrops for the terminal, desktop and web",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "preset name (see presets)")
	pf.Int64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	pf.BoolVar(&debug, "debug", false, "debug logging")

	rootCmd.Flags().StringVar(&theme, "theme", "", "terminal theme")
	rootCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
	rootCmd.Flags().Float64Var(&scale, "scale", 0, "field pixels per terminal column")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "animate in the terminal",
		RunE:  runTUI,
	}
	tuiCmd.Flags().BoolVar(&pick, "pick", false, "choose the preset from a menu")
	tuiCmd.Flags().StringVar(&theme, "theme", "", "terminal theme")
	tuiCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
	tuiCmd.Flags().Float64Var(&scale, "scale", 0, "field pixels per terminal column")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "animate in a desktop window",
		RunE:  runGUI,
	}
	guiCmd.Flags().IntVar(&width, "width", 0, "window width")
	guiCmd.Flags().IntVar(&height, "height", 0, "window height")
	guiCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "render an animated GIF and save it as a session",
		RunE:  runRecord,
	}
	recordCmd.Flags().IntVar(&width, "width", 0, "image width")
	recordCmd.Flags().IntVar(&height, "height", 0, "image height")
	recordCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
	recordCmd.Flags().IntVar(&frames, "frames", 0, "frames to record")
	recordCmd.Flags().BoolVar(&orbit, "orbit", false, "move a virtual pointer in a circle")
	recordCmd.Flags().StringVarP(&outFile, "out", "o", "", "also write the GIF here")
	recordCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store a session")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "write one frame as SVG",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().IntVar(&width, "width", 0, "image width")
	snapshotCmd.Flags().IntVar(&height, "height", 0, "image height")
	snapshotCmd.Flags().IntVar(&frames, "frames", 0, "frames to simulate before drawing")
	snapshotCmd.Flags().BoolVar(&trails, "trails", false, "draw particle trajectories instead")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, stdout when empty")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve backdrops over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTHEME\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, p.Theme, p.Description)
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded sessions",
		RunE:  listSessions,
	}
	listCmd.Flags().StringVar(&listOnly, "only", "", "only sessions of this preset")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows, 0 for all")

	exportCmd := &cobra.Command{
		Use:   "export [session_id]",
		Short: "export a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return storage.New(cfg.DataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [session_id]",
		Short: "plot per-frame stats of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSession,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step and render",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 200, "frames per size")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "record every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure the field across a range of one option",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "link_distance",
		"option to vary: "+strings.Join(automation.SweepParams(), ", ")+" (count needs --min >= 1)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 40, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 200, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&width, "width", 0, "field width")
	sweepCmd.Flags().IntVar(&height, "height", 0, "field height")
	sweepCmd.Flags().IntVar(&frames, "frames", 0, "frames per value")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "particlefield.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s (preset %s)\n", path, cfg.Preset)
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(tuiCmd, guiCmd, recordCmd, snapshotCmd, serveCmd, presetsCmd, listCmd, exportCmd, plotCmd, benchCmd, scenarioCmd, sweepCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges, lowest first: preset, config file, environment, flags.
// Only flags the user actually set override the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	name := preset
	if name == "" {
		name = env.Preset
	}
	cfg, err := config.Resolve(configFile, name)
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config, toFile bool) (*log.Logger, func(), error) {
	out := os.Stderr
	closeFn := func() {}
	if toFile {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, "particlefield.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}
	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "particlefield",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, closeFn, nil
}

func openStore(cfg *config.Config) (*storage.Store, *storage.Index, error) {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	idx, err := storage.OpenIndex(st.IndexPath())
	if err != nil {
		return nil, nil, err
	}
	st.SetIndex(idx)
	return st, idx, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	settings := viz.Settings{
		Title:  "particlefield · " + cfg.Preset,
		Theme:  cfg.Theme,
		FPS:    cfg.FPS,
		Seed:   cfg.Seed,
		Scale:  cfg.Scale,
		Logger: logger,
	}
	if !pick {
		return viz.Run(cfg.Field, settings)
	}

	var choices []viz.Choice
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		opts := p.Field()
		if name == cfg.Preset {
			opts = cfg.Field
		}
		choices = append(choices, viz.Choice{Name: name, Description: p.Description, Options: opts})
	}
	settings.Title = "particlefield"
	return viz.RunPicker(choices, settings)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	return gui.Run(cfg.Field, gui.Settings{
		Title:  "particlefield · " + cfg.Preset,
		Width:  cfg.Width,
		Height: cfg.Height,
		FPS:    cfg.FPS,
		Seed:   cfg.Seed,
		Logger: logger,
	})
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("recording %s (%dx%d, %d frames)...\n", cfg.Preset, cfg.Width, cfg.Height, cfg.Frames)
	start := time.Now()
	res, err := record.Run(ctx, record.Options{
		Field:  cfg.Field,
		Width:  cfg.Width,
		Height: cfg.Height,
		Frames: cfg.Frames,
		FPS:    cfg.FPS,
		Seed:   cfg.Seed,
		Orbit:  orbit,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if outFile != "" {
		if err := os.WriteFile(outFile, res.GIF, 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", outFile, len(res.GIF))
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st, idx, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer idx.Close()
		runID, err := st.Save(storage.SessionMetadata{
			Preset:  cfg.Preset,
			Seed:    cfg.Seed,
			Width:   cfg.Width,
			Height:  cfg.Height,
			FPS:     cfg.FPS,
			Metrics: res.Metrics,
			Options: cfg.Field,
		}, res.Frames, map[string][]byte{"backdrop.gif": res.GIF})
		if err != nil {
			return err
		}
		fmt.Printf("session id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(res.Metrics) {
		fmt.Fprintf(w, "  %s\t%.4f\n", name, res.Metrics[name])
	}
	return w.Flush()
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	w, h := float64(cfg.Width), float64(cfg.Height)

	var out string
	if trails {
		paths, colors, err := export.Trajectories(cfg.Field, w, h, cfg.Frames, rng)
		if err != nil {
			return err
		}
		bg, err := field.ParseColor(cfg.Field.Background)
		if err != nil {
			return err
		}
		out = export.TrajectoriesToSVG(paths, colors, w, h, bg)
	} else {
		svg, stats, err := export.Snapshot(cfg.Field, w, h, cfg.Frames, rng)
		if err != nil {
			return err
		}
		out = svg.String()
		fmt.Fprintf(os.Stderr, "particles: %d, links: %d, mean alpha: %.3f\n", stats.Particles, stats.Links, stats.MeanAlpha)
	}

	if outFile == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(outFile, []byte(out), 0644)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	_, idx, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(*cfg, server.WithLogger(logger), server.WithIndex(idx))
	return srv.Run(ctx, cfg.Addr)
}

func listSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, idx, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	// the index may predate sessions copied into the data directory
	if _, err := idx.Rebuild(st); err != nil {
		return err
	}
	rows, err := idx.Sessions(listOnly, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSEED\tFRAMES\tLINKS/FRAME")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1f\n",
			r.ID,
			r.Preset,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Seed,
			r.Frames,
			r.LinksPerFrame,
		)
	}
	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runID := args[0]
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no frames to plot")
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", len(records))

	links := make([]float64, len(records))
	alpha := make([]float64, len(records))
	for i, r := range records {
		links[i] = float64(r.Links)
		alpha[i] = r.MeanAlpha
	}
	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{links, "links per frame"},
		{alpha, "mean particle alpha"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}
	sizes := [][2]int{{320, 180}, {640, 360}, {1280, 720}, {1920, 1080}}
	bg, err := field.ParseColor(cfg.Field.Background)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d frames per size)\n\n", cfg.Preset, frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tPARTICLES\tLINKS/FRAME\tTIME\tFRAMES/SEC")

	for _, sz := range sizes {
		f, err := field.New(cfg.Field, rand.New(rand.NewSource(42)))
		if err != nil {
			return err
		}
		if err := f.HandleResize(float64(sz[0]), float64(sz[1])); err != nil {
			return err
		}
		surface := raster.New(sz[0], sz[1], bg)

		links := 0
		start := time.Now()
		for i := 0; i < frames; i++ {
			f.Step(time.Duration(i) * export.FrameInterval)
			links += f.Render(surface).Links
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%dx%d\t%d\t%.1f\t%v\t%.0f\n",
			sz[0], sz[1], f.Len(), float64(links)/float64(frames), elapsed.Round(time.Millisecond),
			float64(frames)/elapsed.Seconds())
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, idx, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running scenario %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, st, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSESSION\tTIME\tLINKS/FRAME")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%.1f\n",
			r.Step, r.Preset, r.SessionID, r.Elapsed.Round(time.Millisecond), r.Metrics["links_per_frame"])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	results, err := automation.RunSweep(cmd.Context(), automation.Sweep{
		Preset: cfg.Preset,
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Steps:  sweepSteps,
		Width:  float64(cfg.Width),
		Height: float64(cfg.Height),
		Frames: cfg.Frames,
		Seed:   cfg.Seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s on %s (%d frames per value)\n\n", sweepParam, cfg.Preset, cfg.Frames)
	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, strings.ToUpper(sweepParam))
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(n))
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.3f", r.Value)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
