package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stickbox/internal/analysis"
	"github.com/san-kum/stickbox/internal/config"
	"github.com/san-kum/stickbox/internal/experiment"
	"github.com/san-kum/stickbox/internal/export"
	"github.com/san-kum/stickbox/internal/sim"
	"github.com/san-kum/stickbox/internal/storage"
	"github.com/san-kum/stickbox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	preset      string
	dt          float64
	duration    float64
	gravity     float64
	damping     float64
	restitution float64
	iterations  int
	jsonOut     string
	progress    bool
	// svg
	frames  int
	outFile string
	trails  bool
	braille bool
	// sweep
	sweepParam  string
	sweepValues string
	// analyze
	analyzePoint int
	analyzeAxis  string
	analyzeWidth bool
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("stickbox: ")

	rootCmd := &cobra.Command{
		Use:   "stickbox",
		Short: "verlet stick and point physics lab",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runLive(cmd, []string{config.DefaultScene}); err != nil {
				log.Fatal(err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stickbox", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in the terminal with mouse dragging",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addPhysicsFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addPhysicsFlags(runCmd)
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as json to this path")
	runCmd.Flags().BoolVar(&progress, "progress", false, "print progress every simulated second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded point heights",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&analyzePoint, "point", 0, "point index")
	analyzeCmd.Flags().StringVar(&analyzeAxis, "axis", "y", "coordinate to analyze (x or y)")
	analyzeCmd.Flags().BoolVar(&analyzeWidth, "width", false, "analyze the first box width instead of a point")

	svgCmd := &cobra.Command{
		Use:   "svg [scene]",
		Short: "render a scene to svg after a number of frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	addPhysicsFlags(svgCmd)
	svgCmd.Flags().IntVar(&frames, "frames", 60, "frames to simulate before rendering")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "stickbox.svg", "output file")
	svgCmd.Flags().BoolVar(&trails, "trails", false, "draw point trails")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal braille canvas instead of vectors")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run one scene under several values of a parameter in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	addPhysicsFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "restitution", "parameter to sweep (gravity, damping, restitution)")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "0,0.2,0.5,0.9", "comma separated values")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list scenes and their presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the default config as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "stickbox.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCmd, analyzeCmd, svgCmd, benchCmd, sweepCmd, presetsCmd, configCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPhysicsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&gravity, "gravity", 980, "downward gravity")
	cmd.Flags().Float64Var(&damping, "damping", 1, "velocity damping per step")
	cmd.Flags().Float64Var(&restitution, "restitution", 0.2, "wall bounce")
	cmd.Flags().IntVar(&iterations, "iterations", 10, "relaxation passes per frame")
}

// resolveConfig layers preset, config file, scene argument and explicitly
// set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scene))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Scene = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("gravity") {
		cfg.Gravity.Y = gravity
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("restitution") {
		cfg.Restitution = restitution
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	return viz.Run(cfg.Scene, func() (*sim.World, error) {
		return registry.Build(cfg)
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return err
	}
	if progress {
		exp.GetSimulator().AddObserver(newProgressPrinter(os.Stdout, 1))
	}

	fmt.Printf("running %s scene...\n", cfg.Scene)
	start := time.Now()
	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	if jsonOut != "" {
		if err := storage.ExportJSON(jsonOut, cfg, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

// progressPrinter reports the scene clock every interval of simulated time.
type progressPrinter struct {
	out      io.Writer
	interval float64
	next     float64
}

func newProgressPrinter(out io.Writer, interval float64) *progressPrinter {
	return &progressPrinter{out: out, interval: interval, next: interval}
}

func (p *progressPrinter) OnStep(w *sim.World, t float64) {
	if t+1e-9 < p.next {
		return
	}
	fmt.Fprintf(p.out, "  t=%.1fs frames=%d\n", t, w.Frames())
	for p.next <= t+1e-9 {
		p.next += p.interval
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tFRAMES\tPOINTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Frames,
			run.Points,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(states))

	const maxPlots = 5
	numPoints := min(states[0].NumPoints(), maxPlots)
	for i := 0; i < numPoints; i++ {
		data := make([]float64, len(states))
		for j, s := range states {
			// screen y grows downward; negate so the plot reads as height
			data[j] = -s.Point(i)[1]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("point %d height", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	var series []float64
	caption := "box width"
	if analyzeWidth {
		series, err = analysis.BoxWidthSeries(states)
	} else {
		var axis analysis.Axis
		if axis, err = analysis.ParseAxis(analyzeAxis); err != nil {
			return err
		}
		series, err = analysis.PointSeries(states, analyzePoint, axis)
		caption = fmt.Sprintf("point %d %s", analyzePoint, analyzeAxis)
	}
	if err != nil {
		return err
	}

	spectrum, err := analysis.PowerSpectrum(series, meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	plotData := spectrum.Power[:max(len(spectrum.Power)/4, 1)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+caption+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, _ := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", frames)
	}

	world, err := experiment.NewRegistry().Build(cfg)
	if err != nil {
		return err
	}

	states, err := stepFrames(world, cfg.Dt, frames, trails)
	if err != nil {
		return err
	}

	var svg string
	if braille {
		canvas := viz.NewCanvas(brailleWidth, brailleHeight)
		canvas.DrawPrimitives(world.Render(), viz.NewProjection(world.Params().Bounds, canvas))
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		var paths [][]mgl64.Vec2
		if trails {
			paths = export.Trails(states)
		}
		svg = export.PrimitivesToSVG(world.Render(), world.Params().Bounds, paths...)
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s after %d frames\n", outFile, frames)
	return nil
}

// braille canvas size in cells for svg --braille
const (
	brailleWidth  = 80
	brailleHeight = 24
)

// stepFrames advances world by n frames. With record set it returns the
// state before the first frame and after every frame.
func stepFrames(world *sim.World, dt float64, n int, record bool) ([]sim.State, error) {
	var states []sim.State
	if n == 0 {
		if record {
			states = append(states, world.Snapshot())
		}
		return states, nil
	}

	step := dt
	if maxDt := world.Params().MaxDt; maxDt > 0 && step > maxDt {
		step = maxDt
	}
	done := 0
	err := sim.New(world).RunWithCallback(context.Background(), sim.Config{
		Dt:            dt,
		Duration:      float64(n)*step + step/2,
		ValidateState: true,
	}, func(w *sim.World) bool {
		if record {
			states = append(states, w.Snapshot())
		}
		if done == n {
			return false
		}
		done++
		return true
	})
	return states, err
}

func benchScene(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	scene := config.DefaultScene
	if len(args) > 0 {
		scene = args[0]
	}

	fmt.Printf("benchmarking %s\n\n", scene)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tITER\tFRAMES\tTIME\tFRAMES/SEC")

	for _, dur := range []float64{1.0, 10.0, 60.0} {
		for _, iter := range []int{1, 10, 50} {
			cfg := config.DefaultConfig()
			cfg.Scene = scene
			cfg.Duration = dur
			cfg.Iterations = iter

			exp := experiment.New(cfg)
			if err := exp.Setup(registry, nil); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fs\t%d\t%d\t%v\t%.0f\n",
				dur, iter, result.Frames, elapsed, float64(result.Frames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func sweepScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	values, err := parseValues(sweepValues)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	worlds := make([]*sim.World, len(values))
	for i, v := range values {
		w, err := registry.Build(base)
		if err != nil {
			return err
		}
		if err := w.SetParam(sweepParam, v); err != nil {
			return fmt.Errorf("%s=%g: %w", sweepParam, v, err)
		}
		worlds[i] = w
	}

	ens := sim.NewEnsemble(worlds, registry.DefaultMetrics)
	results, err := ens.Run(context.Background(), sim.Config{
		Dt:            base.Dt,
		Duration:      base.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s on %s\n\n", sweepParam, base.Scene)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(sweepParam)+"\tFRAMES\tKINETIC\tSTRETCH\tSHEAR")
	for i, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.2f\t%.5f\t%.5f\n",
			values[i], r.Frames, r.Metrics["kinetic_energy"], r.Metrics["constraint_error"], r.Metrics["shear"])
	}
	return w.Flush()
}

func parseValues(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad sweep value %q: %w", f, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no sweep values given")
	}
	return values, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenes := experiment.NewRegistry().ListScenes()
	if len(args) > 0 {
		scenes = args
	}
	for _, scene := range scenes {
		presets := config.ListPresets(scene)
		if len(presets) == 0 {
			fmt.Printf("no presets for scene: %s\n", scene)
			continue
		}
		fmt.Printf("%s: %s\n", scene, strings.Join(presets, ", "))
	}
	return nil
}
