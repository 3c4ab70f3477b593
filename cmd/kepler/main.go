package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/kepler/internal/analysis"
	"github.com/san-kum/kepler/internal/automation"
	"github.com/san-kum/kepler/internal/config"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/optim"
	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/storage"
	"github.com/san-kum/kepler/internal/viz"
)

var (
	dataDir  string
	logLevel string

	semiMajor      float64
	mass           float64
	eccentricity   float64
	method         string
	step           float64
	stepsPerPeriod int
	periods        float64
	tend           float64
	configFile     string
	preset         string
	name           string
	showPlot       bool

	svgFile   string
	outFile   string
	workers   int
	baseSteps int
	levels    int
	frameRate int

	trials       int
	perturbation float64
	radius       float64
	seed         int64
	tolerance    float64
	candidates   []int
)

// main registers the kepler commands and exits 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "kepler",
		Short:         "fixed-step integration of the two-body problem",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kepler", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate an orbit and store the trajectory",
		Args:  cobra.NoArgs,
		RunE:  runOrbit,
	}
	addOrbitFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "orbit", "run name prefix")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "draw the orbit after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the orbit canvas as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate the period of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [method]...",
		Short: "integrate the same orbit with several methods",
		RunE:  compareMethods,
	}
	addOrbitFlags(compareCmd)
	compareCmd.Flags().IntVar(&workers, "workers", 0, "concurrent integrations (0 = GOMAXPROCS)")

	convergeCmd := &cobra.Command{
		Use:   "converge [method]...",
		Short: "estimate empirical convergence orders by step halving",
		RunE:  convergeMethods,
	}
	addOrbitFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&baseSteps, "base-steps", 200, "steps over the span at the coarsest level")
	convergeCmd.Flags().IntVar(&levels, "levels", 4, "number of halvings")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "integrate an orbit with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addOrbitFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml batch of orbits concurrently and store them",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial velocity and count orbits that stay bounded",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addOrbitFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.05, "relative velocity perturbation")
	monteCarloCmd.Flags().Float64Var(&radius, "radius", 0, "escape radius (0 = 10a)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "find the fewest steps per period meeting an energy tolerance",
		Args:  cobra.NoArgs,
		RunE:  tuneStep,
	}
	addOrbitFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&tolerance, "tol", 1e-6, "maximum relative energy error")
	tuneCmd.Flags().IntSliceVar(&candidates, "candidates", []int{50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000, 50000}, "steps per period to try")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, compareCmd, convergeCmd, presetsCmd, exportJSONCmd, liveCmd, scenarioCmd, monteCarloCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func initLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "kepler").Logger()
	return nil
}

func addOrbitFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().Float64Var(&semiMajor, "a", def.Elements.A, "semi-major axis")
	cmd.Flags().Float64Var(&mass, "m", def.Elements.M, "central mass (G=1)")
	cmd.Flags().Float64Var(&eccentricity, "e", def.Elements.E, "eccentricity, 0 <= e < 1")
	cmd.Flags().StringVar(&method, "method", def.Method, "stepper: "+fmt.Sprint(integrators.Names()))
	cmd.Flags().Float64Var(&step, "h", 0, "step size (overrides --steps-per-period)")
	cmd.Flags().IntVar(&stepsPerPeriod, "steps-per-period", def.StepsPerPeriod, "steps per orbital period")
	cmd.Flags().Float64Var(&periods, "periods", def.Periods, "integration span in periods")
	cmd.Flags().Float64Var(&tend, "tend", 0, "integration span in time units (overrides --periods)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers the preset, then the config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		log.Debug().Str("preset", preset).Msg("applied preset")
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		log.Debug().Str("path", configFile).Msg("loaded config")
	}

	flags := cmd.Flags()
	if flags.Changed("a") {
		cfg.Elements.A = semiMajor
	}
	if flags.Changed("m") {
		cfg.Elements.M = mass
	}
	if flags.Changed("e") {
		cfg.Elements.E = eccentricity
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("h") {
		cfg.Step = step
	}
	if flags.Changed("steps-per-period") {
		cfg.StepsPerPeriod = stepsPerPeriod
		cfg.Step = 0
	}
	if flags.Changed("periods") {
		cfg.Periods = periods
		cfg.TEnd = 0
	}
	if flags.Changed("tend") {
		cfg.TEnd = tend
	}
	return cfg, nil
}

func resolvePlan(cmd *cobra.Command) (*config.Plan, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cfg.Plan()
}

func runOrbit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	logger := log.With().Str("method", plan.Method).Float64("h", plan.Step).Float64("tend", plan.TEnd).Logger()
	logger.Info().Float64("a", cfg.Elements.A).Float64("e", cfg.Elements.E).Float64("m", plan.Mass).Msg("integrating orbit")
	start := time.Now()

	tr, err := orbit.IntegrateOrbitContext(cmd.Context(), plan.Z0, plan.Mass, plan.TEnd, plan.Step, plan.Method)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Name:     name,
		Elements: cfg.Elements,
		Period:   plan.Period,
		TEnd:     plan.TEnd,
	}, tr)
	if err != nil {
		return err
	}
	logger.Info().Str("run", runID).Int("samples", tr.Len()).Dur("elapsed", elapsed).Msg("run stored")

	fmt.Println(viz.Summary(runID, tr, plan.Period))
	if showPlot {
		fmt.Println(viz.OrbitCanvas(tr, 60, 24).String())
	}
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tMETHOD\tA\tE\tM\tH\tTEND\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%.4g\t%.4g\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Elements.A,
			run.Elements.E,
			run.Elements.M,
			run.Step,
			run.TEnd,
			run.Samples,
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
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	canvas := viz.OrbitCanvas(tr, 60, 24)
	fmt.Println(viz.Summary(meta.ID, tr, meta.Period))
	fmt.Println(canvas.String())
	fmt.Println(viz.PositionPlot(tr))
	fmt.Println()
	fmt.Println(viz.EnergyPlot(tr))
	fmt.Println()
	fmt.Println(viz.EnergyErrorPlot(tr))

	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(canvas.SVG(4)), 0644); err != nil {
			return err
		}
		log.Info().Str("path", svgFile).Msg("wrote svg")
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	rows := []viz.Row{{Label: "period (exact)", Value: viz.Sci(meta.Period)}}
	if p, err := analysis.PeriodFromCrossings(tr.Times, tr.Y); err == nil {
		rows = append(rows, viz.Row{Label: "zero crossings", Value: viz.Sci(p)})
	} else {
		log.Warn().Err(err).Msg("crossing period unavailable")
	}
	if p, err := analysis.DominantPeriod(tr.Times, tr.X); err == nil {
		rows = append(rows, viz.Row{Label: "spectral peak", Value: viz.Sci(p)})
	} else {
		log.Warn().Err(err).Msg("spectral period unavailable")
	}
	rows = append(rows, viz.Row{Label: "max rel dE", Value: viz.Sci(tr.MaxEnergyError())})

	fmt.Println(viz.BoxWithTitle(meta.ID, viz.KeyValues(rows)))
	return nil
}

func methodsFromArgs(args []string) []string {
	if len(args) == 0 {
		return integrators.Names()
	}
	return args
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	methods := methodsFromArgs(args)
	jobs := make([]orbit.Job, len(methods))
	for i, m := range methods {
		jobs[i] = orbit.Job{Name: m, Z0: plan.Z0, Mass: plan.Mass, TEnd: plan.TEnd, Step: plan.Step, Method: m}
	}

	start := time.Now()
	results, err := orbit.Sweep(cmd.Context(), jobs, workers)
	if err != nil {
		return err
	}
	log.Info().Int("methods", len(methods)).Dur("elapsed", time.Since(start)).Msg("compare finished")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSAMPLES\tFINAL X\tFINAL Y\tMAX |DR| EXACT\tMAX REL DE")
	for i, tr := range results {
		n := tr.Len() - 1
		dr, err := analysis.PositionError(cfg.Elements, tr.Times, tr.X, tr.Y)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%.8f\t%.8f\t%.3e\t%.3e\n",
			methods[i], tr.Len(), tr.X[n], tr.Y[n], dr, tr.MaxEnergyError())
	}
	return w.Flush()
}

func convergeMethods(cmd *cobra.Command, args []string) error {
	plan, err := resolvePlan(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tORDER\tSTEPS\tH\tDIFF\tRATIO ORDER")
	for _, m := range methodsFromArgs(args) {
		integ, err := integrators.Lookup(m)
		if err != nil {
			return err
		}
		lv, err := analysis.Richardson(integ, kepler.Derivs, plan.Z0, plan.TEnd, baseSteps, levels, plan.Mass)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		for _, l := range lv {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.4e\t%.4e\t%.3f\n", m, integ.Order(), l.Steps, l.H, l.Diff, l.Order)
		}
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMETHOD\tA\tE\tM\tSTEPS/PERIOD\tPERIODS")
	for _, p := range config.ListPresets() {
		cfg := config.GetPreset(p)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%d\t%g\n",
			p, cfg.Method, cfg.Elements.A, cfg.Elements.E, cfg.Elements.M, cfg.StepsPerPeriod, cfg.Periods)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSON(os.Stdout, *meta, tr)
	}
	if err := storage.ExportJSONFile(outFile, *meta, tr); err != nil {
		return err
	}
	log.Info().Str("run", runID).Str("path", outFile).Msg("exported")
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	plan, err := resolvePlan(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(plan, frameRate)
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log.Info().Str("scenario", scenario.Name).Int("runs", len(scenario.Runs)).Msg("running scenario")
	start := time.Now()

	jobs, results, err := automation.RunScenario(cmd.Context(), scenario)
	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("scenario finished")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tMETHOD\tSAMPLES\tMAX REL DE")
	for i, tr := range results {
		job := jobs[i]
		meta := storage.RunMetadata{Name: job.Name, TEnd: job.TEnd}
		if el, err := kepler.ElementsFromState(job.Z0, job.Mass); err == nil {
			meta.Elements = el
			if init, err := el.Initial(); err == nil {
				meta.Period = init.Period
			}
		}
		runID, err := st.Save(meta, tr)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3e\n", job.Name, runID, tr.Method, tr.Len(), tr.MaxEnergyError())
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}
	stepsPer := int(math.Round(plan.Period / plan.Step))

	log.Info().Int("trials", trials).Float64("perturbation", perturbation).Int64("seed", seed).Msg("running monte carlo")
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Elements:       cfg.Elements,
		Method:         cfg.Method,
		Perturbation:   perturbation,
		NumTrials:      trials,
		Periods:        plan.TEnd / plan.Period,
		StepsPerPeriod: stepsPer,
		Radius:         radius,
		Seed:           seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	bound := 0
	for _, r := range results {
		if r.Energy < 0 {
			bound++
		}
	}
	fmt.Println(viz.BoxWithTitle("monte carlo", viz.KeyValues([]viz.Row{
		{Label: "trials", Value: fmt.Sprintf("%d", len(results))},
		{Label: "bound", Value: fmt.Sprintf("%d", bound)},
		{Label: "stable", Value: fmt.Sprintf("%d", stable)},
		{Label: "unstable", Value: fmt.Sprintf("%d", unstable)},
	})))
	return nil
}

func tuneStep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	choice, err := optim.CheapestStep(cmd.Context(), cfg.Elements, cfg.Method, plan.TEnd/plan.Period, candidates, tolerance)
	if err != nil {
		return err
	}

	fmt.Println(viz.BoxWithTitle("tune "+cfg.Method, viz.KeyValues([]viz.Row{
		{Label: "tolerance", Value: viz.Sci(tolerance)},
		{Label: "steps/period", Value: fmt.Sprintf("%d", choice.StepsPerPeriod)},
		{Label: "step", Value: viz.Sci(choice.Step)},
		{Label: "max rel dE", Value: viz.Sci(choice.EnergyError)},
	})))
	return nil
}
