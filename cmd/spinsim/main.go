package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	"github.com/san-kum/spinsim/internal/analysis"
	"github.com/san-kum/spinsim/internal/broadcast"
	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/metrics"
	"github.com/san-kum/spinsim/internal/spin"
	"github.com/san-kum/spinsim/internal/storage"
	"github.com/san-kum/spinsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	// Simulation overrides
	numNodes    int
	neighbors   int
	coupling    float64
	temperature float64
	field       float64
	ternary     bool
	intervalMs  int
	trials      int
	alpha       float64
	search      string
	seed        int64
	ticks       int
	// Sweep
	tempMin    float64
	tempMax    float64
	sweepSteps int
	sweepSeeds int
	// Serve
	addr string
	fps  int
	// Output
	outPath string
	runName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "spinsim",
		Short:         "spin glass metropolis simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fset := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})
	rootCmd.PersistentFlags().AddGoFlagSet(fset)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spinsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of frames to simulate")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or \"run\")")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the signal to websocket clients on /signal",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&fps, "fps", 60, "simulation frames per second")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep temperature and report order parameters",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "frames per run")
	sweepCmd.Flags().Float64Var(&tempMin, "tmin", 0.5, "lowest temperature")
	sweepCmd.Flags().Float64Var(&tempMax, "tmax", 5.0, "highest temperature")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of temperatures")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 4, "runs per temperature")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark graph construction and ticking",
		Args:  cobra.NoArgs,
		RunE:  benchSimulator,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectral and correlation analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run signal to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, sweepCmd, benchCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportJSONCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&numNodes, "nodes", d.NumNodes, "number of spins")
	cmd.Flags().IntVar(&neighbors, "neighbors", d.NeighborsCount, "nearest neighbours per node")
	cmd.Flags().Float64Var(&coupling, "coupling", d.Coupling, "coupling constant J")
	cmd.Flags().Float64Var(&temperature, "temperature", d.Temperature, "initial temperature")
	cmd.Flags().Float64Var(&field, "field", d.Field, "initial external field")
	cmd.Flags().BoolVar(&ternary, "ternary", d.TernaryMode, "spins in {-1, 0, +1}")
	cmd.Flags().IntVar(&intervalMs, "interval", d.FluctuationIntervalMs, "fluctuation interval in ms")
	cmd.Flags().IntVar(&trials, "trials", d.TrialsPerTick, "metropolis trials per tick")
	cmd.Flags().Float64Var(&alpha, "alpha", d.Alpha, "smoothing factor")
	cmd.Flags().StringVar(&search, "search", d.NeighborSearch, "neighbour search: brute or kdtree")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, errors.Wrapf(err, "available: %v", config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("nodes") {
		cfg.NumNodes = numNodes
	}
	if flags.Changed("neighbors") {
		cfg.NeighborsCount = neighbors
	}
	if flags.Changed("coupling") {
		cfg.Coupling = coupling
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("field") {
		cfg.Field = field
	}
	if flags.Changed("ternary") {
		cfg.TernaryMode = ternary
	}
	if flags.Changed("interval") {
		cfg.FluctuationIntervalMs = intervalMs
	}
	if flags.Changed("trials") {
		cfg.TrialsPerTick = trials
	}
	if flags.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if flags.Changed("search") {
		cfg.NeighborSearch = search
	}
	if flags.Lookup("ticks") != nil && flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cfg.Seed == nil || flags.Changed("seed") {
		cfg.Seed = &seed
	}
	return cfg, nil
}

func newSimulator(cmd *cobra.Command) (*spin.Simulator, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.ToSpin()
	if err != nil {
		return nil, err
	}
	return spin.New(sc)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ec, err := cfg.Experiment()
	if err != nil {
		return err
	}

	name := runName
	if name == "" {
		name = "run"
		if preset != "" {
			name = preset
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(ec)
	if err := exp.Setup(metrics.Standard(ec.Spin.NumNodes)); err != nil {
		return err
	}

	fmt.Printf("running %d spins for %d ticks...\n", ec.Spin.NumNodes, ec.Ticks)
	start := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("seed: %d\n", ec.Spin.Seed)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6f\n", n, result.Metrics[n])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := newSimulator(cmd)
	if err != nil {
		return err
	}
	name := "spinsim"
	if preset != "" {
		name = preset
	}
	return viz.Run(s, name)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := newSimulator(cmd)
	if err != nil {
		return err
	}
	if fps <= 0 {
		return errors.Errorf("fps must be positive, got %d", fps)
	}

	srv := broadcast.NewServer(s, time.Second/time.Duration(fps))
	httpSrv := newHTTPServer(addr, srv.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		klog.Infof("serve: listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()

	select {
	case err := <-errc:
		stop()
		<-runErr
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		klog.Warningf("serve: shutdown: %v", err)
	}
	return <-runErr
}

const readHeaderTimeout = 5 * time.Second

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ec, err := cfg.Experiment()
	if err != nil {
		return err
	}

	sweep := &experiment.Sweep{
		Base:     ec,
		TempMin:  tempMin,
		TempMax:  tempMax,
		NumSteps: sweepSteps,
		Seeds:    sweepSeeds,
	}
	fmt.Printf("sweeping T in [%.2f, %.2f] over %d points, %d seeds each...\n\n",
		tempMin, tempMax, sweepSteps, sweepSeeds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	points, err := sweep.Run(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\t|M|\tCHI\tBINDER\tE/N\tACCEPT")
	absM := make([]float64, len(points))
	chi := make([]float64, len(points))
	for i, p := range points {
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.4f\t%.4f\t%.3f\n",
			p.Temperature, p.MeanAbsM, p.Susceptibility, p.Binder, p.MeanEnergy, p.AcceptanceRate)
		absM[i] = p.MeanAbsM
		chi[i] = p.Susceptibility
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(points) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(absM, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("mean |m| vs temperature")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(chi, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("susceptibility vs temperature")))
	}
	return nil
}

func benchSimulator(cmd *cobra.Command, args []string) error {
	sizes := []int{100, 300, 1000, 3000}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tSEARCH\tBUILD\tTICK\tTRIALS/SEC")

	for _, n := range sizes {
		for _, s := range []spin.Search{spin.BruteForce, spin.KDTree} {
			cfg := spin.DefaultConfig()
			cfg.NumNodes = n
			cfg.Search = s
			cfg.Seed = 42

			start := time.Now()
			sim, err := spin.New(cfg)
			if err != nil {
				return err
			}
			build := time.Since(start)

			const frames = 200
			start = time.Now()
			for i := 0; i < frames; i++ {
				sim.Tick()
			}
			elapsed := time.Since(start)
			perSec := float64(frames*cfg.TrialsPerTick) / elapsed.Seconds()

			name := "brute"
			if s == spin.KDTree {
				name = "kdtree"
			}
			fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%.0f\n", n, name, build, elapsed/frames, perSec)
		}
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tNODES\tK\tJ\tT0\tH0\tTICKS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.NumNodes,
			run.Config.NeighborsCount,
			run.Config.Coupling,
			run.Config.Temperature,
			run.Config.Field,
			run.Ticks,
			run.Seed,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []spin.Signal, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	signals, err := st.LoadSignals(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, signals, nil
}

func series(signals []spin.Signal, pick func(spin.Signal) float64) []float64 {
	out := make([]float64, len(signals))
	for i, s := range signals {
		out[i] = pick(s)
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, signals, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(signals))

	plots := []struct {
		caption string
		pick    func(spin.Signal) float64
	}{
		{"magnetization", func(s spin.Signal) float64 { return s.Magnetization }},
		{"smoothed magnetization", func(s spin.Signal) float64 { return s.Smoothed }},
		{"temperature", func(s spin.Signal) float64 { return s.Temperature }},
		{"field", func(s spin.Signal) float64 { return s.Field }},
		{"energy", func(s spin.Signal) float64 { return s.Energy }},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(series(signals, p.pick),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, signals, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(signals) < 4 {
		return errors.New("not enough data to analyze")
	}

	data := series(signals, func(s spin.Signal) float64 { return s.Magnetization })
	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[1:]
	if len(plotData) > 200 {
		plotData = plotData[:200]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (magnetization)"),
	))
	fmt.Println()

	rate := 0.0
	if meta.FrameIntervalMs > 0 {
		rate = 1000 / meta.FrameIntervalMs
	}
	bin, _ := analysis.Peak(ps)
	if rate > 0 {
		freq := analysis.BinFrequency(bin, len(data), rate)
		fmt.Printf("dominant frequency: %.4f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1/freq)
		}
	} else {
		fmt.Printf("dominant frequency: %.4f cycles/tick\n", analysis.BinFrequency(bin, len(data), 1))
	}

	acf := analysis.Autocorrelation(data, len(data)/4)
	if acf != nil {
		fmt.Printf("correlation time: %d ticks\n", analysis.CorrelationTime(acf))
	}
	sum := analysis.Summarize(data)
	fmt.Printf("magnetization: mean %.4f, std %.4f, range [%.3f, %.3f]\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON("-", meta, nil)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, signals, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(outPath, meta, signals); err != nil {
		return err
	}
	if outPath != "-" {
		klog.Infof("export: wrote %s", outPath)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, signals, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(outPath, signals); err != nil {
		return err
	}
	if outPath != "-" {
		klog.Infof("export: wrote %s", outPath)
	}
	return nil
}
