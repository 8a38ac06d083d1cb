package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"redfield"
	"redfield/load"
	"redfield/maths"
	"redfield/tensor"
)

var (
	rootCmd = &cobra.Command{
		Use:           "redfield",
		Short:         "Bloch-Redfield master equation solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd.ErrOrStderr())
		},
	}
	runCmd = &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Assemble the generator and evolve the initial state of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	sweepCmd = &cobra.Command{
		Use:   "sweep <scenario.yaml>...",
		Short: "Run several independent scenarios concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSweep,
	}
	tensorCmd = &cobra.Command{
		Use:   "tensor <scenario.yaml>",
		Short: "Print the eigenbasis generator of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runTensor,
	}

	logLevel  string
	logJSON   bool
	outDir    string
	jobs      int
	noSecular bool
	cutoff    float64
	onlyR     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	runCmd.Flags().StringVarP(&outDir, "out", "o", "", "base directory for output files (default: scenario directory)")
	sweepCmd.Flags().StringVarP(&outDir, "out", "o", "", "base directory for output files (default: scenario directory)")
	sweepCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "maximum concurrent scenarios")
	tensorCmd.Flags().BoolVar(&noSecular, "no-secular", false, "disable the secular approximation")
	tensorCmd.Flags().Float64Var(&cutoff, "cutoff", 0, "override the secular cutoff")
	tensorCmd.Flags().BoolVar(&onlyR, "relaxation-only", false, "print the relaxation tensor without the baseline generator")

	rootCmd.AddCommand(runCmd, sweepCmd, tensorCmd)
}

func setupLogger(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if logJSON {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// simulate 加载、求解并导出单个场景
func simulate(path string) (*redfield.Run, []string, error) {
	s, err := load.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	run, err := redfield.Simulate(s, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	files, err := run.Export(dir)
	return run, files, err
}

func summary(w io.Writer, run *redfield.Run, files []string) {
	last := len(run.Evolution.Times) - 1
	fmt.Fprintf(w, "%s (%s): %d outputs in %s\n", run.Scenario.Name, run.ID, len(run.Evolution.Times), run.Elapsed)
	if last >= 0 {
		fmt.Fprintf(w, "  t=%g populations=%.6g\n", run.Evolution.Times[last], run.Record.Populations[last])
		for i, name := range run.Record.Names {
			fmt.Fprintf(w, "  <%s>=%.6g\n", name, run.Record.Expect[last][i])
		}
	}
	for _, wn := range run.Tensor.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", wn)
	}
	for _, f := range files {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	run, files, err := simulate(args[0])
	if err != nil {
		return err
	}
	summary(cmd.OutOrStdout(), run, files)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	type outcome struct {
		run   *redfield.Run
		files []string
	}
	results := make([]outcome, len(args))
	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			run, files, err := simulate(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = outcome{run: run, files: files}
			return nil
		})
	}
	err := g.Wait()
	for _, r := range results {
		if r.run != nil {
			summary(cmd.OutOrStdout(), r.run, r.files)
		}
	}
	return err
}

func runTensor(cmd *cobra.Command, args []string) error {
	s, err := load.LoadFile(args[0])
	if err != nil {
		return err
	}
	p, err := s.Build()
	if err != nil {
		return err
	}
	opts := tensor.Options{
		Jumps:         p.Jumps,
		Secular:       p.Secular && !noSecular,
		SecularCutoff: p.SecularCutoff,
		Logger:        slog.Default(),
	}
	if cutoff > 0 {
		opts.SecularCutoff = cutoff
	}
	res, err := tensor.Assemble(p.H, p.Interactions, opts)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "eigenvalues: %.6g\n", res.Basis.Evals)
	var m maths.Matrix[complex128] = res.Generator
	label := "generator"
	if onlyR {
		m, label = res.Tensor, "relaxation tensor"
	}
	fmt.Fprintf(w, "%s (%dx%d, %d nonzero):\n", label, m.Rows(), m.Cols(), m.NonZeroCount())
	fmt.Fprint(w, indent(m.String()))
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", wn)
	}
	return nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
