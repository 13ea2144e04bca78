// Command sgdemo renders, picks and stress-tests a demo scene graph.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/recording"
	_ "github.com/gogpu/sg/recording/backends/raster"
	_ "github.com/gogpu/sg/recording/backends/trace"
)

var (
	configPath string
	verbose    bool
	cfg        Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sgdemo",
		Short:        "Render and inspect a cached scene graph",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				sg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
			c, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("backend") {
				c.Backend, _ = flags.GetString("backend")
			}
			if flags.Changed("policy") {
				c.Cache.Policy, _ = flags.GetString("policy")
			}
			if flags.Changed("frames") {
				c.Frames, _ = flags.GetInt("frames")
			}
			if err := c.Validate(); err != nil {
				return err
			}
			if c.Cache.Capacity > 0 {
				sg.SetContextCapacity(c.Cache.Capacity)
			}
			cfg = c
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return sg.TeardownRenderContexts()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log cache activity to stderr")
	pf.String("backend", "raster", "render backend")
	pf.String("policy", "auto", "cache policy: auto, always, never or cost")
	pf.Int("frames", 10, "number of frames")

	root.AddCommand(newRenderCmd(), newPickCmd(), newStressCmd(), newBackendsCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the animated scene and report cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := NewScene(cfg.Scene.Grid, cfg.Scene.Complexity)
			b, err := recording.NewBackend(cfg.Backend)
			if err != nil {
				return err
			}
			opts, err := cfg.ActionOptions()
			if err != nil {
				return err
			}
			a := sg.NewRenderAction(append(opts, sg.WithBackend(b), sg.WithContextID(cfg.Context))...)
			for f := 0; f < cfg.Frames; f++ {
				sc.Step(f)
				a.Apply(sc.Root)
				if err := a.Err(); err != nil {
					return fmt.Errorf("frame %d: %w", f, err)
				}
			}
			if err := writeOutput(b, cmd.OutOrStdout()); err != nil {
				return err
			}
			printCellStats(cmd.OutOrStdout(), sc)
			return nil
		},
	}
}

func writeOutput(b recording.Backend, stdout io.Writer) error {
	switch fb := b.(type) {
	case recording.FileBackend:
		if err := fb.SaveToFile(cfg.Output); err != nil {
			return err
		}
		slog.Info("frame saved", "path", cfg.Output)
	case recording.WriterBackend:
		if _, err := fb.WriteTo(stdout); err != nil {
			return err
		}
	}
	return nil
}

func printCellStats(w io.Writer, sc *Scene) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"cell", "builds", "untouched", "last cost", "cached"})
	for _, cell := range sc.Cells {
		st := cell.CacheStats()
		cached := false
		if c := cell.RenderCache(cfg.Context); c != nil {
			_, cached = c.Output()
		}
		table.Append([]string{
			cell.Name(),
			strconv.FormatUint(st.Builds, 10),
			strconv.Itoa(st.UntouchedTraversals),
			st.LastCost.String(),
			strconv.FormatBool(cached),
		})
	}
	table.Render()
}

func newPickCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "pick x y",
		Short: "Pick the shapes under a viewport pixel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			opts, err := cfg.ActionOptions()
			if err != nil {
				return err
			}
			if all {
				opts = append(opts, sg.WithPickAll())
			}
			sc := NewScene(cfg.Scene.Grid, cfg.Scene.Complexity)
			sg.BoundingBox(sc.Root, opts...)

			a := sg.NewPickAction(opts...)
			a.SetPoint(x, y)
			a.Apply(sc.Root)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"path", "distance", "point"})
			for _, h := range a.Hits() {
				table.Append([]string{
					h.Path.String(),
					strconv.FormatFloat(h.Distance, 'f', 3, 64),
					fmt.Sprintf("%.3f %.3f %.3f", h.Point.X(), h.Point.Y(), h.Point.Z()),
				})
			}
			table.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%d hit(s), %d separator(s) culled\n", len(a.Hits()), a.Culled())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "report every hit instead of the nearest")
	return cmd
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Render from several contexts and pick concurrently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := NewScene(cfg.Scene.Grid, cfg.Scene.Complexity)
			opts, err := cfg.ActionOptions()
			if err != nil {
				return err
			}
			vp := cfg.Viewport()

			var g errgroup.Group
			for w := 0; w < cfg.Workers; w++ {
				ctx := cfg.Context + uint64(w)
				g.Go(func() error {
					a := sg.NewRenderAction(append(opts, sg.WithContextID(ctx))...)
					for f := 0; f < cfg.Frames; f++ {
						a.Apply(sc.Root)
						if err := a.Err(); err != nil {
							return fmt.Errorf("context %d frame %d: %w", ctx, f, err)
						}
					}
					return nil
				})
				g.Go(func() error {
					a := sg.NewPickAction(opts...)
					for f := 0; f < cfg.Frames; f++ {
						a.SetPoint((f*37)%vp.Width, (f*53)%vp.Height)
						a.Apply(sc.Root)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"context", "entries", "capacity", "hits", "misses", "hit rate"})
			for _, st := range sg.RenderContextStats() {
				table.Append([]string{
					strconv.FormatUint(st.Context, 10),
					strconv.Itoa(st.Len),
					strconv.Itoa(st.Capacity),
					strconv.FormatUint(st.Hits, 10),
					strconv.FormatUint(st.Misses, 10),
					strconv.FormatFloat(st.HitRate, 'f', 2, 64),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the registered render backends",
		Run: func(cmd *cobra.Command, _ []string) {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"backend", "features"})
			for _, name := range recording.Backends() {
				fs, _ := recording.BackendFeatures(name)
				table.Append([]string{name, fs.String()})
			}
			table.Render()
		},
	}
}
