package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tgienger/pmdash/internal/csvimport"
	"github.com/tgienger/pmdash/internal/export"
	"github.com/tgienger/pmdash/internal/stats"
	"github.com/tgienger/pmdash/internal/watch"
)

func importCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE...",
		Short: "Import projects and tasks from CSV files",
		Long: `Import reads CSV files whose header names the required columns

  Project Name, Project Description, Task Title, Task Description,
  Task Status, Task Priority

and optionally

  Project Category, Project Color, Due Date

and creates one project per distinct name with its tasks. Cells are split
on commas with no quoting. Arguments may be glob patterns such as
"exports/**/*.csv". With storage enabled the result is saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := csvimport.ExpandPaths(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no files match")
			}

			ws, err := openWorkspace(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer ws.Close()

			importer := csvimport.NewImporter(ws.store, ws.bus, ws.logger.Logger)
			out := cmd.OutOrStdout()
			var failed error
			for _, path := range paths {
				res, err := importer.ImportFile(cmd.Context(), path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, csvimport.UserMessage(err))
					failed = errors.Join(failed, err)
					continue
				}
				fmt.Fprintf(out, "%s: %d projects, %d tasks\n", path, res.Projects, res.Tasks)
			}

			if err := ws.Save(cmd.Context()); err != nil {
				return fmt.Errorf("save workspace: %w", err)
			}
			return failed
		},
	}
}

func statsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer ws.Close()

			now := time.Now()
			snap := ws.store.Snapshot()
			st := stats.Compute(snap.Projects, snap.Activities, now)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Projects:       %d\n", st.TotalProjects)
			fmt.Fprintf(out, "Tasks:          %d\n", st.TotalTasks)
			fmt.Fprintf(out, "Completed:      %d\n", st.CompletedTasks)
			fmt.Fprintf(out, "Due this week:  %d\n", st.TasksThisWeek)

			if len(st.UpcomingDeadlines) > 0 {
				fmt.Fprintln(out, "\nUpcoming deadlines:")
				for _, t := range st.UpcomingDeadlines {
					fmt.Fprintf(out, "  %s  %-40s %s\n", t.DueDate.Format("Jan 02"), t.Title, t.Priority)
				}
			}
			if len(st.RecentActivity) > 0 {
				fmt.Fprintln(out, "\nRecent activity:")
				for _, a := range st.RecentActivity {
					fmt.Fprintf(out, "  %s  %s: %s\n", a.Timestamp.Format("Jan 02 15:04"), a.User.Name, a.Description)
				}
			}
			return nil
		},
	}
}

func exportCmd(v *viper.Viper) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the workspace and its statistics as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer ws.Close()

			now := time.Now()
			snap := ws.store.Snapshot()
			doc := export.NewDocument(snap, stats.Compute(snap.Projects, snap.Activities, now), now)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return export.Write(w, doc, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatYAML), "output format (yaml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func watchCmd(v *viper.Viper) *cobra.Command {
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Import CSV files as they appear or change in a directory",
		Long: `Watch imports every file matching watch.pattern (default "**/*.csv")
under DIR each time it is created or its content changes. With storage
enabled the workspace is saved after each import. Stop with Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			dir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ws, err := openWorkspace(ctx, v)
			if err != nil {
				return err
			}
			defer ws.Close()

			w, err := watch.New(watch.Config{
				Dir:      dir,
				Pattern:  ws.cfg.Watch.Pattern,
				Debounce: ws.cfg.Watch.Debounce(),
			}, ws.logger.Logger)
			if err != nil {
				return fmt.Errorf("watch pattern %q: %w", ws.cfg.Watch.Pattern, err)
			}

			importer := csvimport.NewImporter(ws.store, ws.bus, ws.logger.Logger)
			out := cmd.OutOrStdout()
			importOne := func(rel, abs string) {
				res, err := importer.ImportFile(ctx, abs)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", rel, csvimport.UserMessage(err))
					return
				}
				fmt.Fprintf(out, "%s: %d projects, %d tasks\n", rel, res.Projects, res.Tasks)
				if err := ws.Save(ctx); err != nil {
					ws.logger.Error("save after import failed", "path", rel, "error", err)
				}
			}

			existing, err := w.Scan()
			if err != nil {
				return err
			}
			if initial {
				for _, rel := range existing {
					importOne(rel, filepath.Join(dir, filepath.FromSlash(rel)))
				}
			}

			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()
			fmt.Fprintf(out, "Watching %s for %s\n", dir, ws.cfg.Watch.Pattern)

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					importOne(ev.Path, ev.AbsPath)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&initial, "initial", false, "also import matching files that already exist")
	return cmd
}
