package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/rgm/internal/scenefile"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch SCENE",
		Short: "Re-solve a scene every time the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()

			// Editors often replace files by rename, so watch the directory.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return err
			}
			a.resolveFile(cmd, path)
			return a.watchLoop(cmd.Context(), watcher, path, func() { a.resolveFile(cmd, path) })
		},
	}
}

func (a *app) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func()) error {
	a.log.Info("watching", slog.String("path", path))
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", slog.String("error", err.Error()))

		case <-ctx.Done():
			a.log.Info("watch stopped")
			return nil
		}
	}
}

// resolveFile loads and solves the scene, reporting instead of failing so
// the watch keeps running.
func (a *app) resolveFile(cmd *cobra.Command, path string) {
	w := cmd.OutOrStdout()
	scene, err := scenefile.LoadScene(path)
	if err != nil {
		fmt.Fprintln(w, "load failed:", err)
		return
	}
	res, err := a.solve(cmd, scene, a.solverOptions(), a.cfg.Solver.Verify)
	if err != nil {
		fmt.Fprintln(w, "solve failed:", err)
		return
	}
	printResult(w, res)
}
