package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/rgm/internal/core"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSquare(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "square.json")
	scene := core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(1, 1), Goal: core.Pos(1, 4)},
		{Start: core.Pos(3, 1), Goal: core.Pos(0, 1)},
		{Start: core.Pos(3, 3), Goal: core.Pos(3, 0)},
		{Start: core.Pos(1, 3), Goal: core.Pos(4, 3)},
	})
	require.NoError(t, scenefile.SaveScene(path, scene))
	return path
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	scene := writeSquare(t, dir)
	movesPath := filepath.Join(dir, "moves.json")

	_, err := execute(t, "solve", scene, "--verify", "--out", movesPath)
	require.NoError(t, err)

	moves, err := scenefile.LoadMoves(movesPath)
	require.NoError(t, err)
	assert.Len(t, moves, 9)

	out, err := execute(t, "solve", scene)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[[0,[1,1],[1,2]]"), out)

	out, err = execute(t, "solve", scene, "--render")
	require.NoError(t, err)
	assert.Contains(t, out, "R00 (1,1) -> (1,2)")
}

func TestSolveCommandFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pinwheel.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"width":5,"height":5,"paths":[[[1,1],[1,4]],[[2,1],[0,1]],[[2,2],[2,0]],[[1,2],[4,2]]]}`), 0644))

	_, err := execute(t, "solve", path)
	assert.Error(t, err)

	out, err := execute(t, "verify", path)
	assert.Error(t, err)
	assert.Contains(t, out, "solver: failed (no-gap)")
	assert.Contains(t, out, "oracle: solvable")
}

func TestSolveMetrics(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "metrics.txt")
	_, err := execute(t, "solve", writeSquare(t, dir), "--metrics", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rgm_moves_total{axis="column"} 5`)
	assert.Contains(t, string(data), "rgm_cycles_total 1")
}

func TestStepCommand(t *testing.T) {
	dir := t.TempDir()
	scene := writeSquare(t, dir)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\ns\nc\n"))
	cmd.SetArgs([]string{"step", scene})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "   1  R00 (1,1) -> (1,2)")
	assert.Contains(t, out.String(), "cycle [0 3 2 1]")
	assert.Contains(t, out.String(), "   9  R02 (3,1) -> (3,0)")
	assert.Contains(t, out.String(), "RGM: 9 moves, 1 cycles")
}

func TestStepCommandQuit(t *testing.T) {
	dir := t.TempDir()
	scene := writeSquare(t, dir)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("q\n"))
	cmd.SetArgs([]string{"step", scene})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "stopped after")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "validate", writeSquare(t, dir))
	require.NoError(t, err)
	assert.Equal(t, "ok: 4 robots on 5x5\n", out)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"width":5,"height":5,"paths":[[[1,1],[2,2]]]}`), 0644))
	_, err = execute(t, "validate", bad)
	assert.ErrorIs(t, err, core.ErrInvalidScene)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	scene := writeSquare(t, dir)
	movesPath := filepath.Join(dir, "moves.json")
	_, err := execute(t, "solve", scene, "--out", movesPath)
	require.NoError(t, err)

	out, err := execute(t, "render", scene, "--successors", "--color=false")
	require.NoError(t, err)
	assert.Contains(t, out, "|  |00|  |01|  |")
	assert.Contains(t, out, " ID: X+ X- Y+ Y-")

	out, err = execute(t, "render", scene, "--moves", movesPath, "--color=false")
	require.NoError(t, err)
	assert.Contains(t, out, "|  |  |  |02|  |")
	assert.Contains(t, out, "|01|  |  |  |  |")
}

func TestGenerateAndVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gen.json")
	_, err := execute(t, "generate", "--width", "6", "--height", "6", "--robots", "3", "--seed", "5", "--out", path)
	require.NoError(t, err)

	scene, err := scenefile.LoadScene(path)
	require.NoError(t, err)
	assert.Len(t, scene.Robots, 3)
	require.NoError(t, scene.ValidateStrict())

	out, err := execute(t, "generate", "--width", "6", "--height", "6", "--robots", "3", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"width": 6`)

	out, err = execute(t, "verify", writeSquare(t, dir))
	require.NoError(t, err)
	assert.Contains(t, out, "solver: ok (9 moves, 1 cycles)")
	assert.Contains(t, out, "oracle: solvable")
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.json")
	metrics := filepath.Join(dir, "metrics.txt")
	out, err := execute(t, "bench", "--scenes", "5", "--workers", "2",
		"--width", "8", "--height", "8", "--robots", "4",
		"--out", results, "--format", "json", "--metrics", metrics)
	require.NoError(t, err)
	assert.Contains(t, out, "BENCHMARK SUMMARY")
	assert.FileExists(t, results)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rgm_bench_runs_total")
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "rgm.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: loud\n"), 0644))
	_, err := execute(t, "--config", cfg, "validate", writeSquare(t, dir))
	assert.Error(t, err)
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	path := writeSquare(t, dir)

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()
	require.NoError(t, watcher.Add(dir))

	a := &app{}
	root := newRootCmd()
	root.SetContext(context.Background())
	require.NoError(t, a.setup(root, nil))

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.watchLoop(ctx, watcher, path, func() { changes <- struct{}{} })
	}()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), data, 0644))
	require.NoError(t, os.WriteFile(path, data, 0644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	cancel()
	require.NoError(t, <-done)
}
