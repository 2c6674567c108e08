package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/core"
)

func smallScene() *core.Scene {
	return core.NewScene(3, 2, []core.Path{
		{Start: core.Pos(0, 0), Goal: core.Pos(0, 1)},
		{Start: core.Pos(2, 1), Goal: core.Pos(1, 1)},
	})
}

func TestGrid(t *testing.T) {
	var buf bytes.Buffer
	scene := smallScene()
	require.NoError(t, NewWithColor(&buf, false).Grid(scene, scene.Starts()))

	want := "----------\n" +
		"|00|  |  |\n" +
		"----------\n" +
		"|  |  |01|\n" +
		"----------\n"
	assert.Equal(t, want, buf.String())
}

func TestGridColor(t *testing.T) {
	var plain, colored bytes.Buffer
	scene := smallScene()
	require.NoError(t, NewWithColor(&plain, false).Grid(scene, scene.Starts()))
	require.NoError(t, NewWithColor(&colored, true).Grid(scene, scene.Starts()))
	assert.Contains(t, colored.String(), "00")
	assert.GreaterOrEqual(t, colored.Len(), plain.Len())
}

func TestSuccessors(t *testing.T) {
	scene := core.NewScene(5, 5, []core.Path{
		{Start: core.Pos(1, 1), Goal: core.Pos(1, 4)},
		{Start: core.Pos(3, 1), Goal: core.Pos(0, 1)},
		{Start: core.Pos(3, 3), Goal: core.Pos(3, 0)},
		{Start: core.Pos(1, 3), Goal: core.Pos(4, 3)},
	})
	var buf bytes.Buffer
	require.NoError(t, NewWithColor(&buf, false).Successors(scene, algo.SuccessorTable(scene)))

	want := " ID: X+ X- Y+ Y-\n" +
		"R00: 01 -- 03 -- (1,1)->(1,4)\n" +
		"R01: -- 00 02 -- (3,1)->(0,1)\n" +
		"R02: -- 03 -- 01 (3,3)->(3,0)\n" +
		"R03: 02 -- -- 00 (1,3)->(4,3)\n"
	assert.Equal(t, want, buf.String())
}

func TestMoves(t *testing.T) {
	var buf bytes.Buffer
	moves := core.MoveList{{Robot: 1, From: core.Pos(2, 3), To: core.Pos(5, 3)}}
	require.NoError(t, NewWithColor(&buf, false).Moves(moves))
	assert.Equal(t, "   1  R01 (2,3) -> (5,3)\n", buf.String())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
