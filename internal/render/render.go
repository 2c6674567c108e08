// Package render draws scenes and solver state as text.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/elektrokombinacija/rgm/internal/core"
)

var (
	colorAtGoal = lipgloss.Color("#2CD7C7")
	colorMoving = lipgloss.Color("#F4D03F")
	colorMuted  = lipgloss.Color("#2C4A54")
)

// Renderer writes text views of a scene. Colour is applied only when
// enabled, so output stays byte-stable for files and tests.
type Renderer struct {
	w     io.Writer
	color bool

	atGoal lipgloss.Style
	moving lipgloss.Style
	muted  lipgloss.Style
}

// New creates a renderer writing to w, with colour when w is a terminal.
func New(w io.Writer) *Renderer {
	return NewWithColor(w, IsTerminal(w))
}

// NewWithColor creates a renderer with colour forced on or off.
func NewWithColor(w io.Writer, color bool) *Renderer {
	return &Renderer{
		w:      w,
		color:  color,
		atGoal: lipgloss.NewStyle().Foreground(colorAtGoal).Bold(true),
		moving: lipgloss.NewStyle().Foreground(colorMoving),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Grid draws the scene with robots at positions, row y=0 first. Each
// cell is "|NN" with the robot id, blank when empty.
func (r *Renderer) Grid(scene *core.Scene, positions []core.Position) error {
	at := make(map[core.Position]core.Robot, len(positions))
	for i, p := range positions {
		if i < len(scene.Robots) {
			at[p] = scene.Robots[i]
		}
	}

	sep := r.style(r.muted, strings.Repeat("-", scene.Width*3+1))
	var b strings.Builder
	b.WriteString(sep + "\n")
	for y := 0; y < scene.Height; y++ {
		for x := 0; x < scene.Width; x++ {
			b.WriteString("|")
			robot, ok := at[core.Pos(x, y)]
			if !ok {
				b.WriteString("  ")
				continue
			}
			id := fmt.Sprintf("%02d", robot.ID)
			if robot.Goal == core.Pos(x, y) {
				b.WriteString(r.style(r.atGoal, id))
			} else {
				b.WriteString(r.style(r.moving, id))
			}
		}
		b.WriteString("|\n" + sep + "\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Successors prints the successor table, one robot per line, with "--"
// for empty slots.
func (r *Renderer) Successors(scene *core.Scene, table [][4]int) error {
	var b strings.Builder
	b.WriteString(" ID: X+ X- Y+ Y-\n")
	for i, slots := range table {
		fmt.Fprintf(&b, "R%02d:", i)
		for _, d := range core.Directions {
			if slots[d] < 0 {
				b.WriteString(" " + r.style(r.muted, "--"))
				continue
			}
			fmt.Fprintf(&b, " %02d", slots[d])
		}
		if i < len(scene.Robots) {
			rb := scene.Robots[i]
			fmt.Fprintf(&b, " %v->%v", rb.Start, rb.Goal)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Moves prints one move per line, numbered from 1.
func (r *Renderer) Moves(moves core.MoveList) error {
	var b strings.Builder
	for i, m := range moves {
		fmt.Fprintf(&b, "%4d  R%02d %v -> %v\n", i+1, m.Robot, m.From, m.To)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}
