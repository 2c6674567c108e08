package sim

import "github.com/elektrokombinacija/rgm/internal/core"

// Player steps through a move list, forwards and backwards.
type Player struct {
	scene  *core.Scene
	moves  core.MoveList
	cursor int // number of moves applied
	pos    []core.Position
}

// NewPlayer creates a player positioned before the first move.
func NewPlayer(scene *core.Scene, moves core.MoveList) *Player {
	return &Player{
		scene: scene,
		moves: moves,
		pos:   scene.Starts(),
	}
}

// Cursor returns the number of applied moves.
func (p *Player) Cursor() int {
	return p.cursor
}

// Len returns the number of moves.
func (p *Player) Len() int {
	return len(p.moves)
}

// StepForward applies the next move. Returns false at the end.
func (p *Player) StepForward() bool {
	if p.cursor >= len(p.moves) {
		return false
	}
	m := p.moves[p.cursor]
	p.pos[m.Robot] = m.To
	p.cursor++
	return true
}

// StepBack undoes the last move. Returns false at the start.
func (p *Player) StepBack() bool {
	if p.cursor == 0 {
		return false
	}
	p.cursor--
	m := p.moves[p.cursor]
	p.pos[m.Robot] = m.From
	return true
}

// Reset returns to the beginning.
func (p *Player) Reset() {
	p.cursor = 0
	p.pos = p.scene.Starts()
}

// Seek moves the cursor to i, clamped to the move list.
func (p *Player) Seek(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(p.moves) {
		i = len(p.moves)
	}
	for p.cursor < i {
		p.StepForward()
	}
	for p.cursor > i {
		p.StepBack()
	}
}

// Current returns the most recently applied move.
func (p *Player) Current() (core.Move, bool) {
	if p.cursor == 0 {
		return core.Move{}, false
	}
	return p.moves[p.cursor-1], true
}

// Positions returns a copy of the positions at the cursor.
func (p *Player) Positions() []core.Position {
	return append([]core.Position(nil), p.pos...)
}

// Progress returns current progress as 0-1.
func (p *Player) Progress() float64 {
	if len(p.moves) == 0 {
		return 1
	}
	return float64(p.cursor) / float64(len(p.moves))
}
