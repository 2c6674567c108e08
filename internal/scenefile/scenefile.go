// Package scenefile reads and writes scenes and move lists as JSON.
//
// A scene is {"width": W, "height": H, "paths": [[[sx,sy],[gx,gy]], ...]}
// with robot ids following path order. A move list is
// [[id,[ox,oy],[nx,ny]], ...].
package scenefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// ErrMalformed is returned for JSON that parses but has the wrong shape.
var ErrMalformed = errors.New("scenefile: malformed document")

type sceneDoc struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Paths  [][][]int `json:"paths"`
}

// ReadScene decodes a scene. It checks shape only; call Validate on the
// result for geometry.
func ReadScene(r io.Reader) (*core.Scene, error) {
	var doc sceneDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("scenefile: decode scene: %w", err)
	}

	paths := make([]core.Path, len(doc.Paths))
	for i, p := range doc.Paths {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: path %d has %d points", ErrMalformed, i, len(p))
		}
		start, err := point(p[0])
		if err != nil {
			return nil, fmt.Errorf("path %d start: %w", i, err)
		}
		goal, err := point(p[1])
		if err != nil {
			return nil, fmt.Errorf("path %d goal: %w", i, err)
		}
		paths[i] = core.Path{Start: start, Goal: goal}
	}
	return core.NewScene(doc.Width, doc.Height, paths), nil
}

// LoadScene reads a scene file.
func LoadScene(path string) (*core.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer f.Close()

	scene, err := ReadScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scene, nil
}

// WriteScene encodes a scene.
func WriteScene(w io.Writer, scene *core.Scene) error {
	doc := sceneDoc{
		Width:  scene.Width,
		Height: scene.Height,
		Paths:  make([][][]int, len(scene.Robots)),
	}
	for i, r := range scene.Robots {
		doc.Paths[i] = [][]int{{r.Start.X, r.Start.Y}, {r.Goal.X, r.Goal.Y}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("scenefile: encode scene: %w", err)
	}
	return nil
}

// SaveScene writes a scene file, creating parent directories.
func SaveScene(path string, scene *core.Scene) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("scenefile: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scenefile: %w", err)
	}
	if err := WriteScene(f, scene); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteMoves encodes a move list.
func WriteMoves(w io.Writer, moves core.MoveList) error {
	doc := make([][]any, len(moves))
	for i, m := range moves {
		doc[i] = []any{int(m.Robot), []int{m.From.X, m.From.Y}, []int{m.To.X, m.To.Y}}
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("scenefile: encode moves: %w", err)
	}
	return nil
}

// SaveMoves writes a move list file.
func SaveMoves(path string, moves core.MoveList) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scenefile: %w", err)
	}
	if err := WriteMoves(f, moves); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMoves decodes a move list.
func ReadMoves(r io.Reader) (core.MoveList, error) {
	var doc [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("scenefile: decode moves: %w", err)
	}

	moves := make(core.MoveList, len(doc))
	for i, raw := range doc {
		if len(raw) != 3 {
			return nil, fmt.Errorf("%w: move %d has %d fields", ErrMalformed, i, len(raw))
		}
		var id int
		var from, to []int
		if err := json.Unmarshal(raw[0], &id); err != nil {
			return nil, fmt.Errorf("%w: move %d id: %v", ErrMalformed, i, err)
		}
		if err := json.Unmarshal(raw[1], &from); err != nil {
			return nil, fmt.Errorf("%w: move %d from: %v", ErrMalformed, i, err)
		}
		if err := json.Unmarshal(raw[2], &to); err != nil {
			return nil, fmt.Errorf("%w: move %d to: %v", ErrMalformed, i, err)
		}
		fp, err := point(from)
		if err != nil {
			return nil, fmt.Errorf("move %d from: %w", i, err)
		}
		tp, err := point(to)
		if err != nil {
			return nil, fmt.Errorf("move %d to: %w", i, err)
		}
		moves[i] = core.Move{Robot: core.RobotID(id), From: fp, To: tp}
	}
	return moves, nil
}

// LoadMoves reads a move list file.
func LoadMoves(path string) (core.MoveList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer f.Close()

	moves, err := ReadMoves(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return moves, nil
}

func point(p []int) (core.Position, error) {
	if len(p) != 2 {
		return core.Position{}, fmt.Errorf("%w: point has %d coordinates", ErrMalformed, len(p))
	}
	return core.Pos(p[0], p[1]), nil
}
