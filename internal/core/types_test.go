package core

import (
	"errors"
	"testing"
)

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Direction
	}{
		{PosX, NegX},
		{NegX, PosX},
		{PosY, NegY},
		{NegY, PosY},
	}

	for _, tt := range tests {
		if got := tt.dir.Opposite(); got != tt.want {
			t.Errorf("%v.Opposite() = %v, want %v", tt.dir, got, tt.want)
		}
		if got := tt.dir.Opposite().Opposite(); got != tt.dir {
			t.Errorf("%v.Opposite().Opposite() = %v", tt.dir, got)
		}
	}
}

func TestDirectionIsPositive(t *testing.T) {
	for _, d := range Directions {
		want := d == PosX || d == PosY
		if got := d.IsPositive(); got != want {
			t.Errorf("%v.IsPositive() = %v, want %v", d, got, want)
		}
	}
}

func TestPositionAdd(t *testing.T) {
	p := Pos(3, 3)
	tests := []struct {
		dir  Direction
		want Position
	}{
		{PosX, Pos(4, 3)},
		{NegX, Pos(2, 3)},
		{PosY, Pos(3, 4)},
		{NegY, Pos(3, 2)},
	}

	for _, tt := range tests {
		if got := p.Add(tt.dir); got != tt.want {
			t.Errorf("%v.Add(%v) = %v, want %v", p, tt.dir, got, tt.want)
		}
	}
}

func TestPositionLess(t *testing.T) {
	if !Pos(1, 9).Less(Pos(2, 0)) {
		t.Errorf("x must dominate ordering")
	}
	if !Pos(1, 1).Less(Pos(1, 2)) {
		t.Errorf("y must break ties")
	}
	if Pos(1, 1).Less(Pos(1, 1)) {
		t.Errorf("position must not be less than itself")
	}
}

func TestDistance(t *testing.T) {
	if got := Distance(Pos(0, 0), Pos(0, 5)); got != 5 {
		t.Errorf("Distance = %d, want 5", got)
	}
	if got := Distance(Pos(4, 1), Pos(1, 3)); got != 5 {
		t.Errorf("Distance = %d, want 5", got)
	}
}

func TestRobotGoalDirection(t *testing.T) {
	col := Robot{ID: 0, Start: Pos(2, 0), Goal: Pos(2, 5)}
	row := Robot{ID: 1, Start: Pos(5, 1), Goal: Pos(0, 1)}

	tests := []struct {
		robot Robot
		pos   Position
		want  Direction
	}{
		{col, Pos(2, 0), PosY},
		{col, Pos(2, 7), NegY},
		{col, Pos(2, 5), NoDirection},
		{row, Pos(5, 1), NegX},
		{row, Pos(-1, 1), PosX},
		{row, Pos(0, 1), NoDirection},
	}

	for _, tt := range tests {
		if got := tt.robot.GoalDirection(tt.pos); got != tt.want {
			t.Errorf("robot %d GoalDirection(%v) = %v, want %v", tt.robot.ID, tt.pos, got, tt.want)
		}
	}

	if col.Axis() != Column || row.Axis() != Row {
		t.Errorf("axis mismatch: %v %v", col.Axis(), row.Axis())
	}
}

func TestRobotOnCorridor(t *testing.T) {
	r := Robot{Start: Pos(1, 4), Goal: Pos(1, 1)}
	if !r.OnCorridor(Pos(1, 2)) {
		t.Errorf("(1,2) should be on corridor")
	}
	if r.OnCorridor(Pos(1, 5)) {
		t.Errorf("(1,5) is past the start")
	}
	if r.OnCorridor(Pos(2, 2)) {
		t.Errorf("(2,2) is off axis")
	}
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name   string
		paths  []Path
		reason InvalidReason
	}{
		{"ok", []Path{{Pos(0, 0), Pos(0, 5)}, {Pos(5, 5), Pos(9, 5)}}, ""},
		{"start is goal", []Path{{Pos(1, 1), Pos(1, 1)}}, ReasonStartIsGoal},
		{"diagonal", []Path{{Pos(0, 0), Pos(2, 3)}}, ReasonNotAxisAligned},
		{"out of bounds", []Path{{Pos(0, 0), Pos(0, 10)}}, ReasonOutOfBounds},
		{"negative", []Path{{Pos(-1, 0), Pos(3, 0)}}, ReasonOutOfBounds},
		{"duplicate start", []Path{{Pos(0, 0), Pos(0, 5)}, {Pos(0, 0), Pos(4, 0)}}, ReasonDuplicateStart},
		{"duplicate goal", []Path{{Pos(0, 0), Pos(0, 5)}, {Pos(3, 5), Pos(0, 5)}}, ReasonDuplicateGoal},
	}

	for _, tt := range tests {
		err := NewScene(10, 10, tt.paths).Validate()
		if tt.reason == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		var ise *InvalidSceneError
		if !errors.As(err, &ise) {
			t.Errorf("%s: error = %v, want InvalidSceneError", tt.name, err)
			continue
		}
		if ise.Reason != tt.reason {
			t.Errorf("%s: reason = %v, want %v", tt.name, ise.Reason, tt.reason)
		}
		if !errors.Is(err, ErrInvalidScene) {
			t.Errorf("%s: errors.Is(ErrInvalidScene) = false", tt.name)
		}
	}
}

func TestSceneValidateStrict(t *testing.T) {
	// Robot 1 parks on robot 0's corridor.
	s := NewScene(10, 10, []Path{
		{Pos(2, 0), Pos(2, 6)},
		{Pos(5, 3), Pos(2, 3)},
	})
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	err := s.ValidateStrict()
	var ise *InvalidSceneError
	if !errors.As(err, &ise) || ise.Reason != ReasonGoalOnCorridor {
		t.Fatalf("ValidateStrict() = %v, want %s", err, ReasonGoalOnCorridor)
	}
	if ise.Robot != 1 || ise.Other != 0 {
		t.Errorf("robots = %d/%d, want 1/0", ise.Robot, ise.Other)
	}
}

func TestMoveListFinalPositions(t *testing.T) {
	s := NewScene(10, 10, []Path{{Pos(0, 0), Pos(0, 5)}, {Pos(5, 5), Pos(9, 5)}})
	moves := MoveList{
		{Robot: 0, From: Pos(0, 0), To: Pos(0, 3)},
		{Robot: 1, From: Pos(5, 5), To: Pos(9, 5)},
		{Robot: 0, From: Pos(0, 3), To: Pos(0, 5)},
	}

	final := moves.FinalPositions(s)
	if final[0] != Pos(0, 5) || final[1] != Pos(9, 5) {
		t.Errorf("FinalPositions = %v", final)
	}
	if got := moves.TotalDistance(); got != 9 {
		t.Errorf("TotalDistance = %d, want 9", got)
	}
	if got := moves.PerRobot()[0]; got != 2 {
		t.Errorf("PerRobot[0] = %d, want 2", got)
	}
}
