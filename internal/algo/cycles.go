package algo

import "github.com/elektrokombinacija/rgm/internal/core"

// minCycleLen is the shortest blocking cycle between robots that do not
// park on each other's corridors: such a cycle alternates column and row
// robots, two of each at least.
const minCycleLen = 4

// extractCycles follows the blocked-by relation from every unfinished
// robot in sweep order and returns the disjoint cycles it closes. Walks
// that end on a parked robot or run into an earlier walk are tails, not
// cycles; their robots are left for the final advance.
func (s *state) extractCycles() ([][]int, error) {
	visited := make([]bool, len(s.robots))
	var cycles [][]int

	for _, start := range s.order {
		if visited[start] || s.robots[start].atGoal() {
			continue
		}

		var walk []int
		inWalk := make(map[int]int)
		cur := start
		for cur != none && !visited[cur] && !s.robots[cur].atGoal() {
			visited[cur] = true
			inWalk[cur] = len(walk)
			walk = append(walk, cur)
			cur = s.blocker(cur)
		}

		k, closed := inWalk[cur]
		if cur == none || !closed {
			continue
		}
		cycle := walk[k:]
		if len(cycle) < minCycleLen {
			return nil, invariantf("cycles", "cycle %v shorter than %d", s.ids(cycle), minCycleLen)
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

// ids maps robot indices to ids.
func (s *state) ids(idx []int) []core.RobotID {
	out := make([]core.RobotID, len(idx))
	for i, r := range idx {
		out[i] = s.robots[r].ID
	}
	return out
}
