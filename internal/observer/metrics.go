package observer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/elektrokombinacija/rgm/internal/core"
)

// Metrics counts solve events in Prometheus collectors.
type Metrics struct {
	// moves counts committed moves by robot axis
	moves *prometheus.CounterVec

	// distance tracks cells travelled per move
	distance prometheus.Histogram

	// cycles counts identified blocking cycles
	cycles prometheus.Counter

	// cycleSize tracks robots per identified cycle
	cycleSize prometheus.Histogram

	axis map[core.RobotID]core.Axis
}

// NewMetrics registers the collectors with reg. Axis labels are resolved
// through scene; robots missing from it are labelled "unknown".
func NewMetrics(reg prometheus.Registerer, scene *core.Scene) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		moves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rgm_moves_total",
			Help: "Total committed robot moves by axis",
		}, []string{"axis"}),
		distance: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rgm_move_distance_cells",
			Help:    "Cells travelled per committed move",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "rgm_cycles_total",
			Help: "Total blocking cycles identified",
		}),
		cycleSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rgm_cycle_size_robots",
			Help:    "Robots per identified blocking cycle",
			Buckets: []float64{4, 6, 8, 12, 16, 32, 64},
		}),
		axis: make(map[core.RobotID]core.Axis),
	}
	if scene != nil {
		for _, r := range scene.Robots {
			m.axis[r.ID] = r.Axis()
		}
	}
	return m
}

func (m *Metrics) RobotMoved(id core.RobotID, from, to core.Position) {
	label := "unknown"
	if a, ok := m.axis[id]; ok {
		label = a.String()
	}
	m.moves.WithLabelValues(label).Inc()
	m.distance.Observe(float64(core.Distance(from, to)))
}

func (m *Metrics) CycleIdentified(cycle []core.RobotID) {
	m.cycles.Inc()
	m.cycleSize.Observe(float64(len(cycle)))
}
