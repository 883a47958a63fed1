package metrics

// History keeps the most recent values of a series for sparklines and
// charts.
type History struct {
	capacity int
	values   []float64
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{capacity: capacity, values: make([]float64, 0, capacity)}
}

func (h *History) Push(v float64) {
	if len(h.values) == h.capacity {
		copy(h.values, h.values[1:])
		h.values = h.values[:h.capacity-1]
	}
	h.values = append(h.values, v)
}

// Values returns the series oldest first. The slice is owned by History.
func (h *History) Values() []float64 { return h.values }

func (h *History) Len() int { return len(h.values) }

func (h *History) Last() float64 {
	if len(h.values) == 0 {
		return 0
	}
	return h.values[len(h.values)-1]
}

func (h *History) Reset() { h.values = h.values[:0] }
