package measure

// DefaultMeasure keeps metrics in memory, keyed by stage.
type DefaultMeasure struct {
	Stages map[string]Metric
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Stages: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	if mt, ok := m.Stages[name]; ok {
		return mt
	}
	mt := newDefaultMetric()
	m.Stages[name] = mt

	return mt
}

// GetMetric returns the metric of name, creating it when missing.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	return m.AddMetric(name)
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	return m.Stages
}

func (m *DefaultMeasure) Reset() {
	m.Stages = make(map[string]Metric)
}

var _ Measure = (*DefaultMeasure)(nil)
