package models

// Metric is the closed set of quantities the sensors report. Rule and
// reading producers must agree on these values at compile time; adding a
// metric means updating both sides together.
type Metric int

const (
	MetricCylinderStrokeTime Metric = iota + 1
	MetricShaftTorque
	MetricSpeed
)

func (m Metric) Valid() bool {
	return m >= MetricCylinderStrokeTime && m <= MetricSpeed
}

func (m Metric) String() string {
	switch m {
	case MetricCylinderStrokeTime:
		return "CylinderStrokeTime"
	case MetricShaftTorque:
		return "ShaftTorque"
	case MetricSpeed:
		return "Speed"
	default:
		return "Unknown"
	}
}
