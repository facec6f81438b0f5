package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricValid(t *testing.T) {
	assert.True(t, MetricCylinderStrokeTime.Valid())
	assert.True(t, MetricShaftTorque.Valid())
	assert.True(t, MetricSpeed.Valid())
	assert.False(t, Metric(0).Valid())
	assert.False(t, Metric(4).Valid())
	assert.False(t, Metric(-1).Valid())
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "CylinderStrokeTime", MetricCylinderStrokeTime.String())
	assert.Equal(t, "ShaftTorque", MetricShaftTorque.String())
	assert.Equal(t, "Speed", MetricSpeed.String())
	assert.Equal(t, "Unknown", Metric(42).String())
}

func TestOperatorValid(t *testing.T) {
	assert.True(t, OpGreaterThan.Valid())
	assert.True(t, OpBetween.Valid())
	assert.False(t, Operator(0).Valid())
	assert.False(t, Operator(6).Valid())
}
