package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, p10, p50, p90 := Summarize(values)

	assert.InDelta(t, 5.5, mean, 1e-12)
	assert.Equal(t, 1.0, p10)
	assert.Equal(t, 5.0, p50)
	assert.GreaterOrEqual(t, p90, 9.0)
	assert.LessOrEqual(t, p90, 10.0)

	// Input order is left alone
	assert.Equal(t, 10.0, values[0])
}

func TestSummarizeEmpty(t *testing.T) {
	mean, p10, p50, p90 := Summarize(nil)
	assert.Zero(t, mean)
	assert.Zero(t, p10)
	assert.Zero(t, p50)
	assert.Zero(t, p90)
}

func TestSummarizeSingle(t *testing.T) {
	mean, p10, p50, p90 := Summarize([]float64{812})
	assert.Equal(t, 812.0, mean)
	assert.Equal(t, 812.0, p10)
	assert.Equal(t, 812.0, p50)
	assert.Equal(t, 812.0, p90)
}
