package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tinybase/pkg/primitives"
)

func tenBucketHistogram() *IntHistogram {
	h := NewIntHistogram(10, 1, 10)
	for v := int32(1); v <= 10; v++ {
		h.AddValue(v)
	}
	return h
}

func TestIntHistogram_Equals(t *testing.T) {
	h := tenBucketHistogram()
	assert.InDelta(t, 0.1, h.EstimateSelectivity(primitives.Equals, 5), 1e-9)
}

func TestIntHistogram_GreaterThan(t *testing.T) {
	h := tenBucketHistogram()
	assert.InDelta(t, 0.5, h.EstimateSelectivity(primitives.GreaterThan, 5), 1e-9)
}

func TestIntHistogram_LessThan(t *testing.T) {
	h := tenBucketHistogram()
	assert.InDelta(t, 0.4, h.EstimateSelectivity(primitives.LessThan, 5), 1e-9)
}

func TestIntHistogram_OutOfRangeShortCircuits(t *testing.T) {
	h := tenBucketHistogram()
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.GreaterThan, 0))
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.LessThan, 0))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.LessThan, 11))
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.GreaterThan, 11))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.NotEqual, 0))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.NotEqual, 11))
}

func TestIntHistogram_EmptyHistogramSelectivityIsZero(t *testing.T) {
	h := NewIntHistogram(10, 1, 10)
	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.Equals, 5))
	assert.Equal(t, 0.0, h.AvgSelectivity())
}

func TestIntHistogram_AvgSelectivity(t *testing.T) {
	h := tenBucketHistogram()
	assert.InDelta(t, 0.1, h.AvgSelectivity(), 1e-9)
}

func TestIntHistogram_BucketsClampToRangeSpan(t *testing.T) {
	h := NewIntHistogram(100, 1, 3)
	assert.Equal(t, 3, h.buckets)
}
