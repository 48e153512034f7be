package statistics

import (
	"hash/fnv"

	"tinybase/pkg/primitives"
)

const stringHashRange = 1 << 20

// StringHistogram hashes strings into a bounded integer range and
// delegates every operation to an IntHistogram over that range.
type StringHistogram struct {
	inner *IntHistogram
}

func NewStringHistogram(buckets int) *StringHistogram {
	return &StringHistogram{inner: NewIntHistogram(buckets, 0, stringHashRange-1)}
}

func hashString(s string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int32(h.Sum32() % stringHashRange)
}

func (h *StringHistogram) AddValue(s string) {
	h.inner.AddValue(hashString(s))
}

func (h *StringHistogram) EstimateSelectivity(op primitives.Predicate, s string) float64 {
	return h.inner.EstimateSelectivity(op, hashString(s))
}

func (h *StringHistogram) AvgSelectivity() float64 {
	return h.inner.AvgSelectivity()
}
