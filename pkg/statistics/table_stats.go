package statistics

import (
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"tinybase/pkg/primitives"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/types"
)

const (
	histogramBuckets = 100
	ioCostPerPage    = 1000.0
)

// TableStats scans a table twice — once to find each integer column's
// range and the row count, once to populate the histograms built from
// that range — fanning the per-page work of each pass out across an
// errgroup since pages are read independently of one another.
type TableStats struct {
	dbFile        page.DbFile
	ioCostPerPage float64
	totalTuples   int64

	intHistograms    map[int]*IntHistogram
	stringHistograms map[int]*StringHistogram
}

// NewTableStats computes statistics for dbFile by scanning it twice.
func NewTableStats(dbFile page.DbFile) (*TableStats, error) {
	ts := &TableStats{
		dbFile:           dbFile,
		ioCostPerPage:    ioCostPerPage,
		intHistograms:    make(map[int]*IntHistogram),
		stringHistograms: make(map[int]*StringHistogram),
	}

	numPages, err := dbFile.NumPages()
	if err != nil {
		return nil, err
	}
	td := dbFile.TupleDesc()

	mins := make(map[int]int32)
	maxs := make(map[int]int32)
	seen := make(map[int]bool)
	var total int64
	var mu sync.Mutex

	var g errgroup.Group
	for pageNum := 0; pageNum < numPages; pageNum++ {
		pageNum := pageNum
		g.Go(func() error {
			pg, err := dbFile.ReadPage(dbFile.PageIDAt(pageNum))
			if err != nil {
				return err
			}
			hp, ok := pg.(*heap.HeapPage)
			if !ok {
				return nil
			}
			tuples := hp.GetTuples()

			localMins := make(map[int]int32)
			localMaxs := make(map[int]int32)
			localSeen := make(map[int]bool)

			for _, t := range tuples {
				for i := 0; i < td.NumFields(); i++ {
					ft, err := td.TypeAtIndex(i)
					if err != nil {
						return err
					}
					if ft != types.IntType {
						continue
					}
					f, err := t.GetField(i)
					if err != nil {
						return err
					}
					intField, ok := f.(*types.IntField)
					if !ok {
						continue
					}
					if !localSeen[i] || intField.Value < localMins[i] {
						localMins[i] = intField.Value
					}
					if !localSeen[i] || intField.Value > localMaxs[i] {
						localMaxs[i] = intField.Value
					}
					localSeen[i] = true
				}
			}

			mu.Lock()
			defer mu.Unlock()
			total += int64(len(tuples))
			for i, seenHere := range localSeen {
				if !seenHere {
					continue
				}
				if !seen[i] || localMins[i] < mins[i] {
					mins[i] = localMins[i]
				}
				if !seen[i] || localMaxs[i] > maxs[i] {
					maxs[i] = localMaxs[i]
				}
				seen[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ts.totalTuples = total

	for i, isSeen := range seen {
		if isSeen {
			ts.intHistograms[i] = NewIntHistogram(histogramBuckets, mins[i], maxs[i])
		}
	}
	for i := 0; i < td.NumFields(); i++ {
		ft, err := td.TypeAtIndex(i)
		if err != nil {
			return nil, err
		}
		if ft == types.StringType {
			ts.stringHistograms[i] = NewStringHistogram(histogramBuckets)
		}
	}

	var g2 errgroup.Group
	for pageNum := 0; pageNum < numPages; pageNum++ {
		pageNum := pageNum
		g2.Go(func() error {
			pg, err := dbFile.ReadPage(dbFile.PageIDAt(pageNum))
			if err != nil {
				return err
			}
			hp, ok := pg.(*heap.HeapPage)
			if !ok {
				return nil
			}
			tuples := hp.GetTuples()

			mu.Lock()
			defer mu.Unlock()
			for _, t := range tuples {
				for i := 0; i < td.NumFields(); i++ {
					f, err := t.GetField(i)
					if err != nil {
						return err
					}
					switch field := f.(type) {
					case *types.IntField:
						if h, ok := ts.intHistograms[i]; ok {
							h.AddValue(field.Value)
						}
					case *types.StringField:
						if h, ok := ts.stringHistograms[i]; ok {
							h.AddValue(field.Value)
						}
					}
				}
			}
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	return ts, nil
}

// EstimateScanCost is pages * cost-per-page; no seeks are assumed and a
// partially full last page still costs a whole page read.
func (ts *TableStats) EstimateScanCost() (float64, error) {
	numPages, err := ts.dbFile.NumPages()
	if err != nil {
		return 0, err
	}
	return float64(numPages) * ts.ioCostPerPage, nil
}

// EstimateCardinality rounds total*selectivity to the nearest tuple count.
func (ts *TableStats) EstimateCardinality(selectivity float64) int64 {
	return int64(math.Round(float64(ts.totalTuples) * selectivity))
}

// EstimateSelectivity dispatches to the histogram for field, returning 1.0
// (no information) if field has neither histogram.
func (ts *TableStats) EstimateSelectivity(field int, op primitives.Predicate, constant types.Field) float64 {
	switch c := constant.(type) {
	case *types.IntField:
		if h, ok := ts.intHistograms[field]; ok {
			return h.EstimateSelectivity(op, c.Value)
		}
	case *types.StringField:
		if h, ok := ts.stringHistograms[field]; ok {
			return h.EstimateSelectivity(op, c.Value)
		}
	}
	return 1.0
}

func (ts *TableStats) TotalTuples() int64 {
	return ts.totalTuples
}
