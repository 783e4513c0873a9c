package check

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/protlab/inteinscan/internal/hits"
)

// WorkItem holds one sequence-search hit ready for checking.
type WorkItem struct {
	Seq int
	Hit *hits.Hit
}

// WorkResult holds the checker output for a single hit. Line is nil when the
// hit was skipped.
type WorkResult struct {
	Seq  int
	Hit  *hits.Hit
	Line *Line
	Err  error
}

// progressEvery controls how often the fan-out logs completion counts.
const progressEvery = 50

// ParallelCheck checks work items using a pool of workers. Results are sent
// to the returned channel in arrival order. If workers is 0,
// runtime.NumCPU() is used.
func (c *Checker) ParallelCheck(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var done atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				line, err := c.CheckHit(ctx, item.Hit)
				if n := done.Add(1); n%progressEvery == 0 {
					c.logger.Info("residue checks completed", zap.Int64("hits", n))
				}
				results <- WorkResult{
					Seq:  item.Seq,
					Hit:  item.Hit,
					Line: line,
					Err:  err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// CheckAll fans the sequence-search hits out over workers and returns the
// collected criterion lines sorted by (query, region, evalue). Profile-search
// hits are ignored. The first checker error aborts the run.
func (c *Checker) CheckAll(ctx context.Context, hs []*hits.Hit, workers int) ([]*Line, error) {
	seqHits := make([]*hits.Hit, 0, len(hs))
	for _, h := range hs {
		if h.Origin == hits.OriginSequence {
			seqHits = append(seqHits, h)
		}
	}

	items := make(chan WorkItem, len(seqHits))
	for i, h := range seqHits {
		items <- WorkItem{Seq: i, Hit: h}
	}
	close(items)

	results := c.ParallelCheck(ctx, items, workers)

	var lines []*Line
	var firstErr error
	for r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = r.Err
			continue
		}
		if r.Line != nil {
			lines = append(lines, r.Line)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	SortLines(lines)
	return lines, nil
}

// SortLines orders criterion lines by query ascending, region index
// ascending, then evalue ascending. Aggregation depends on this order.
func SortLines(lines []*Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Query != b.Query {
			return a.Query < b.Query
		}
		if a.RegionID != b.RegionID {
			return a.RegionID < b.RegionID
		}
		return a.EValue < b.EValue
	})
}
