package patterns

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ccarvalho-eng/grimoire/actor"
)

// doubleTimeout bounds how long DoubleAll waits for the pool.
const doubleTimeout = 5 * time.Second

var poolSeq atomic.Int64

type doubleChunk struct {
	index int
	nums  []int
	reply chan chunkResult
}

type chunkResult struct {
	index   int
	doubled []int
}

// DoubleAll is the worker-pool demonstration: nums is partitioned into
// one contiguous chunk per worker, each chunk is owned by exactly one
// worker actor for the duration of its computation, and the results are
// reassembled in input order. DoubleAll([1 2 3 4 5 6], 3) returns
// [2 4 6 8 10 12].
func DoubleAll(system *actor.System, nums []int, workers int) ([]int, error) {
	if workers < 1 {
		return nil, fmt.Errorf("worker pool needs at least one worker, got %d", workers)
	}
	if len(nums) == 0 {
		return []int{}, nil
	}
	if workers > len(nums) {
		workers = len(nums)
	}

	chunks := partition(nums, workers)
	results := make(chan chunkResult, len(chunks))

	id := poolSeq.Add(1)
	pids := make([]*actor.PID, 0, len(chunks))
	defer func() {
		for _, p := range pids {
			p.Stop()
		}
	}()

	for i := range chunks {
		pid, err := system.Spawn(fmt.Sprintf("doubler-%d-%d", id, i), doubler{})
		if err != nil {
			return nil, fmt.Errorf("spawn worker: %w", err)
		}
		pids = append(pids, pid)
	}

	for i, chunk := range chunks {
		if err := pids[i].Tell(doubleChunk{index: i, nums: chunk, reply: results}); err != nil {
			return nil, fmt.Errorf("dispatch chunk %d: %w", i, err)
		}
	}

	ordered := make([][]int, len(chunks))
	for range chunks {
		select {
		case res := <-results:
			ordered[res.index] = res.doubled
		case <-time.After(doubleTimeout):
			return nil, fmt.Errorf("worker pool timed out after %v", doubleTimeout)
		}
	}

	out := make([]int, 0, len(nums))
	for _, part := range ordered {
		out = append(out, part...)
	}
	return out, nil
}

// partition splits nums into at most n contiguous chunks of near-equal
// size.
func partition(nums []int, n int) [][]int {
	chunks := make([][]int, 0, n)
	size := len(nums) / n
	rem := len(nums) % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		if start == end {
			continue
		}
		chunks = append(chunks, nums[start:end])
		start = end
	}
	return chunks
}

// doubler owns one chunk at a time; there is no shared mutation.
type doubler struct{}

func (doubler) Receive(_ actor.Context, msg any) {
	switch m := msg.(type) {
	case doubleChunk:
		doubled := make([]int, len(m.nums))
		for i, n := range m.nums {
			doubled[i] = 2 * n
		}
		m.reply <- chunkResult{index: m.index, doubled: doubled}
	}
}
