package fanout

import (
	"errors"
	"fmt"
	"math"
)

// WorkRange is an inclusive range of integers handed to exactly one worker
type WorkRange struct {
	Start int
	End   int
}

// Len returns the number of integers in the range
func (r WorkRange) Len() int {
	return r.End - r.Start + 1
}

// Validate checks that the range is not inverted
func (r WorkRange) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("invalid range [%d, %d]: start is greater than end", r.Start, r.End)
	}
	return nil
}

func (r WorkRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// Plan is the ordered set of ranges of one run. The i-th element is assigned
// to the i-th spawned worker; the order says nothing about execution order.
type Plan []WorkRange

// Partition splits [1, workerCount*rangeSize] into workerCount contiguous
// ranges of rangeSize integers each. The result depends only on the inputs.
func Partition(workerCount, rangeSize int) (Plan, error) {
	if workerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workerCount)
	}
	if rangeSize <= 0 {
		return nil, fmt.Errorf("range size must be positive, got %d", rangeSize)
	}
	if workerCount > math.MaxInt/rangeSize {
		return nil, fmt.Errorf("%d workers of %d overflow int", workerCount, rangeSize)
	}

	plan := make(Plan, workerCount)
	for i := range plan {
		plan[i] = WorkRange{
			Start: i*rangeSize + 1,
			End:   (i + 1) * rangeSize,
		}
	}
	return plan, nil
}

// Total returns the number of integers covered by the plan
func (p Plan) Total() int {
	total := 0
	for _, r := range p {
		total += r.Len()
	}
	return total
}

// Validate checks that the plan is non-empty, starts at 1 and that adjacent
// ranges touch without gaps or overlaps
func (p Plan) Validate() error {
	if len(p) == 0 {
		return errors.New("empty plan")
	}
	if p[0].Start != 1 {
		return fmt.Errorf("plan starts at %d, not 1", p[0].Start)
	}
	for i, r := range p {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("range %d: %w", i, err)
		}
		if i > 0 && p[i-1].End+1 != r.Start {
			return fmt.Errorf("range %d %s does not follow range %d %s", i, r, i-1, p[i-1])
		}
	}
	return nil
}
