package engine

import "fmt"

// Range is an inclusive-inclusive byte span. End == -1 means "to EOF" and
// only appears in degenerate single-range plans for unknown lengths.
type Range struct {
	Start int64
	End   int64
}

func (r Range) Size() int64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

func (r Range) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// PlanRanges splits total bytes into up to parallelism contiguous ranges.
// The split covers [0, total-1] exactly: ranges are ascending, gap-free and
// non-overlapping, with any integer-division remainder folded into the last
// range. Without confirmed range support or a known total (total < 0 means
// unknown) the plan degrades to one whole-file range.
func PlanRanges(total int64, parallelism int, support RangeSupport) []Range {
	if support != RangeSupportYes || total <= 0 {
		end := total - 1
		if end < 0 {
			end = -1
		}
		return []Range{{Start: 0, End: end}}
	}
	if parallelism < 1 {
		parallelism = 1
	}
	chunkSize := total / int64(parallelism)
	ranges := make([]Range, 0, parallelism)
	var currentPosition int64 = 0
	for i := range parallelism {
		startByte := currentPosition
		endByte := startByte + chunkSize - 1
		if i == parallelism-1 {
			endByte = total - 1
		}
		if endByte >= total {
			endByte = total - 1
		}
		if endByte >= startByte {
			ranges = append(ranges, Range{Start: startByte, End: endByte})
		}
		currentPosition = endByte + 1
	}
	return ranges
}
