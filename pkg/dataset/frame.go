package dataset

import (
	"cmp"
	"hds/pkg/common"
	"slices"
	"strconv"
)

// Record is one observation of one series.
type Record struct {
	// UniqueID identifies the series.
	UniqueID string
	// DS is the position of the observation within its series, starting at 1.
	DS int
	// Y is the observed value.
	Y float64
	// Group is the name of the group the series belongs to, if any.
	Group string
}

// Frame is a long-format table of observations, series after series.
type Frame struct {
	Records []Record
}

// Len returns the number of observations.
func (f *Frame) Len() int {
	return len(f.Records)
}

// Append adds the values of one series, numbering them from start.
func (f *Frame) Append(uniqueID, group string, start int, values []float64) {
	for i, v := range values {
		f.Records = append(f.Records, Record{
			UniqueID: uniqueID,
			DS:       start + i,
			Y:        v,
			Group:    group,
		})
	}
}

// Concat appends all records of other.
func (f *Frame) Concat(other *Frame) {
	f.Records = append(f.Records, other.Records...)
}

// Head returns a frame with the first n records.
func (f *Frame) Head(n int) *Frame {
	if n < 0 || n > len(f.Records) {
		n = len(f.Records)
	}
	return &Frame{Records: append([]Record(nil), f.Records[:n]...)}
}

// Series returns the distinct series ids in order of first appearance.
func (f *Frame) Series() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range f.Records {
		if !seen[r.UniqueID] {
			seen[r.UniqueID] = true
			ids = append(ids, r.UniqueID)
		}
	}
	return ids
}

// Sorted returns a copy of the frame ordered by series (in order of first
// appearance) then by DS. Train and test parts of a series end up adjacent.
func (f *Frame) Sorted() *Frame {
	order := make(map[string]int)
	buckets := make([][]Record, 0)
	for _, r := range f.Records {
		idx, ok := order[r.UniqueID]
		if !ok {
			idx = len(buckets)
			order[r.UniqueID] = idx
			buckets = append(buckets, nil)
		}
		buckets[idx] = append(buckets[idx], r)
	}

	out := &Frame{Records: make([]Record, 0, len(f.Records))}
	for _, b := range buckets {
		sortByDS(b)
		out.Records = append(out.Records, b...)
	}
	return out
}

func sortByDS(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return cmp.Compare(a.DS, b.DS)
	})
}

// Table renders the frame for display.
func (f *Frame) Table() *common.Table {
	t := &common.Table{Header: []string{"unique_id", "ds", "y", "group"}}
	for _, r := range f.Records {
		t.AddRow(r.UniqueID, strconv.Itoa(r.DS), strconv.FormatFloat(r.Y, 'g', -1, 64), r.Group)
	}
	return t
}
