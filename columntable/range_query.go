package columntable

import (
	"bytes"

	"github.com/INLOpen/columnbase/core"
)

// RangeResult is one row streamed by RangeQuery.
type RangeResult struct {
	Key   []byte
	Value []byte
}

// MinMax bounds the values of one data block of one column.
type MinMax struct {
	Min []byte
	Max []byte
}

// RangeQuery streams the [begin, end) interval of the main file. begin or
// end may be nil for an open bound. ro.BlockBits, when set, restricts the
// scan to the selected data block ordinals; blocks outside the bitmap are
// never read. Values carry the projection selected by ro.Columns.
func (r *ColumnTableReader) RangeQuery(ro ReadOptions, begin, end []byte) ([]RangeResult, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	var results []RangeResult
	var prevSeparator []byte
	ordinal := uint32(0)

	idxIter := r.indexBlock.NewIterator(r.cmp)
	for idxIter.SeekToFirst(); idxIter.Valid(); idxIter.Next() {
		separator := idxIter.Key()

		// The separator is >= every key in its block: a separator below
		// begin means the whole block precedes the interval.
		if begin != nil && r.cmp.Compare(separator, begin) < 0 {
			ordinal++
			continue
		}
		// Keys in this block are > the previous separator: once that
		// separator reaches end, no further block intersects.
		if end != nil && prevSeparator != nil && r.cmp.Compare(prevSeparator, end) >= 0 {
			break
		}

		if ro.BlockBits == nil || ro.BlockBits.Contains(ordinal) {
			handle, _, err := DecodeBlockHandle(idxIter.Value())
			if err != nil {
				return nil, core.Corruptionf("%s: %v", r.filePath, err)
			}
			block, err := r.readBlock(&ro, handle)
			if err != nil {
				return nil, err
			}
			it := block.NewIterator(r.cmp)
			if begin != nil {
				it.Seek(begin)
			} else {
				it.SeekToFirst()
			}
			for ; it.Valid(); it.Next() {
				if end != nil && r.cmp.Compare(it.Key(), end) >= 0 {
					break
				}
				value, err := r.assembleValue(&ro, it.Value())
				if err != nil {
					return nil, err
				}
				results = append(results, RangeResult{
					Key:   append([]byte(nil), it.Key()...),
					Value: value,
				})
			}
			if err := it.Status(); err != nil {
				return nil, err
			}
		}

		prevSeparator = append(prevSeparator[:0], separator...)
		ordinal++
	}
	if err := idxIter.Status(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetMinMax computes, for every subcolumn, the minimum and maximum value
// of each of its data blocks. Query planners combine this with BlockBits
// to skip blocks whose bounds cannot intersect a predicate.
func (r *ColumnTableReader) GetMinMax() ([][]MinMax, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	ro := DefaultReadOptions()
	out := make([][]MinMax, len(r.subReaders))
	for i, sub := range r.subReaders {
		bounds, err := sub.columnBlockBounds(&ro)
		if err != nil {
			return nil, err
		}
		out[i] = bounds
	}
	return out, nil
}

// columnBlockBounds scans each data block of a subcolumn file and records
// the bytewise min and max of its values.
func (r *ColumnTableReader) columnBlockBounds(ro *ReadOptions) ([]MinMax, error) {
	var bounds []MinMax
	idxIter := r.indexBlock.NewIterator(r.cmp)
	for idxIter.SeekToFirst(); idxIter.Valid(); idxIter.Next() {
		handle, _, err := DecodeBlockHandle(idxIter.Value())
		if err != nil {
			return nil, core.Corruptionf("%s: %v", r.filePath, err)
		}
		block, err := r.readBlock(ro, handle)
		if err != nil {
			return nil, err
		}
		var mm MinMax
		first := true
		it := block.NewColumnIterator()
		for it.SeekToFirst(); it.Valid(); it.Next() {
			v := it.Value()
			if first || bytes.Compare(v, mm.Min) < 0 {
				mm.Min = append([]byte(nil), v...)
			}
			if first || bytes.Compare(v, mm.Max) > 0 {
				mm.Max = append([]byte(nil), v...)
			}
			first = false
		}
		if err := it.Status(); err != nil {
			return nil, err
		}
		if !first {
			bounds = append(bounds, mm)
		}
	}
	if err := idxIter.Status(); err != nil {
		return nil, err
	}
	return bounds, nil
}
