package service

import "sort"

// MergeIntervals collapses a list of [start, end] pairs into the minimal
// sorted list of non-overlapping intervals covering the same union of time.
// Pure, O(n log n). The input slice is not modified.
func MergeIntervals(intervals [][2]float64) [][2]float64 {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([][2]float64, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	merged := [][2]float64{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv[0] <= last[1] {
			if iv[1] > last[1] {
				last[1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// TotalCovered returns the summed length of a merged interval list.
func TotalCovered(merged [][2]float64) float64 {
	var total float64
	for _, iv := range merged {
		total += iv[1] - iv[0]
	}
	return total
}
