package service

import (
	"reflect"
	"testing"
)

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name  string
		input [][2]float64
		want  [][2]float64
	}{
		{
			name:  "overlapping ranges collapse",
			input: [][2]float64{{3, 40}, {50, 70}, {60, 80}, {100, 150}},
			want:  [][2]float64{{3, 40}, {50, 80}, {100, 150}},
		},
		{
			name:  "no overlaps returns sorted input",
			input: [][2]float64{{100, 150}, {3, 40}, {50, 70}},
			want:  [][2]float64{{3, 40}, {50, 70}, {100, 150}},
		},
		{
			name:  "touching ranges merge",
			input: [][2]float64{{0, 10}, {10, 20}},
			want:  [][2]float64{{0, 20}},
		},
		{
			name:  "contained range absorbed",
			input: [][2]float64{{0, 100}, {20, 30}},
			want:  [][2]float64{{0, 100}},
		},
		{
			name:  "single range",
			input: [][2]float64{{5, 6}},
			want:  [][2]float64{{5, 6}},
		},
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeIntervals(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeIntervals(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMergeIntervalsIdempotent(t *testing.T) {
	input := [][2]float64{{3, 40}, {50, 70}, {60, 80}, {100, 150}}
	once := MergeIntervals(input)
	twice := MergeIntervals(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge(merge(x)) = %v, want %v", twice, once)
	}
}

func TestMergeIntervalsDoesNotMutateInput(t *testing.T) {
	input := [][2]float64{{50, 70}, {3, 40}}
	MergeIntervals(input)
	if input[0] != [2]float64{50, 70} {
		t.Errorf("input was mutated: %v", input)
	}
}

func TestTotalCovered(t *testing.T) {
	merged := MergeIntervals([][2]float64{{3, 40}, {50, 70}, {60, 80}, {100, 150}})
	got := TotalCovered(merged)
	// 37 + 30 + 50
	if got != 117 {
		t.Errorf("TotalCovered = %v, want 117", got)
	}
}
