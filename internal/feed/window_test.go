package feed

import "testing"

func TestObservedWindow(t *testing.T) {
	tests := []struct {
		name        string
		total, size int
		start, end  int
	}{
		{"empty", 0, 16, 0, 0},
		{"shorter than batch", 10, 16, 0, 10},
		{"exactly one batch", 16, 16, 0, 16},
		{"two batches", 32, 16, 16, 32},
		{"partial second batch", 20, 16, 4, 20},
		{"zero batch size", 7, 0, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := ObservedWindow(tt.total, tt.size)
			if s != tt.start || e != tt.end {
				t.Errorf("ObservedWindow(%d, %d) = [%d,%d), want [%d,%d)", tt.total, tt.size, s, e, tt.start, tt.end)
			}
		})
	}
}

func TestPrefetchIndex(t *testing.T) {
	tests := []struct {
		total, threshold, want int
	}{
		{32, 3, 29},
		{16, 3, 13},
		{3, 3, 0},
		{2, 3, -1},
		{0, 3, -1},
		{5, 0, -1},
	}
	for _, tt := range tests {
		if got := PrefetchIndex(tt.total, tt.threshold); got != tt.want {
			t.Errorf("PrefetchIndex(%d, %d) = %d, want %d", tt.total, tt.threshold, got, tt.want)
		}
	}
}
