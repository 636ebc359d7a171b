package logging

import "testing"

func TestShouldLog(t *testing.T) {
	cases := []struct {
		count, n uint64
		want     bool
	}{
		{1, 100, true},
		{3, 100, true},
		{4, 100, false},
		{99, 100, false},
		{100, 100, true},
		{200, 100, true},
		{7, 1, true},
		{7, 0, true},
	}
	for _, tc := range cases {
		if got := ShouldLog(tc.count, tc.n); got != tc.want {
			t.Fatalf("ShouldLog(%d, %d) = %v, want %v", tc.count, tc.n, got, tc.want)
		}
	}
}
