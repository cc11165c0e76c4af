package sync

import (
	"reflect"
	"testing"
)

func TestSplitRange(t *testing.T) {
	cases := []struct {
		name      string
		from, to  uint64
		batchSize uint64
		want      []BlockRange
	}{
		{"even split", 100, 105, 2, []BlockRange{{100, 101}, {102, 103}, {104, 105}}},
		{"remainder goes to the last window", 1, 10, 4, []BlockRange{{1, 4}, {5, 8}, {9, 10}}},
		{"single block", 5, 5, 10, []BlockRange{{5, 5}}},
		{"window larger than the range", 100, 103, 1000, []BlockRange{{100, 103}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitRange(tc.from, tc.to, tc.batchSize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("windows mismatch: %+v != %+v", got, tc.want)
			}
		})
	}
}

func TestSplitRangeRejectsBadInput(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected an error for a reversed range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected an error for a zero batch size")
	}
}
