package cv

import "testing"

func TestRegionBounded(t *testing.T) {
	outer := NewRegion(0, 0, 1920, 1080)

	cases := []struct {
		name string
		in   Region
		want Region
	}{
		{"fully inside", NewRegion(100, 100, 200, 150), NewRegion(100, 100, 200, 150)},
		{"overhangs right edge", NewRegion(1900, 100, 200, 150), NewRegion(1900, 100, 20, 150)},
		{"overhangs bottom edge", NewRegion(100, 1000, 200, 150), NewRegion(100, 1000, 200, 80)},
		{"negative origin", NewRegion(-50, -50, 200, 150), NewRegion(0, 0, 150, 100)},
		{"fully outside", NewRegion(3000, 3000, 200, 150), NewRegion(3000, 3000, 1, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Bounded(outer)
			if got != tc.want {
				t.Errorf("Bounded() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRegionContains(t *testing.T) {
	r := NewRegion(10, 10, 100, 50)

	if !r.Contains(Point{X: 10, Y: 10}) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(Point{X: 110, Y: 10}) {
		t.Error("right edge is exclusive")
	}
	if r.Contains(Point{X: 10, Y: 60}) {
		t.Error("bottom edge is exclusive")
	}
	if r.Contains(Point{X: 9, Y: 10}) {
		t.Error("point left of region should be outside")
	}
}

func TestRegionEmpty(t *testing.T) {
	if NewRegion(0, 0, 10, 10).Empty() {
		t.Error("region with area reported empty")
	}
	if !NewRegion(0, 0, 0, 10).Empty() {
		t.Error("zero-width region should be empty")
	}
	if !NewRegion(0, 0, 10, -1).Empty() {
		t.Error("negative-height region should be empty")
	}
}
