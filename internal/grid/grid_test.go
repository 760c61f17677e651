package grid

import "testing"

func TestNewRegionNormalizes(t *testing.T) {
	r := NewRegion(Point{X: 10, Y: -3, Z: 5}, Point{X: -2, Y: 7, Z: 5})
	if r.Min != (Point{X: -2, Y: -3, Z: 5}) {
		t.Fatalf("min: %v", r.Min)
	}
	if r.Max != (Point{X: 10, Y: 7, Z: 5}) {
		t.Fatalf("max: %v", r.Max)
	}
}

func TestVolumeInclusive(t *testing.T) {
	r := NewRegion(Point{}, Point{X: 99, Y: 9, Z: 99})
	if got := r.Volume(); got != 100*10*100 {
		t.Fatalf("volume: %d", got)
	}
	unit := NewRegion(Point{X: 1, Y: 1, Z: 1}, Point{X: 1, Y: 1, Z: 1})
	if got := unit.Volume(); got != 1 {
		t.Fatalf("unit volume: %d", got)
	}
}

func TestChunksGridShape(t *testing.T) {
	// 100x10x100 at edge 32: ceil(100/32)=4 per horizontal axis, 1 vertical.
	r := NewRegion(Point{}, Point{X: 99, Y: 9, Z: 99})
	chunks := r.Chunks(32)
	if len(chunks) != 16 {
		t.Fatalf("expected 16 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.Volume() > 32*32*32 {
			t.Fatalf("chunk too large: %+v", c)
		}
	}
}

func TestChunksExactCover(t *testing.T) {
	r := NewRegion(Point{X: -5, Y: 0, Z: 3}, Point{X: 40, Y: 17, Z: 50})
	chunks := r.Chunks(16)

	total := 0
	for _, c := range chunks {
		if !r.Contains(c.Min) || !r.Contains(c.Max) {
			t.Fatalf("chunk escapes region: %+v", c)
		}
		total += c.Volume()
	}
	if total != r.Volume() {
		t.Fatalf("cover volume %d != region volume %d", total, r.Volume())
	}

	// No overlap: volumes summing to the region volume plus containment
	// already implies it, but check a few points directly.
	for _, p := range []Point{r.Min, r.Max, r.Center()} {
		owners := 0
		for _, c := range chunks {
			if c.Contains(p) {
				owners++
			}
		}
		if owners != 1 {
			t.Fatalf("point %v owned by %d chunks", p, owners)
		}
	}
}

func TestChunksSingleWhenSmall(t *testing.T) {
	r := NewRegion(Point{}, Point{X: 7, Y: 7, Z: 7})
	chunks := r.Chunks(32)
	if len(chunks) != 1 || chunks[0] != r {
		t.Fatalf("expected identity partition, got %+v", chunks)
	}
}

func TestSamplePoints(t *testing.T) {
	r := NewRegion(Point{}, Point{X: 10, Y: 10, Z: 10})
	pts := r.SamplePoints()
	if pts[0] != r.Min || pts[1] != r.Max {
		t.Fatalf("corner samples wrong: %v", pts)
	}
	if pts[2] != (Point{X: 5, Y: 5, Z: 5}) {
		t.Fatalf("center sample wrong: %v", pts[2])
	}
	for _, p := range pts {
		if !r.Contains(p) {
			t.Fatalf("sample outside region: %v", p)
		}
	}
}
