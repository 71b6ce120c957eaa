package spatialindex

import (
	"testing"

	"github.com/lintang-b-s/wayfinder/pkg/geo"
)

func TestRtreeNearby(t *testing.T) {
	rt := NewRtree()
	rt.Insert("Tugu Pal Putih", geo.NewCoordinate(-7.7829, 110.3671))
	rt.Insert("Malioboro Mall", geo.NewCoordinate(-7.7926, 110.3661))
	rt.Insert("Monas Jakarta", geo.NewCoordinate(-6.1754, 106.8272))

	focus := geo.NewCoordinate(-7.7956, 110.3695)

	got := rt.Nearby(focus, 25.0, "", 10)
	if len(got) != 2 {
		t.Fatalf("got %d places within 25km, want 2", len(got))
	}
	if got[0].Label != "Malioboro Mall" {
		t.Errorf("nearest first: got %q, want Malioboro Mall", got[0].Label)
	}
	for _, s := range got {
		if !s.HasCoordinates() || !s.Recent {
			t.Errorf("recent suggestion %q must carry inline coordinates and the recent flag", s.Label)
		}
	}

	got = rt.Nearby(focus, 25.0, "tugu", 10)
	if len(got) != 1 || got[0].Label != "Tugu Pal Putih" {
		t.Fatalf("prefix filter: got %+v", got)
	}
}

func TestRtreeInsertDeduplicates(t *testing.T) {
	rt := NewRtree()
	rt.Insert("Stasiun Tugu", geo.NewCoordinate(-7.789, 110.363))
	rt.Insert("stasiun tugu", geo.NewCoordinate(-7.789, 110.363))
	rt.Insert("", geo.NewCoordinate(-7.789, 110.363))

	if rt.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rt.Len())
	}
}
