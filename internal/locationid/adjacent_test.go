package locationid

import (
	"errors"
	"testing"

	"github.com/mmcloughlin/geohash"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

func TestAdjacent_CrossesParentBorder(t *testing.T) {
	got, err := Adjacent("ezzz@5", North)
	if err != nil {
		t.Fatalf("Adjacent: %v", err)
	}
	if got != "gbpb@5" {
		t.Fatalf("got %q want gbpb@5", got)
	}
}

func TestAdjacent_OppositeDirectionsUndo(t *testing.T) {
	pairs := [][2]Direction{{North, South}, {South, North}, {East, West}, {West, East}}
	for _, id := range []string{"u4pruy", "6gkzwgjz", "ezzz", "wy85bj0hbp21", "u120fxw"} {
		for _, p := range pairs {
			there, err := Adjacent(id, p[0])
			if err != nil {
				t.Fatalf("Adjacent(%q,%v): %v", id, p[0], err)
			}
			back, err := Adjacent(there, p[1])
			if err != nil {
				t.Fatalf("Adjacent(%q,%v): %v", there, p[1], err)
			}
			if back != id {
				t.Fatalf("%q -%v-> %q -%v-> %q", id, p[0], there, p[1], back)
			}
		}
	}
}

func TestAdjacent_Rejects(t *testing.T) {
	if _, err := Adjacent("ezzz", Direction('x')); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad direction err=%v", err)
	}
	if _, err := Adjacent("ezza", North); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad id err=%v", err)
	}
	if _, err := ParseDirection("up"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ParseDirection err=%v", err)
	}
	if d, err := ParseDirection(" E "); err != nil || d != East {
		t.Fatalf("ParseDirection(E)=%v,%v", d, err)
	}
}

func TestNeighbours(t *testing.T) {
	want := model.Neighbours{
		N: "gbpb", NE: "u000", E: "spbp", SE: "spbn",
		S: "ezzy", SW: "ezzw", W: "ezzx", NW: "gbp8",
	}
	for _, suffix := range []string{"", "@5", "@-2", "#87", "#-5"} {
		got, err := Neighbours("ezzz" + suffix)
		if err != nil {
			t.Fatalf("Neighbours(ezzz%s): %v", suffix, err)
		}
		exp := model.Neighbours{
			N: want.N + suffix, NE: want.NE + suffix, E: want.E + suffix, SE: want.SE + suffix,
			S: want.S + suffix, SW: want.SW + suffix, W: want.W + suffix, NW: want.NW + suffix,
		}
		if got != exp {
			t.Fatalf("Neighbours(ezzz%s)=%+v want %+v", suffix, got, exp)
		}
	}
}

func TestNeighbours_MatchGeohashLibrary(t *testing.T) {
	for _, id := range []string{"u4pruy", "6gkzwgjz", "u120fxw", "dr5regw", "r3gx2f9"} {
		got, err := Neighbours(id)
		if err != nil {
			t.Fatalf("Neighbours(%q): %v", id, err)
		}
		// N, NE, E, SE, S, SW, W, NW
		ref := geohash.Neighbors(id)
		have := []string{got.N, got.NE, got.E, got.SE, got.S, got.SW, got.W, got.NW}
		for i := range have {
			if have[i] != ref[i] {
				t.Fatalf("Neighbours(%q)[%d]=%q geohash=%q", id, i, have[i], ref[i])
			}
		}
	}
}
