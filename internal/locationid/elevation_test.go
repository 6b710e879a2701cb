package locationid

import (
	"errors"
	"testing"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

func TestAppendElevation(t *testing.T) {
	cases := []struct {
		id   string
		elev model.Elevation
		want string
	}{
		{"6gkzwgjz", model.Elevation{Number: 5}, "6gkzwgjz@5"},
		{"6gkzwgjz", model.Elevation{Number: -3}, "6gkzwgjz@-3"},
		{"6gkzwgjz", model.Elevation{Number: 87, Type: model.HeightInCm}, "6gkzwgjz#87"},
		{"6gkzwgjz", model.Elevation{Number: 0, Type: model.HeightInCm}, "6gkzwgjz"},
		{"6gkzwgjz", model.Elevation{}, "6gkzwgjz"},
	}
	for _, tc := range cases {
		if got := AppendElevation(tc.id, tc.elev); got != tc.want {
			t.Fatalf("AppendElevation(%q,%+v)=%q want %q", tc.id, tc.elev, got, tc.want)
		}
	}
}

func TestExcludeElevation(t *testing.T) {
	cases := []struct {
		id       string
		wantBare string
		want     model.Elevation
	}{
		{"6gkzwgjz@5", "6gkzwgjz", model.Elevation{Number: 5}},
		{"6gkzwgjz@-3", "6gkzwgjz", model.Elevation{Number: -3}},
		{"6gkzwgjz#87", "6gkzwgjz", model.Elevation{Number: 87, Type: model.HeightInCm}},
		{"6gkzwgjz#0", "6gkzwgjz", model.Elevation{Type: model.HeightInCm}},
		{"6GKZWGJZ", "6gkzwgjz", model.Elevation{}},
	}
	for _, tc := range cases {
		bare, elev, err := ExcludeElevation(tc.id)
		if err != nil {
			t.Fatalf("ExcludeElevation(%q): %v", tc.id, err)
		}
		if bare != tc.wantBare || elev != tc.want {
			t.Fatalf("ExcludeElevation(%q)=(%q,%+v) want (%q,%+v)", tc.id, bare, elev, tc.wantBare, tc.want)
		}
	}
}

func TestExcludeElevation_Malformed(t *testing.T) {
	for _, id := range []string{"", "6gkz@1@2", "6gkz#1#2", "6gkz@1#2", "6gkz@", "6gkz#x", "6gkz@99999999999"} {
		if _, _, err := ExcludeElevation(id); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("ExcludeElevation(%q) err=%v want ErrInvalidArgument", id, err)
		}
	}
}

func TestElevation_RoundTrip(t *testing.T) {
	for _, e := range []model.Elevation{
		{Number: 1},
		{Number: -12},
		{Number: 250, Type: model.HeightInCm},
		{Number: -5, Type: model.HeightInCm},
	} {
		_, got, err := ExcludeElevation(AppendElevation("u4pruy", e))
		if err != nil {
			t.Fatalf("round trip %+v: %v", e, err)
		}
		if got != e {
			t.Fatalf("round trip got %+v want %+v", got, e)
		}
	}
}
