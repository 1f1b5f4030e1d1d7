package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDefaultMatcher(t *testing.T) {
	m := DefaultMatcher{}
	d := Device{
		"type":         "screen",
		"width":        800,
		"height":       600,
		"orientation":  "landscape",
		"resolution":   "2dppx",
		"aspect-ratio": "4/3",
		"color":        8,
	}

	tests := []struct {
		query string
		want  bool
	}{
		// Lengths
		{"(min-width: 600px)", true},
		{"(min-width: 801px)", false},
		{"(max-width: 800px)", true},
		{"(width: 800px)", true},
		{"(max-width: 40em)", false},
		{"(min-width: 50em)", true},
		{"(min-width: 10cm)", true},
		{"(min-width: 8.5in)", false},
		{"(min-width: 600pt)", true},
		{"(min-height: 100px)", true},
		{"(min-width:600px)", true},
		{"( MIN-WIDTH : 600PX )", true},

		// Enums
		{"(orientation: landscape)", true},
		{"(orientation: LANDSCAPE)", true},
		{"(orientation: portrait)", false},

		// Exponents
		{"(min-width: 1e3px)", false},
		{"(max-width: 1E3px)", true},
		{"(width: 8e2px)", true},
		{"(width: 8e+2)", true},
		{"(min-width: 50em)", true},
		{"(min-resolution: 1.92e2dpi)", true},

		// Media types
		{"screen", true},
		{"print", false},
		{"all", true},
		{"not print", true},
		{"not screen", false},
		{"only screen and (min-width: 600px)", true},
		{"screen and (max-width: 500px)", false},
		{"not screen and (max-width: 500px)", true},
		{"print, (min-width: 600px)", true},

		// Resolution, ratios, integers
		{"(min-resolution: 192dpi)", true},
		{"(min-resolution: 2dppx)", true},
		{"(min-resolution: 3x)", false},
		{"(aspect-ratio: 4/3)", true},
		{"(min-aspect-ratio: 16/9)", false},
		{"(max-aspect-ratio: 16 / 9)", true},
		{"(color)", true},
		{"(min-color: 4)", true},
		{"(monochrome)", false},

		// Range syntax
		{"(400px <= width <= 1000px)", true},
		{"(width > 800px)", false},
		{"(width >= 800px)", true},
		{"(1000px < width)", false},
		{"(500px < width)", true},
		{"(1000px > width > 900px)", false},

		// Conditions
		{"(min-width: 600px) and (orientation: portrait)", false},
		{"(min-width: 1200px) or (orientation: landscape)", true},
		{"((min-width: 1200px) or (orientation: landscape))", true},
		{"not (min-width: 1200px)", true},
		{"(not (color))", false},

		// Unknown to the device
		{"(min-device-width: 100px)", false},
		{"(hover: hover)", false},
		{"(min-device-width: 100px), (orientation: landscape)", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := m.Match(tt.query, d)
			if err != nil {
				t.Fatalf("Match(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestDefaultMatcher_SyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"(min-width: 100px",
		"(min-width:)",
		"()",
		"screen and",
		"and (color)",
		",(color)",
		"(color) (monochrome)",
		"(min-width: 100px) and (color) or (monochrome)",
		"screen and (color) or (monochrome)",
		"(100px < 200px)",
		"(400px < width > 100px)",
		"(min-width < 100px)",
	}

	for _, q := range tests {
		t.Run(q, func(t *testing.T) {
			_, err := StaticMatch(q, Device{"width": 100})
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("StaticMatch(%q) error = %v, want ErrInvalidQuery", q, err)
			}
		})
	}
}

func TestSyntaxError_Offset(t *testing.T) {
	_, err := Parse("(min-width: 100px) and")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
	if se.Offset != len("(min-width: 100px) and") {
		t.Errorf("Offset = %d, want end of query", se.Offset)
	}
}

func TestSyntaxError_ByteOffset(t *testing.T) {
	const q = "(grid: ✓) )"
	_, err := Parse(q)
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T (%v)", err, err)
	}
	if want := strings.LastIndex(q, ")"); se.Offset != want {
		t.Fatalf("Offset = %d, want %d", se.Offset, want)
	}
	if rest := q[se.Offset:]; rest != ")" {
		t.Errorf("q[Offset:] = %q, want %q", rest, ")")
	}
}

func TestMissingFeatures(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		device Device
		want   bool
	}{
		{"narrow", "(min-width: 100px)", Device{"width": 50}, false},
		{"wide", "(min-width: 100px)", Device{"width": 150}, true},
		{"no width", "(min-width: 100px)", Device{}, false},
		{"nil device", "(min-width: 100px)", nil, false},
		{"max without width", "(max-width: 100px)", Device{}, false},
		{"zero width", "(max-width: 100px)", Device{"width": 0}, false},
		{"or branch", "(min-width: 100px), (orientation: landscape)", Device{"width": 50, "orientation": "landscape"}, true},
		{"string width", "(min-width: 100px)", Device{"width": "120px"}, true},
		{"em width", "(min-width: 100px)", Device{"width": "5em"}, false},
		{"garbage width", "(min-width: 100px)", Device{"width": "wide"}, false},
		{"bool feature", "(hover)", Device{"hover": true}, true},
		{"bool feature off", "(hover)", Device{"hover": false}, false},
		{"none keyword", "(hover)", Device{"hover": "none"}, false},
		{"typeless screen query", "screen", Device{"width": 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StaticMatch(tt.query, tt.device)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("StaticMatch(%q, %v) = %v, want %v", tt.query, tt.device, got, tt.want)
			}
		})
	}
}

func TestMinMaxWidthIsMonotonic(t *testing.T) {
	breakpoints := []string{"0px", "320px", "48em", "1024px", "90rem"}

	for _, bp := range breakpoints {
		minQ := fmt.Sprintf("(min-width: %s)", bp)
		maxQ := fmt.Sprintf("(max-width: %s)", bp)

		var prevMin, prevMax bool
		for w := 1; w <= 2000; w += 7 {
			d := Device{"width": w}
			gotMin, err := StaticMatch(minQ, d)
			if err != nil {
				t.Fatal(err)
			}
			gotMax, err := StaticMatch(maxQ, d)
			if err != nil {
				t.Fatal(err)
			}
			if w > 1 {
				if prevMin && !gotMin {
					t.Fatalf("%s flipped true->false at width %d", minQ, w)
				}
				if !prevMax && gotMax {
					t.Fatalf("%s flipped false->true at width %d", maxQ, w)
				}
			}
			prevMin, prevMax = gotMin, gotMax
		}
	}
}

func TestQueryListIsLogicalOr(t *testing.T) {
	queries := []string{
		"(min-width: 600px)",
		"(max-width: 300px)",
		"(orientation: portrait)",
		"screen and (min-height: 500px)",
		"not (color)",
		"(400px <= width <= 700px)",
	}
	devices := []Device{
		{"width": 200, "orientation": "portrait"},
		{"width": 650, "height": 700, "type": "screen"},
		{"width": 1200, "color": 24},
		{},
	}

	for _, q1 := range queries {
		for _, q2 := range queries {
			for _, d := range devices {
				a, err := StaticMatch(q1, d)
				if err != nil {
					t.Fatal(err)
				}
				b, err := StaticMatch(q2, d)
				if err != nil {
					t.Fatal(err)
				}
				both, err := StaticMatch(q1+", "+q2, d)
				if err != nil {
					t.Fatal(err)
				}
				if both != (a || b) {
					t.Errorf("%q, %q on %v = %v, want %v", q1, q2, d, both, a || b)
				}
			}
		}
	}
}

func TestParse_Structure(t *testing.T) {
	list, err := Parse("not screen and (min-width: 100px), (400px < width <= 800px)")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}

	first := list[0]
	if !first.Not || first.Type != "screen" {
		t.Errorf("first query = %+v, want negated screen", first)
	}
	ft, ok := first.Cond.(FeatureTest)
	if !ok || ft.Name != "width" || ft.Comparisons[0] != (Comparison{Op: ">=", Value: "100px"}) {
		t.Errorf("first condition = %#v", first.Cond)
	}

	rng, ok := list[1].Cond.(FeatureTest)
	if !ok {
		t.Fatalf("second condition = %#v", list[1].Cond)
	}
	want := []Comparison{{Op: ">", Value: "400px"}, {Op: "<=", Value: "800px"}}
	if len(rng.Comparisons) != 2 || rng.Comparisons[0] != want[0] || rng.Comparisons[1] != want[1] {
		t.Errorf("range comparisons = %v, want %v", rng.Comparisons, want)
	}
}
