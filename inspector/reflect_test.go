package inspector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pthm-cable/universe25/components"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag    string
		widget Widget
		opts   map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"label", WidgetLabel, map[string]string{}},
		{"bar,max:100", WidgetBar, map[string]string{"max": "100"}},
		{"label, fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"sparkle", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		w, opts := ParseTag(tt.tag)
		if w != tt.widget {
			t.Errorf("ParseTag(%q) widget = %d, want %d", tt.tag, w, tt.widget)
		}
		if len(opts) != len(tt.opts) {
			t.Errorf("ParseTag(%q) options = %v, want %v", tt.tag, opts, tt.opts)
		}
		for k, v := range tt.opts {
			if opts[k] != v {
				t.Errorf("ParseTag(%q)[%s] = %q, want %q", tt.tag, k, opts[k], v)
			}
		}
	}
}

func TestExtractFieldsSkips(t *testing.T) {
	fields := ExtractFields(&components.Reproduction{Drive: 40})
	for _, f := range fields {
		if f.Name == "MateTraits" || f.Name == "Children" {
			t.Errorf("skipped field %s extracted", f.Name)
		}
	}
	if len(fields) != 5 {
		t.Errorf("got %d fields, want 5", len(fields))
	}
	if ExtractFields(42) != nil {
		t.Error("non-struct produced fields")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, max float64
		filled     int
	}{
		{0, 100, 0},
		{50, 100, 10},
		{100, 100, 20},
		{150, 100, 20},
		{-5, 100, 0},
	}
	for _, tt := range tests {
		got := Bar(tt.value, tt.max)
		if n := strings.Count(got, "#"); n != tt.filled {
			t.Errorf("Bar(%v, %v) = %s, %d filled, want %d", tt.value, tt.max, got, n, tt.filled)
		}
		if len(got) != barWidth+2 {
			t.Errorf("Bar(%v, %v) width %d", tt.value, tt.max, len(got))
		}
	}
}

func TestWriteMouse(t *testing.T) {
	s := components.MouseState{
		Identity:     components.Identity{ID: 7, Alive: true},
		Body:         components.Body{Age: 250, Hunger: 50, Gender: components.Female},
		Mind:         components.Mind{State: components.StateStressed},
		Reproduction: components.Reproduction{Children: []components.MouseID{8, 9}},
	}

	var buf bytes.Buffer
	if err := WriteMouse(&buf, s); err != nil {
		t.Fatalf("WriteMouse: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Identity", "Alive        yes", "female", "STRESSED", "Children     2", "##########.........."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
