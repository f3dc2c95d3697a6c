package views

import (
	"testing"

	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/schoolwatch/vtrack/internal/wire"
)

func TestEveryStatusHasAStyle(t *testing.T) {
	theme := ui.DefaultTheme()
	seen := make(map[string]bool)
	for _, s := range wire.Statuses() {
		st, ok := statusStyles[s]
		if !ok {
			t.Fatalf("no style for status %s", s)
		}
		if st.Label == "" || seen[st.Label] {
			t.Errorf("status %s has an empty or duplicate label %q", s, st.Label)
		}
		seen[st.Label] = true
		if st.Color(theme) == theme.BgColor {
			t.Errorf("status %s renders in the background color", s)
		}
	}
	if len(statusStyles) != len(wire.Statuses()) {
		t.Errorf("%d styles for %d statuses", len(statusStyles), len(wire.Statuses()))
	}
}

func TestUnknownStatusFallsBackToPending(t *testing.T) {
	theme := ui.DefaultTheme()
	label, color := styleFor(wire.Status(99), theme)
	if label != "PENDING" || color != theme.StatusPending {
		t.Errorf("got %q %v", label, color)
	}
}
