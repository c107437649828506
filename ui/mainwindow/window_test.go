package mainwindow

import (
	"testing"

	"fyne.io/fyne/v2"
)

func TestPanModifierFromName(t *testing.T) {
	cases := map[string]fyne.KeyModifier{
		"Alt":     fyne.KeyModifierAlt,
		"Control": fyne.KeyModifierControl,
		"Shift":   fyne.KeyModifierShift,
		"Super":   fyne.KeyModifierSuper,
		"":        fyne.KeyModifierAlt,
		"bogus":   fyne.KeyModifierAlt,
	}
	for name, want := range cases {
		if got := PanModifierFromName(name); got != want {
			t.Errorf("PanModifierFromName(%q) = %v, want %v", name, got, want)
		}
	}
	for _, name := range panModifierNames {
		if name != "Alt" && PanModifierFromName(name) == fyne.KeyModifierAlt {
			t.Errorf("selectable name %q maps to the Alt fallback", name)
		}
	}
}
