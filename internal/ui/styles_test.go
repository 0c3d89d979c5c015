package ui

import "testing"

func TestApplySwitchesPalette(t *testing.T) {
	defer Apply(Dark)

	Apply(For(false))
	if Current().Name != "light" {
		t.Errorf("palette = %q, want light", Current().Name)
	}
	if TitleStyle.GetForeground() != Light.Accent {
		t.Errorf("title foreground = %v, want %v", TitleStyle.GetForeground(), Light.Accent)
	}

	Apply(For(true))
	if Current().Name != "dark" {
		t.Errorf("palette = %q, want dark", Current().Name)
	}
}
