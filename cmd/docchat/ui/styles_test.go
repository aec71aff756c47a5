package ui

import "testing"

func TestDetectTheme_EnvOverride(t *testing.T) {
	t.Setenv("DOCCHAT_DARK_MODE", "1")
	t.Setenv("COLORFGBG", "0;15")

	if theme := DetectTheme(); !theme.IsDark {
		t.Error("DOCCHAT_DARK_MODE=1 must win over COLORFGBG")
	}
}

func TestDetectTheme_LightBackground(t *testing.T) {
	t.Setenv("DOCCHAT_DARK_MODE", "")
	t.Setenv("COLORFGBG", "0;15")

	if theme := DetectTheme(); theme.IsDark {
		t.Error("COLORFGBG background 15 should select the light theme")
	}
}

func TestDetectTheme_Default(t *testing.T) {
	t.Setenv("DOCCHAT_DARK_MODE", "")
	t.Setenv("COLORFGBG", "")

	if theme := DetectTheme(); !theme.IsDark {
		t.Error("default theme should be dark")
	}
}

func TestNewStyles_CarriesTheme(t *testing.T) {
	s := NewStyles(LightTheme())
	if s.Theme.IsDark {
		t.Error("styles must carry the theme they were built with")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(DarkTheme())
	if s.RenderDivider(0) != "" {
		t.Error("zero width divider must be empty")
	}
	if s.RenderDivider(-3) != "" {
		t.Error("negative width divider must be empty")
	}
	if s.RenderDivider(4) == "" {
		t.Error("positive width divider must render")
	}
}
