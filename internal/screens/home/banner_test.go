package home

import (
	"strings"
	"testing"
)

func TestRenderBanner(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantArt       bool
	}{
		{"full", 80, 40, true},
		{"narrow", 60, 40, false},
		{"short", 80, 24, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderBanner(tt.width, tt.height)
			if got := strings.Contains(out, "██"); got != tt.wantArt {
				t.Errorf("art shown = %v, want %v", got, tt.wantArt)
			}
			if !tt.wantArt && !strings.Contains(out, bannerCompact) {
				t.Errorf("compact banner missing: %q", out)
			}
		})
	}
}
