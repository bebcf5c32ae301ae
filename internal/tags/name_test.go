package tags

import (
	"errors"
	"testing"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "bot:latest", true},
		{"versioned", "bot:v1.2.3", true},
		{"nested repository", "packforge/bot:stable", true},
		{"underscores and dashes", "my_bot:release-2026_08", true},
		{"no tag component", "bot", false},
		{"empty", "", false},
		{"uppercase repository", "Bot:latest", false},
		{"leading separator", "-bot:latest", false},
		{"digest reference", "bot@sha256:0000000000000000000000000000000000000000000000000000000000000000", false},
		{"tag starting with period", "bot:.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidName(tt.input)
			if tt.valid && err != nil {
				t.Fatalf("ValidName(%q) = %v, want nil", tt.input, err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatalf("ValidName(%q) = nil, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("error %v does not wrap ErrInvalidName", err)
				}
			}
		})
	}
}
