package domain

import (
	"errors"
	"testing"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name    string
		chatID  string
		number  string
		want    Target
		wantErr error
	}{
		{"direct number gets suffix", "", "6281234567890", "6281234567890@c.us", nil},
		{"group number kept verbatim", "", "12345-abc@g.us", "12345-abc@g.us", nil},
		{"chat id used verbatim", "120363@g.us", "", "120363@g.us", nil},
		{"chat id wins over number", "abc@c.us", "6281234567890", "abc@c.us", nil},
		{"chat id not normalized", "6281234567890", "", "6281234567890", nil},
		{"neither supplied", "", "", "", ErrMissingTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.chatID, tt.number)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResolveTarget() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTarget_IsGroup(t *testing.T) {
	if !Target("1-2@g.us").IsGroup() {
		t.Error("expected group target")
	}
	if Target("628@c.us").IsGroup() {
		t.Error("expected direct target")
	}
}
