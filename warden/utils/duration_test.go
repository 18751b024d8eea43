package utils

import (
	"testing"

	"github.com/wardenbot/warden/warden/database/models"
)

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"permanent sentinel", models.PermanentDuration, "permanent"},
		{"zero is instant", 0, "instant"},
		{"single unit", 3600, "1 hour"},
		{"two units", 3*24*3600 + 2*3600, "3 days and 2 hours"},
		{"truncates to two units", 24*3600 + 3600 + 61, "1 day and 1 hour"},
		{"plural seconds", 45, "45 seconds"},
		{"minute and second", 61, "1 minute and 1 second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HumanizeDuration(tt.seconds); got != tt.want {
				t.Errorf("HumanizeDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"compact", "3d2h", 3*24*3600 + 2*3600, false},
		{"spaced", "1 week", 7 * 24 * 3600, false},
		{"seconds only", "90s", 90, false},
		{"minutes", "10M", 600, false},
		{"permanent literal", "permanent", models.PermanentDuration, false},
		{"forever literal", "forever", models.PermanentDuration, false},
		{"garbage", "soon", 0, true},
		{"empty", "", 0, true},
		{"wrong order", "2h3d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
