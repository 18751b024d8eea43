package moderation

import (
	"testing"

	"github.com/wardenbot/warden/warden/database/models"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		typ  models.InfractionType
		want string
	}{
		{models.InfractionTypeWarn, "Warn"},
		{models.InfractionTypeKick, "Kick"},
		{models.InfractionTypeMute, "Mute"},
		{models.InfractionTypeBan, "Ban"},
		{models.InfractionType(""), ""},
	}

	for _, tt := range tests {
		if got := displayName(tt.typ); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
