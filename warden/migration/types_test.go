package migration

import (
	"testing"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
)

func TestLegacyInfraction_Convert(t *testing.T) {
	inserted := time.Date(2023, 3, 10, 8, 0, 0, 0, time.UTC)
	expiry := inserted.Add(6 * time.Hour)

	tests := []struct {
		name         string
		doc          legacyInfraction
		wantDuration int64
		wantActive   bool
		wantErr      bool
	}{
		{
			name: "timed ban",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "ban", Reason: "spam",
				InsertedAt: inserted, ExpiresAt: &expiry, Active: true,
			},
			wantDuration: 6 * 3600,
			wantActive:   true,
		},
		{
			name: "ban without expiry is permanent",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "ban",
				InsertedAt: inserted, Active: true,
			},
			wantDuration: models.PermanentDuration,
			wantActive:   true,
		},
		{
			name: "warn without expiry is instant",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "warning",
				InsertedAt: inserted, Active: false,
			},
			wantErr: true, // "warning" is not a recognized type
		},
		{
			name: "warn maps to instant",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "warn",
				InsertedAt: inserted, Active: false,
			},
			wantDuration: 0,
			wantActive:   false,
		},
		{
			name: "warn with stray expiry stays instant",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "warn",
				InsertedAt: inserted, ExpiresAt: &expiry, Active: false,
			},
			wantDuration: 0,
			wantActive:   false,
		},
		{
			name: "mute with already-passed expiry imports as resolved",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "mute",
				InsertedAt: inserted, ExpiresAt: &inserted, Active: false,
			},
			wantDuration: 1,
			wantActive:   false,
		},
		{
			name: "legacy inactive flag wins",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "mute",
				InsertedAt: inserted, ExpiresAt: &expiry, Active: false,
			},
			wantDuration: 6 * 3600,
			wantActive:   false,
		},
		{
			name: "missing inserted_at",
			doc: legacyInfraction{
				UserID: 42, ActorID: 7, Type: "ban", Active: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infraction, err := tt.doc.convert()
			if (err != nil) != tt.wantErr {
				t.Fatalf("convert() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if infraction.Duration != tt.wantDuration {
				t.Errorf("Duration = %d, want %d", infraction.Duration, tt.wantDuration)
			}
			if infraction.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", infraction.Active, tt.wantActive)
			}
			if infraction.UserID != "42" || infraction.ActorID != "7" {
				t.Errorf("ids = (%s, %s), want (42, 7)", infraction.UserID, infraction.ActorID)
			}
		})
	}
}
