package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenbot/warden/warden/database/models"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBatchSize = 500

// Migrator imports infraction documents from the previous bot's MongoDB
// into Postgres. One-shot tool; it never runs inside the bot process.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	collName  string
	batchSize int

	stats Stats
}

type Stats struct {
	Read      int
	Inserted  int
	Skipped   int
	StartTime time.Time
}

func NewMigrator(pgDB *bun.DB, mongoDB *mongo.Database) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   mongoDB,
		collName:  "infractions",
		batchSize: defaultBatchSize,
		stats:     Stats{StartTime: time.Now()},
	}
}

// SetBatchSize overrides the insert batch size (useful behind poolers).
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollection overrides the source collection name.
func (m *Migrator) SetCollection(name string) {
	if name != "" {
		m.collName = name
	}
}

// Connect dials the legacy MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// MigrateAll streams the legacy collection and inserts converted records in
// batches. Documents that cannot be converted are skipped and counted, never
// fatal: a partial legacy dataset is still worth importing.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	cursor, err := m.mongoDB.Collection(m.collName).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query legacy infractions: %w", err)
	}
	defer cursor.Close(ctx)

	batch := make([]*models.Infraction, 0, m.batchSize)

	for cursor.Next(ctx) {
		var doc legacyInfraction
		if err := cursor.Decode(&doc); err != nil {
			m.stats.Skipped++
			slog.Warn("Skipping undecodable legacy document", slog.Any("error", err))
			continue
		}
		m.stats.Read++

		infraction, err := doc.convert()
		if err != nil {
			m.stats.Skipped++
			slog.Warn("Skipping unconvertible legacy document",
				slog.String("legacy_id", doc.ID.Hex()),
				slog.Any("error", err))
			continue
		}

		batch = append(batch, infraction)
		if len(batch) >= m.batchSize {
			if err := m.insertBatch(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("legacy cursor failed: %w", err)
	}

	if len(batch) > 0 {
		if err := m.insertBatch(ctx, batch); err != nil {
			return err
		}
	}

	slog.Info("Legacy infraction migration finished",
		slog.Int("read", m.stats.Read),
		slog.Int("inserted", m.stats.Inserted),
		slog.Int("skipped", m.stats.Skipped),
		slog.Duration("took", time.Since(m.stats.StartTime)))
	return nil
}

func (m *Migrator) insertBatch(ctx context.Context, batch []*models.Infraction) error {
	if _, err := m.pgDB.NewInsert().
		Model(&batch).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert batch of %d infractions: %w", len(batch), err)
	}
	m.stats.Inserted += len(batch)
	return nil
}
