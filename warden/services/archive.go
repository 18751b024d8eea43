package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

const uploadConcurrency = 4

// ArchiveService periodically exports resolved infractions to S3-compatible
// object storage, one JSON document per record. The live database stays the
// source of truth; the archive is an off-site audit copy.
type ArchiveService struct {
	client   *s3.Client
	store    repositories.InfractionRepository
	bucket   string
	prefix   string
	interval time.Duration

	lastRun time.Time
}

func NewArchiveService(store repositories.InfractionRepository, key, secret, region, bucket, prefix string, interval time.Duration) (*ArchiveService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive storage config: %w", err)
	}

	return &ArchiveService{
		client:   s3.NewFromConfig(cfg),
		store:    store,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		interval: interval,
	}, nil
}

// Run blocks until ctx is cancelled, exporting on every tick. Each pass only
// covers records deactivated since the previous pass, so a crash re-exports
// at most one interval's worth (uploads are idempotent by key).
func (a *ArchiveService) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.lastRun = time.Now().Add(-a.interval)

	for {
		select {
		case <-ticker.C:
			if err := a.ExportSince(ctx, a.lastRun); err != nil {
				slog.Error("Infraction archive export failed",
					slog.String("type", "sys"),
					slog.Any("error", err))
				continue
			}
			a.lastRun = time.Now()
		case <-ctx.Done():
			return
		}
	}
}

// ExportSince uploads every infraction resolved after the given time.
func (a *ArchiveService) ExportSince(ctx context.Context, since time.Time) error {
	infractions, err := a.store.GetDeactivatedSince(ctx, since)
	if err != nil {
		return err
	}
	if len(infractions) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for _, inf := range infractions {
		inf := inf
		g.Go(func() error {
			return a.upload(ctx, inf)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Archived resolved infractions",
		slog.String("type", "sys"),
		slog.Int("count", len(infractions)),
		slog.Time("since", since))
	return nil
}

func (a *ArchiveService) upload(ctx context.Context, inf *models.Infraction) error {
	body, err := json.Marshal(inf)
	if err != nil {
		return fmt.Errorf("failed to encode infraction %d: %w", inf.ID, err)
	}

	key := a.objectKey(inf)
	if _, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("failed to upload infraction %d: %w", inf.ID, err)
	}
	return nil
}

func (a *ArchiveService) objectKey(inf *models.Infraction) string {
	key := fmt.Sprintf("%s/infraction-%d.json", inf.CreatedAt.UTC().Format("2006/01"), inf.ID)
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}
