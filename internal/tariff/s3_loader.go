package tariff

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// maxProfileObjectBytes bounds how much of a tariff object is read. Profile
// files are a handful of lines; anything larger is a misconfigured key.
const maxProfileObjectBytes = 1 << 20

// objectGetter is the part of the S3 client used to fetch profile files.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads delivery tariff profile files from a bucket.
type s3Loader struct {
	objects objectGetter
	bucket  string
	logger  zerolog.Logger
}

// NewS3Loader builds a Loader backed by the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (Loader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Str("region", region).Msg("failed to load AWS configuration for tariff profiles")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return newS3Loader(s3.NewFromConfig(cfg), bucket, logger), nil
}

func newS3Loader(objects objectGetter, bucket string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{
		objects: objects,
		bucket:  bucket,
		logger:  logger.With().Str("component", "s3-tariff-loader").Str("bucket", bucket).Logger(),
	}
}

// Load fetches the delivery profile set stored under key.
func (l *s3Loader) Load(ctx context.Context, key string) (ProfileSet, error) {
	out, err := l.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("failed to fetch delivery profiles")
		return nil, fmt.Errorf("failed to fetch delivery profiles s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > maxProfileObjectBytes {
		return nil, fmt.Errorf("delivery profiles s3://%s/%s: object is %d bytes, limit %d",
			l.bucket, key, *out.ContentLength, maxProfileObjectBytes)
	}

	set, err := decodeProfiles(ctx, io.LimitReader(out.Body, maxProfileObjectBytes), key)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Msg("delivery profiles in S3 are unusable")
		return nil, err
	}

	event := l.logger.Info().
		Str("key", key).
		Strs("profiles", profileNames(set))
	if out.ETag != nil {
		event = event.Str("etag", *out.ETag)
	}
	event.Msg("delivery profiles loaded from S3")

	return set, nil
}

// profileNames lists the profiles of set in name order.
func profileNames(set ProfileSet) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fallbackLoader tries S3 first, then falls back to the local file system.
type fallbackLoader struct {
	s3Loader   Loader
	fileLoader Loader
	s3Prefix   string
	logger     zerolog.Logger
	s3Enabled  bool
}

// NewFallbackLoader creates a loader that tries S3 first, then falls back to local file system.
// If s3Loader is nil, it will only use the file loader.
func NewFallbackLoader(s3Loader, fileLoader Loader, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Prefix:   s3Prefix,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "fallback-tariff-loader").Logger(),
	}
}

// Load attempts S3 with s3Prefix prepended to filePath, then filePath on the
// local file system.
func (l *fallbackLoader) Load(ctx context.Context, filePath string) (ProfileSet, error) {
	if l.s3Enabled && l.s3Loader != nil {
		s3Key := l.s3Prefix + filePath

		set, err := l.s3Loader.Load(ctx, s3Key)
		if err == nil {
			return set, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", s3Key).
			Str("local_path", filePath).
			Msg("delivery profiles unavailable in S3, reading local copy")
	} else {
		l.logger.Debug().
			Bool("s3_enabled", l.s3Enabled).
			Bool("has_s3_loader", l.s3Loader != nil).
			Str("local_path", filePath).
			Msg("reading delivery profiles from local file")
	}

	return l.fileLoader.Load(ctx, filePath)
}
