package tariff

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk layout of a tariff file.
type profileFile struct {
	Profiles ProfileSet `yaml:"profiles"`
}

// fileLoader implements Loader for tariff files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based tariff loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "tariff-loader").Logger(),
	}
}

// Load reads a tariff file. Files ending in .gz are decompressed first.
func (l *fileLoader) Load(ctx context.Context, filePath string) (ProfileSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading tariff file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open tariff file")
		return nil, fmt.Errorf("failed to open tariff file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := decodeProfiles(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode tariff file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("profiles_loaded", len(set)).
		Msg("tariff file loaded successfully")

	return set, nil
}

// decodeProfiles parses a YAML profile document from r. name decides whether
// the stream is gzipped.
func decodeProfiles(ctx context.Context, r io.Reader, name string) (ProfileSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	var doc profileFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse tariff file %s: %w", name, err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("tariff file %s defines no profiles", name)
	}

	return doc.Profiles, nil
}
