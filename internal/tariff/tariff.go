package tariff

import (
	"context"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Built-in profile names.
const (
	// ProfileFlat barely scales with distance: about 50 at 0 km and 57 at 10000 km.
	ProfileFlat = "flat"
	// ProfileMetro charges 12 per km on top of the base fee.
	ProfileMetro = "metro"
)

// DefaultStore is the fallback origin when a profile does not name one.
var DefaultStore = model.Point{Lat: 14.599512, Lng: 120.984222}

// Profile is one named set of delivery fee parameters.
type Profile struct {
	BaseFee decimal.Decimal `yaml:"base_fee"`
	PerKm   decimal.Decimal `yaml:"per_km"`
	Store   *model.Point    `yaml:"store,omitempty"`
}

// ProfileSet maps profile names to profiles.
type ProfileSet map[string]Profile

// Loader defines the interface for loading tariff profile files.
type Loader interface {
	// Load reads a YAML profile file (optionally gzipped) and returns its profiles.
	Load(ctx context.Context, filePath string) (ProfileSet, error)
}

// BuiltinProfiles returns the profiles available without any profile file.
func BuiltinProfiles() ProfileSet {
	return ProfileSet{
		ProfileFlat: {
			BaseFee: decimal.RequireFromString("50.0"),
			PerKm:   decimal.RequireFromString("0.0007"),
		},
		ProfileMetro: {
			BaseFee: decimal.RequireFromString("50.0"),
			PerKm:   decimal.RequireFromString("12.0"),
		},
	}
}

// Options selects and overrides a profile.
type Options struct {
	// Profile is the profile name to use.
	Profile string

	// File is an optional profile file whose entries extend or replace the
	// built-in profiles.
	File string

	// BaseFee, PerKm and Store override the selected profile when set.
	BaseFee *decimal.Decimal
	PerKm   *decimal.Decimal
	Store   *model.Point
}

// Resolve builds the delivery tariff described by opts. The profile file, if
// any, is read through loader.
func Resolve(ctx context.Context, opts Options, loader Loader, logger zerolog.Logger) (pricing.DeliveryTariff, error) {
	logger = logger.With().Str("component", "tariff").Logger()

	profiles := BuiltinProfiles()
	if opts.File != "" {
		if loader == nil {
			return pricing.DeliveryTariff{}, fmt.Errorf("tariff file %s configured without a loader", opts.File)
		}
		loaded, err := loader.Load(ctx, opts.File)
		if err != nil {
			return pricing.DeliveryTariff{}, fmt.Errorf("failed to load tariff file %s: %w", opts.File, err)
		}
		for name, p := range loaded {
			profiles[name] = p
		}
	}

	name := opts.Profile
	if name == "" {
		name = ProfileFlat
	}
	profile, ok := profiles[name]
	if !ok {
		return pricing.DeliveryTariff{}, fmt.Errorf("unknown delivery profile: %s", name)
	}

	t := pricing.DeliveryTariff{
		BaseFee: profile.BaseFee,
		PerKm:   profile.PerKm,
		Store:   DefaultStore,
	}
	if profile.Store != nil {
		t.Store = *profile.Store
	}
	if opts.BaseFee != nil {
		t.BaseFee = *opts.BaseFee
	}
	if opts.PerKm != nil {
		t.PerKm = *opts.PerKm
	}
	if opts.Store != nil {
		t.Store = *opts.Store
	}

	if err := validate(t); err != nil {
		return pricing.DeliveryTariff{}, fmt.Errorf("delivery profile %s: %w", name, err)
	}

	logger.Info().
		Str("profile", name).
		Str("base_fee", t.BaseFee.String()).
		Str("per_km", t.PerKm.String()).
		Float64("store_lat", t.Store.Lat).
		Float64("store_lng", t.Store.Lng).
		Msg("delivery tariff resolved")

	return t, nil
}

func validate(t pricing.DeliveryTariff) error {
	if t.BaseFee.IsNegative() {
		return fmt.Errorf("base fee must not be negative")
	}
	if t.PerKm.IsNegative() {
		return fmt.Errorf("per-km rate must not be negative")
	}
	if !pricing.ValidPoint(t.Store) {
		return fmt.Errorf("invalid store location: %v,%v", t.Store.Lat, t.Store.Lng)
	}
	return nil
}
