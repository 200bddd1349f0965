package pricing

import (
	"math"
	"strconv"
	"strings"

	"marketplace/internal/model"

	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Origin kinds reported on priced lines.
const (
	OriginSeller = "seller"
	OriginStore  = "store"
)

// DeliveryTariff holds the delivery fee parameters.
type DeliveryTariff struct {
	BaseFee decimal.Decimal
	PerKm   decimal.Decimal
	Store   model.Point
}

// Origin is where a line ships from: either a SellerLocation or a
// StoreFallback.
type Origin interface {
	Point() model.Point
	Kind() string
	isOrigin()
}

// SellerLocation ships from the seller's registered coordinates.
type SellerLocation struct{ At model.Point }

// StoreFallback ships from the configured store location.
type StoreFallback struct{ At model.Point }

func (o SellerLocation) Point() model.Point { return o.At }
func (o SellerLocation) Kind() string       { return OriginSeller }
func (SellerLocation) isOrigin()            {}

func (o StoreFallback) Point() model.Point { return o.At }
func (o StoreFallback) Kind() string       { return OriginStore }
func (StoreFallback) isOrigin()            {}

// ResolveOrigin picks the seller's location when it is present and valid and
// the store location otherwise.
func ResolveOrigin(product *model.Product, store model.Point) Origin {
	if product != nil && product.SellerLocation != nil && ValidPoint(*product.SellerLocation) {
		return SellerLocation{At: *product.SellerLocation}
	}
	return StoreFallback{At: store}
}

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b model.Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	// Rounding can push h just past 1 for near-antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Fee returns the delivery fee for one line shipped from origin to dest, and
// the distance used. Without a destination only the base fee applies and the
// distance is nil.
func (t DeliveryTariff) Fee(origin Origin, dest *model.Point) (decimal.Decimal, *float64) {
	if dest == nil {
		return RoundMoney(t.BaseFee), nil
	}
	km := HaversineKm(origin.Point(), *dest)
	fee := t.BaseFee.Add(t.PerKm.Mul(decimal.NewFromFloat(km)))
	return RoundMoney(fee), &km
}

// ValidPoint reports whether p is a finite coordinate on the globe.
func ValidPoint(p model.Point) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// ParsePoint interprets raw latitude and longitude input. Anything missing,
// malformed or out of range yields nil.
func ParsePoint(lat, lng string) *model.Point {
	la, ok := parseCoordinate(lat)
	if !ok {
		return nil
	}
	ln, ok := parseCoordinate(lng)
	if !ok {
		return nil
	}
	p := model.Point{Lat: la, Lng: ln}
	if !ValidPoint(p) {
		return nil
	}
	return &p
}

func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
