//go:build ignore

package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type profile struct {
	BaseFee string `yaml:"base_fee"`
	PerKm   string `yaml:"per_km"`
	Store   *point `yaml:"store,omitempty"`
}

// Writes sample tariff files for DELIVERY_TARIFF_FILE, plain and gzipped.
// Upload the .gz file under S3_PREFIX to serve it from S3.
func main() {
	dataDir := "data/tariffs"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	doc := map[string]map[string]profile{
		"profiles": {
			"flat":     {BaseFee: "50.00", PerKm: "0.0007"},
			"metro":    {BaseFee: "50.00", PerKm: "12.00"},
			"province": {BaseFee: "120.00", PerKm: "18.50", Store: &point{Lat: 10.3157, Lng: 123.8854}},
			"free":     {BaseFee: "0", PerKm: "0"},
		},
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		log.Fatalf("Failed to encode profiles: %v", err)
	}

	plain := filepath.Join(dataDir, "profiles.yaml")
	if err := os.WriteFile(plain, raw, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", plain, err)
	}
	fmt.Printf("Created %s\n", plain)

	gz := filepath.Join(dataDir, "profiles.yaml.gz")
	if err := writeGzip(gz, raw); err != nil {
		log.Fatalf("Failed to write %s: %v", gz, err)
	}
	fmt.Printf("Created %s\n", gz)

	fmt.Println("\nSelect a profile with DELIVERY_PROFILE, e.g.:")
	fmt.Println("  DELIVERY_TARIFF_FILE=data/tariffs/profiles.yaml.gz DELIVERY_PROFILE=province")
}

func writeGzip(filePath string, data []byte) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if _, err := gzipWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}
