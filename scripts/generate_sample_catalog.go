//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"phonestore/internal/catalog"
)

// generateSampleCatalog writes data/catalog.csv.gz for the seed-catalog
// command. Run with: go run scripts/generate_sample_catalog.go
func main() {
	dataDir := "data"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	phones := [][]string{
		{"SM-S24-256", "Samsung", "Galaxy S24", "Onyx Black", "256GB", "8GB", "899.99", "640.00", "25", "ACTIVE", "6.2\" Dynamic AMOLED, Snapdragon 8 Gen 3", ""},
		{"SM-A55-128", "Samsung", "Galaxy A55", "Awesome Navy", "128GB", "8GB", "429.00", "300.50", "40", "ACTIVE", "Mid-range, IP67", ""},
		{"AP-IP15-128", "Apple", "iPhone 15", "Blue", "128GB", "6GB", "829.00", "610.00", "18", "ACTIVE", "A16 Bionic, USB-C", ""},
		{"AP-IP15P-256", "Apple", "iPhone 15 Pro", "Natural Titanium", "256GB", "8GB", "1199.00", "905.00", "9", "ACTIVE", "A17 Pro, titanium frame", ""},
		{"GO-PX8-128", "Google", "Pixel 8", "Hazel", "128GB", "8GB", "699.00", "505.00", "12", "ACTIVE", "Tensor G3, 7 years of updates", ""},
		{"XI-RN13-256", "Xiaomi", "Redmi Note 13", "Midnight Black", "256GB", "8GB", "279.90", "190.00", "60", "ACTIVE", "120Hz AMOLED", ""},
		{"MO-G84-256", "Motorola", "Moto G84", "Viva Magenta", "256GB", "12GB", "299.00", "205.00", "0", "ACTIVE", "pOLED, 5000 mAh", ""},
		{"NO-G42-128", "Nokia", "G42 5G", "So Purple", "128GB", "6GB", "199.00", "140.00", "7", "DISCONTINUED", "Repairable design", ""},
	}

	filePath := filepath.Join(dataDir, "catalog.csv.gz")
	if err := writeCatalog(filePath, phones); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d phones\n", filePath, len(phones))
}

func writeCatalog(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write(catalog.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}
