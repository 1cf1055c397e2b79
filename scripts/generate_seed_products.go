package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// seedProduct mirrors the catalogue fields consumed by the seed loader.
type seedProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
}

// Generates data/products.json, the default local catalogue seed file.
func main() {
	dataDir := "data"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []seedProduct{
		{
			ID:           "P001",
			Name:         "Airpods Wireless Bluetooth Headphones",
			Image:        "/images/airpods.jpg",
			Brand:        "Apple",
			Category:     "Electronics",
			Description:  "Bluetooth technology lets you connect it with compatible devices wirelessly.",
			Price:        89.99,
			CountInStock: 10,
		},
		{
			ID:           "P002",
			Name:         "iPhone 11 Pro 256GB Memory",
			Image:        "/images/phone.jpg",
			Brand:        "Apple",
			Category:     "Electronics",
			Description:  "Introducing the iPhone 11 Pro. A transformative triple-camera system.",
			Price:        599.99,
			CountInStock: 7,
		},
		{
			ID:           "P003",
			Name:         "Cannon EOS 80D DSLR Camera",
			Image:        "/images/camera.jpg",
			Brand:        "Cannon",
			Category:     "Electronics",
			Description:  "Characterized by versatile imaging specs and a pair of robust focusing systems.",
			Price:        929.99,
			CountInStock: 5,
		},
		{
			ID:           "P004",
			Name:         "Sony Playstation 4 Pro White Version",
			Image:        "/images/playstation.jpg",
			Brand:        "Sony",
			Category:     "Electronics",
			Description:  "The ultimate home entertainment center starts with PlayStation.",
			Price:        399.99,
			CountInStock: 11,
		},
		{
			ID:           "P005",
			Name:         "Logitech G-Series Gaming Mouse",
			Image:        "/images/mouse.jpg",
			Brand:        "Logitech",
			Category:     "Electronics",
			Description:  "Get a better handle on your games with this Logitech LIGHTSYNC gaming mouse.",
			Price:        49.99,
			CountInStock: 7,
		},
		{
			ID:           "P006",
			Name:         "Amazon Echo Dot 3rd Generation",
			Image:        "/images/alexa.jpg",
			Brand:        "Amazon",
			Category:     "Electronics",
			Description:  "Meet Echo Dot, our most popular smart speaker with a fabric design.",
			Price:        29.99,
			CountInStock: 0,
		},
	}

	filePath := filepath.Join(dataDir, "products.json")

	file, err := os.Create(filePath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(products); err != nil {
		log.Fatalf("Failed to write %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d products\n", filePath, len(products))
}
