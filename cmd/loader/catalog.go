package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/util"
)

func runCatalog(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	path := fs.String("products", "data/products.csv", "path to the products CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open products csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)

	created, updated := 0, 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		categoryName := strings.TrimSpace(row[col["Product Category"]])
		subcategoryName := strings.TrimSpace(row[col["Product Subcategory"]])

		category, err := getOrCreateCategory(db, categoryName)
		if err != nil {
			return err
		}
		subcategory, err := getOrCreateSubcategory(db, category, subcategoryName)
		if err != nil {
			return err
		}

		quantityOnHand := parseUintField(row[col["Quantity on hand"]])
		reorderQty := parseUintField(row[col["Reorder Quantity"]])
		unitPrice, _ := strconv.ParseFloat(strings.TrimSpace(row[col["Unit price"]]), 64)

		var rating *float64
		if raw := strings.TrimSpace(row[col["Product rating"]]); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				rating = &v
			}
		}

		sku := strings.TrimSpace(row[col["SKU code"]])
		product := models.Product{
			SKU:            sku,
			Name:           strings.TrimSpace(row[col["Product name"]]),
			Description:    strings.TrimSpace(row[col["Product description"]]),
			CategoryID:     category.ID,
			SubcategoryID:  &subcategory.ID,
			UnitPrice:      unitPrice,
			Rating:         rating,
			QuantityOnHand: quantityOnHand,
			ReorderQty:     reorderQty,
			IsActive:       true,
		}

		var existing models.Product
		if err := db.Where("sku = ?", sku).First(&existing).Error; err == nil {
			product.ID = existing.ID
			product.CreatedAt = existing.CreatedAt
			updated++
		} else {
			created++
		}
		if err := db.Save(&product).Error; err != nil {
			return fmt.Errorf("save product %s: %w", sku, err)
		}
	}

	log.Printf("Catalog import complete. Created %d products, updated %d.", created, updated)
	return nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	return col
}

func parseUintField(s string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

func getOrCreateCategory(db *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("name = ?", name).First(&category).Error; err == nil {
		return &category, nil
	}
	category = models.Category{Name: name, Slug: util.Slugify(name)}
	if err := db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return &category, nil
}

func getOrCreateSubcategory(db *gorm.DB, category *models.Category, name string) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := db.Where("category_id = ? AND name = ?", category.ID, name).First(&sub).Error; err == nil {
		return &sub, nil
	}
	sub = models.Subcategory{
		CategoryID: category.ID,
		Name:       name,
		Slug:       util.Slugify(category.Name, name),
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subcategory %q: %w", name, err)
	}
	return &sub, nil
}
