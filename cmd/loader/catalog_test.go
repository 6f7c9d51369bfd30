package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/config"
	"github.com/auroramart/storefront/internal/models"
)

const productsCSV = `SKU code,Product name,Product description,Product Category,Product Subcategory,Unit price,Product rating,Quantity on hand,Reorder Quantity
EL-001,Headphones,Over-ear headphones,Electronics,Audio,199.90,4.5,25,5
EL-002,Speaker,Bluetooth speaker,Electronics,Audio,89.00,,10,2
BT-001,Face Cream,Daily moisturiser,Beauty & Personal Care,Skincare,25.00,4.2,50,10
`

func newLoaderDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCatalog(t *testing.T) {
	db := newLoaderDB(t)
	path := writeCSV(t, productsCSV)

	require.NoError(t, runCatalog(db, []string{"-products", path}))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(3), products)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.Equal(t, int64(2), categories)

	var headphones models.Product
	require.NoError(t, db.Where("sku = ?", "EL-001").First(&headphones).Error)
	require.Equal(t, 199.90, headphones.UnitPrice)
	require.Equal(t, uint(25), headphones.QuantityOnHand)
	require.NotNil(t, headphones.Rating)
	require.InDelta(t, 4.5, *headphones.Rating, 0.001)

	// a blank rating stays null rather than becoming zero
	var speaker models.Product
	require.NoError(t, db.Where("sku = ?", "EL-002").First(&speaker).Error)
	require.Nil(t, speaker.Rating)

	var beauty models.Category
	require.NoError(t, db.Where("name = ?", "Beauty & Personal Care").First(&beauty).Error)
	require.Equal(t, "beauty-personal-care", beauty.Slug)

	var skincare models.Subcategory
	require.NoError(t, db.Where("category_id = ?", beauty.ID).First(&skincare).Error)
	require.Equal(t, "beauty-personal-care-skincare", skincare.Slug)
}

func TestRunCatalogIsIdempotent(t *testing.T) {
	db := newLoaderDB(t)
	path := writeCSV(t, productsCSV)

	require.NoError(t, runCatalog(db, []string{"-products", path}))
	require.NoError(t, runCatalog(db, []string{"-products", path}))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	require.Equal(t, int64(3), products)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.Equal(t, int64(2), categories)
}
