package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
)

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return "ORDER-" + suffix
}

// runTransactions imports historical basket transactions. Every CSV row is
// a list of SKUs bought together; each becomes a converted basket with a
// matching order so the rule-mining exports line up with real rows.
func runTransactions(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	path := fs.String("transactions", "data/transactions.csv", "path to the basket transactions CSV file")
	limit := fs.Int("limit", 1000, "number of baskets to import (0 for all)")
	purge := fs.Bool("purge", false, "clear existing baskets and orders before import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *purge {
		for _, model := range []interface{}{
			&models.OrderItem{}, &models.Order{}, &models.BasketItem{}, &models.Basket{},
		} {
			if err := db.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("purge: %w", err)
			}
		}
		log.Println("Existing order history purged.")
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open transactions csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	imported, skippedItems := 0, 0
	for {
		if *limit > 0 && imported >= *limit {
			break
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		var skus []string
		for _, field := range row {
			if sku := strings.TrimSpace(field); sku != "" {
				skus = append(skus, sku)
			}
		}
		if len(skus) == 0 {
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			basket := models.Basket{IsConverted: true}
			if err := tx.Create(&basket).Error; err != nil {
				return err
			}

			var total float64
			var items int
			for _, sku := range skus {
				var product models.Product
				if err := tx.Where("sku = ?", sku).First(&product).Error; err != nil {
					skippedItems++
					continue
				}
				item := models.BasketItem{
					BasketID:  basket.ID,
					ProductID: product.ID,
					Quantity:  1,
					UnitPrice: product.UnitPrice,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				total += product.UnitPrice
				items++
			}

			if items == 0 {
				return tx.Delete(&basket).Error
			}

			order := models.Order{
				BasketID:    basket.ID,
				OrderNumber: newOrderNumber(),
				Total:       total,
				Status:      "Imported",
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			imported++
			return nil
		})
		if err != nil {
			return fmt.Errorf("import basket: %w", err)
		}
	}

	log.Printf("Transaction import complete. Imported %d baskets. Skipped %d items without matching products.",
		imported, skippedItems)
	return nil
}
