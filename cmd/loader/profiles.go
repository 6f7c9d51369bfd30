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

	"github.com/auroramart/storefront/internal/hash"
	"github.com/auroramart/storefront/internal/models"
)

func runProfiles(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)
	path := fs.String("profiles", "data/customers.csv", "path to the customer profiles CSV file")
	password := fs.String("password", "password123", "initial password for imported accounts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open profiles csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)

	passwordHash, err := hash.HashPassword(*password)
	if err != nil {
		return err
	}

	created, updated := 0, 0
	counter := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}

		username := fmt.Sprintf("customer%d", counter)
		counter++

		var user models.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			user = models.User{
				Username:     username,
				Email:        username + "@auroramart.com",
				PasswordHash: passwordHash,
				Role:         "user",
				IsActive:     true,
			}
			if err := db.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", username, err)
			}
		}

		label := strings.TrimSpace(row[col["preferred_category"]])
		income, _ := strconv.ParseFloat(strings.TrimSpace(row[col["monthly_income_sgd"]]), 64)
		hasChildren := strings.TrimSpace(row[col["has_children"]]) == "1"

		profile := models.CustomerProfile{
			UserID:            user.ID,
			Age:               parseUintField(row[col["age"]]),
			Gender:            strings.TrimSpace(row[col["gender"]]),
			EmploymentStatus:  strings.TrimSpace(row[col["employment_status"]]),
			Occupation:        strings.TrimSpace(row[col["occupation"]]),
			Education:         strings.TrimSpace(row[col["education"]]),
			HouseholdSize:     parseUintField(row[col["household_size"]]),
			HasChildren:       hasChildren,
			MonthlyIncomeSGD:  income,
			PreferredLabel:    label,
			PreferredCategory: resolveCategory(db, label),
		}

		var existing models.CustomerProfile
		if err := db.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
			updated++
		} else {
			created++
		}
		if err := db.Save(&profile).Error; err != nil {
			return fmt.Errorf("save profile for %s: %w", username, err)
		}
	}

	log.Printf("Customer profile import complete. Created %d, updated %d records.", created, updated)
	return nil
}

// resolveCategory matches the label to a category, falling back to the
// first segment of "Category - Detail" labels.
func resolveCategory(db *gorm.DB, label string) *uint {
	if label == "" {
		return nil
	}

	var category models.Category
	if err := db.Where("name = ?", label).First(&category).Error; err == nil {
		return &category.ID
	}

	if idx := strings.Index(label, "-"); idx > 0 {
		primary := strings.TrimSpace(label[:idx])
		if err := db.Where("name = ?", primary).First(&category).Error; err == nil {
			return &category.ID
		}
	}
	return nil
}
