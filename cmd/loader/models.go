package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
	"github.com/auroramart/storefront/internal/service/recommend"
)

func runModels(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	dir := fs.String("models-dir", "model", "directory containing serialized model artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	artifacts := []models.ModelArtifact{
		{
			Code:        "decision_tree_customer_preference",
			Name:        "Customer Preferred Category Decision Tree",
			Description: "Predicts a customer's preferred category from onboarding demographics.",
			ModelType:   "decision_tree",
			FilePath:    recommend.DecisionTreeFilename,
		},
		{
			Code:        "association_rules_basket",
			Name:        "Basket Association Rules",
			Description: "Antecedent to consequent product co-occurrence rules mined from basket transactions.",
			ModelType:   "association_rules",
			FilePath:    recommend.AssociationRulesFilename,
		},
	}

	registered, missing := 0, 0
	for _, artifact := range artifacts {
		path := filepath.Join(*dir, artifact.FilePath)
		if _, err := os.Stat(path); err != nil {
			log.Printf("artifact %s not found at %s, skipping", artifact.Code, path)
			missing++
			continue
		}

		artifact.Version = "1.0.0"
		artifact.TrainedAt = time.Now()

		var existing models.ModelArtifact
		if err := db.Where("code = ?", artifact.Code).First(&existing).Error; err == nil {
			artifact.ID = existing.ID
			artifact.CreatedAt = existing.CreatedAt
		}
		if err := db.Save(&artifact).Error; err != nil {
			return fmt.Errorf("register artifact %s: %w", artifact.Code, err)
		}
		registered++
	}

	log.Printf("Artifact registration complete. Registered %d, missing %d.", registered, missing)
	return nil
}
