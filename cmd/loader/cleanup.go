package main

import (
	"flag"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/models"
)

var testPatterns = []string{"test", "demo", "example"}

// runCleanup lists accounts that look like leftovers from manual testing:
// pattern-matched usernames/emails or users without a customer profile.
func runCleanup(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	doDelete := fs.Bool("delete", false, "actually delete the accounts (default only lists them)")
	unlinkedOnly := fs.Bool("unlinked-only", false, "only consider users without a customer profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var users []models.User
	if err := db.Where("role = ?", "user").Find(&users).Error; err != nil {
		return err
	}

	var candidates []models.User
	for _, user := range users {
		isTest := matchesTestPattern(user.Username) || matchesTestPattern(user.Email)

		var count int64
		if err := db.Model(&models.CustomerProfile{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		hasProfile := count > 0

		if *unlinkedOnly {
			if !hasProfile {
				candidates = append(candidates, user)
			}
		} else if isTest || !hasProfile {
			candidates = append(candidates, user)
		}
	}

	if len(candidates) == 0 {
		log.Println("No test users found.")
		return nil
	}

	for _, user := range candidates {
		if *doDelete {
			if err := db.Where("user_id = ?", user.ID).Delete(&models.CustomerProfile{}).Error; err != nil {
				return err
			}
			if err := db.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
				return err
			}
			if err := db.Delete(&user).Error; err != nil {
				return err
			}
			log.Printf("deleted %s (%s)", user.Username, user.Email)
		} else {
			log.Printf("candidate %s (%s)", user.Username, user.Email)
		}
	}

	if !*doDelete {
		log.Printf("Found %d potential test user(s). Re-run with -delete to remove them.", len(candidates))
	}
	return nil
}

func matchesTestPattern(s string) bool {
	s = strings.ToLower(s)
	for _, pattern := range testPatterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
