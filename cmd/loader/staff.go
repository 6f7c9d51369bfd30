package main

import (
	"flag"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/hash"
	"github.com/auroramart/storefront/internal/models"
)

func runStaff(db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("staff", flag.ExitOnError)
	username := fs.String("username", "staff", "admin account username")
	password := fs.String("password", "", "admin account password (required)")
	email := fs.String("email", "staff@auroramart.com", "admin account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return fmt.Errorf("staff: -password is required")
	}

	passwordHash, err := hash.HashPassword(*password)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.Where("username = ?", *username).First(&user).Error; err == nil {
		user.PasswordHash = passwordHash
		user.Role = "admin"
		user.IsActive = true
		if err := db.Save(&user).Error; err != nil {
			return err
		}
		log.Printf("Staff user %s already existed, password updated.", *username)
		return nil
	}

	user = models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: passwordHash,
		Role:         "admin",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("Staff user %s created.", *username)
	return nil
}
