package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"adminpanel/models"
	"adminpanel/pkg/config"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars); prompted when empty")
	revoke := flag.Bool("revoke", true, "revoke the user's refresh tokens")
	flag.Parse()
	if *username == "" {
		log.Fatal("--username is required")
	}
	if *password == "" {
		fmt.Fprint(os.Stderr, "New password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatalf("read password: %v", err)
		}
		*password = string(b)
	}
	if len(*password) < 6 {
		log.Fatal("password too short (min 6)")
	}
	cfg := config.Load()
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var user models.User
	if err := db.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	if err := db.Model(&user).Update("hashed_password", hash).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if *revoke {
		res := db.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked = ?", user.ID, false).Update("revoked", true)
		if res.Error != nil {
			log.Printf("warning: revoke refresh tokens: %v", res.Error)
		} else {
			fmt.Printf("revoked %d refresh token(s)\n", res.RowsAffected)
		}
	}
	fmt.Printf("Password reset for user %s\n", user.Username)
}
