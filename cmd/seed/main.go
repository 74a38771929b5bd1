// Command seed loads demo accounts into an existing database so the API
// can be exercised locally. It talks to Postgres directly and expects
// the schema to have been migrated by the server.
package main

import (
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type demoUser struct {
	FullName    string
	PhoneNumber string
	Password    string
	Role        string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("✅ Successfully connected to database")

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		log.Fatal("Failed to check users count:", err)
	}
	if count > 0 {
		log.Printf("⚠️ Users already exist (%d found). Skipping insertion.", count)
		return
	}

	users := []demoUser{
		{FullName: "Demo Customer", PhoneNumber: "+14155550100", Password: "Customer1!", Role: "customer"},
		{FullName: "Demo Worker", PhoneNumber: "+14155550101", Password: "Worker123!", Role: "worker"},
		{FullName: "Demo Admin", PhoneNumber: "+14155550102", Password: "Admin1234!", Role: "admin"},
	}

	insertQuery := `
		INSERT INTO users (full_name, phone_number, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	now := time.Now()
	inserted := 0

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), 12)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", u.PhoneNumber, err)
		}

		if _, err := db.Exec(insertQuery, u.FullName, u.PhoneNumber, string(hash), u.Role, true, now, now); err != nil {
			log.Printf("❌ Failed to insert user '%s': %v", u.FullName, err)
			continue
		}

		log.Printf("✅ Inserted %s (%s)", u.FullName, u.Role)
		inserted++
	}

	log.Printf("🎉 Seeding completed! %d out of %d users inserted", inserted, len(users))
}
