// Command migrate applies the database schema out-of-band, for
// deployments where the server should not run migrations itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lojatax/api/internal/database"
)

func main() {
	dbURL := flag.String("db", "", "Database URL")
	flag.Parse()

	if *dbURL == "" {
		*dbURL = os.Getenv("DATABASE_URL")
	}
	if *dbURL == "" {
		log.Fatal("database URL is required: use -db flag or DATABASE_URL env var")
	}

	if err := database.Migrate(*dbURL); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	fmt.Println("migrations applied successfully")
}
