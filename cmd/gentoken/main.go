// Command gentoken signs an administrator access token with the server's
// JWT settings, for load tests and manual API calls in development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Togather-Foundation/planner/internal/auth"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		subject  = flag.String("subject", "", "user ID of the administrator (required)")
		username = flag.String("username", "admin", "username claim")
		issuer   = flag.String("issuer", envOr("JWT_ISSUER", "togather-planner"), "token issuer; must match the server")
		expiry   = flag.Duration("expiry", time.Hour, "token lifetime")
		baseURL  = flag.String("url", "http://localhost:8080", "server URL used in the example command")
	)
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: JWT_SECRET must be set")
		os.Exit(1)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "Error: -subject is required (the administrator's user ID)")
		os.Exit(2)
	}

	token, expiresAt, err := auth.NewJWTManager(secret, *expiry, *issuer).Generate(*subject, *username, auth.RoleAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("JWT Token:")
	fmt.Println(token)
	fmt.Printf("\nExpires: %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println("\nTest with:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' %s/api/auth/me\n", token, *baseURL)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
