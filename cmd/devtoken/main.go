// Command devtoken prints an access token signed with JWT_SECRET, for
// calling the authenticated endpoints without the auth service.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-feed/internal/auth"
	"github.com/iliyamo/event-feed/internal/middleware"
)

func main() {
	sub := flag.String("sub", "", "profile id to put in the token subject (required)")
	role := flag.String("role", middleware.RoleAuthenticated, "role claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if *sub == "" {
		flag.Usage()
		os.Exit(2)
	}

	tok, err := auth.NewAccessToken(secret, *sub, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
}
