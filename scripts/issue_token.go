//go:build ignore

package main

import (
	"flag"
	"fmt"
	"os"

	"marketplace/internal/auth"
	"marketplace/internal/model"

	"github.com/google/uuid"
)

// Prints a bearer token for local testing:
//
//	JWT_SECRET=dev go run scripts/issue_token.go -user <uuid> -role seller
func main() {
	userID := flag.String("user", "", "user id (uuid)")
	role := flag.String("role", "buyer", "buyer, seller or admin")
	issuer := flag.String("issuer", "marketplace", "token issuer")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	id, err := uuid.Parse(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid user id: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewAuthenticator(secret, *issuer).Issue(model.Principal{UserID: id, Role: model.Role(*role)}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
