package main

import (
	"flag"
	"fmt"
	"os"
	"telemed-service/internal/app/config"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/utils"
	"time"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

// Mints a bearer token for local testing against the API. Tokens are
// normally issued by the auth service using the same JWT_SECRET.
func main() {
	userID := flag.String("user", "", "user id (mongo object id hex)")
	role := flag.String("role", constvars.RolePatient, "role claim: patient, doctor or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	fmt.Printf("Version: %s\n", Version)
	fmt.Printf("Tag: %s\n", Tag)

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	internalConfig := config.NewInternalConfig()
	token, err := utils.GenerateSessionJWT(*userID, *role, internalConfig.JWT.Secret, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
