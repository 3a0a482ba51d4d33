// Command issue-token prints a bearer token for a user, for local testing
// of the authenticated endpoints.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/corray333/littlelemon/pkg/auth"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load("./.env")

	flags := pflag.NewFlagSet("issue-token", pflag.ExitOnError)
	flags.Int64("user-id", 0, "id of the user the token is issued for")
	flags.String("username", "", "username stored in the token claims")
	flags.Duration("ttl", time.Hour, "token lifetime")
	flags.String("issuer", "", "token issuer, must match auth.issuer of the server")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fail(err)
	}

	if err := viper.BindPFlags(flags); err != nil {
		fail(err)
	}

	userID := viper.GetInt64("user-id")
	if userID <= 0 {
		fail(fmt.Errorf("--user-id must be a positive integer"))
	}

	secret := os.Getenv("LITTLELEMON_JWT_SECRET")
	if secret == "" {
		fail(fmt.Errorf("LITTLELEMON_JWT_SECRET is not set"))
	}

	token, err := auth.NewAuthenticator(secret, viper.GetString("issuer")).
		Issue(userID, viper.GetString("username"), viper.GetDuration("ttl"))
	if err != nil {
		fail(err)
	}

	fmt.Println(token)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "issue-token:", err)
	os.Exit(1)
}
