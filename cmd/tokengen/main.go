// Command tokengen mints development session tokens for connecting to a
// local quadchat server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/snigenigmatic/QuadChat/pkg/jwt"
)

func main() {
	var (
		secret = flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret")
		userID = flag.String("user", "", "user ID to embed in the token")
		name   = flag.String("name", "", "display name")
		email  = flag.String("email", "", "email address")
		ttl    = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		issuer = flag.String("issuer", "quadchat", "token issuer")
	)
	flag.Parse()

	if *secret == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -secret <secret> -user <id> [-name <name>] [-email <email>]")
		os.Exit(2)
	}

	manager := jwt.NewManager(*secret, *ttl, *issuer)
	token, err := manager.Generate(*userID, *name, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
