// token-mock mints signed bearer tokens for exercising the API locally,
// standing in for the identity provider.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	var (
		secret   = flag.String("secret", "", "HS256 signing secret (must match the server's JWT_SECRET)")
		sub      = flag.String("sub", "user-1", "subject id")
		username = flag.String("username", "", "username claim")
		email    = flag.String("email", "", "email claim")
		groups   = flag.String("groups", "", "comma-separated group memberships, e.g. Admin")
		ttl      = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	if *secret == "" {
		log.Fatal("-secret is required")
	}

	claims := jwt.MapClaims{
		"sub": *sub,
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(*ttl)),
	}
	if *username != "" {
		claims["username"] = *username
	}
	if *email != "" {
		claims["email"] = *email
	}
	if *groups != "" {
		var list []string
		for _, g := range strings.Split(*groups, ",") {
			if g = strings.TrimSpace(g); g != "" {
				list = append(list, g)
			}
		}
		claims["groups"] = list
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
