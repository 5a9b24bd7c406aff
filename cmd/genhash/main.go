// cmd/genhash/main.go — prints the password hash for a given plaintext.
// Usage: go run cmd/genhash/main.go <password>
package main

import (
	"fmt"
	"os"

	"github.com/HD3-run/Rcommitra/internal/auth"
)

func main() {
	password := "oms2026"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
