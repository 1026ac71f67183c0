// Command twofactorctl is the offline operator tool for the twofactor service:
// it prints grid cards, checks printed keys and mints service tokens.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
