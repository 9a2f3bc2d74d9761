// Package main is the entry point for the repometrics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/repometrics/cmd"
	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; GITLAB_TOKEN and friends may come from the shell.
	_ = godotenv.Load()

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
