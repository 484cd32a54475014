// Command tokenctl mints an admin bearer token. Editor accounts are
// provisioned out of band; this is the out-of-band part.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/config"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/jwt"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	editor := flag.String("editor", "", "Editor ID to embed in the token")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "Token lifetime")
	flag.Parse()

	if *editor == "" {
		fmt.Fprintln(os.Stderr, "tokenctl: -editor is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokenctl:", err)
		os.Exit(1)
	}
	jwt.SetSecret(cfg.JWTSecret)

	token, err := jwt.Sign(*editor, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokenctl:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
