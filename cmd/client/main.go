package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/atinyakov/portfolio-api/internal/client"
)

var (
	version   string
	buildDate string
)

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio-token"
	}
	return filepath.Join(home, ".portfolio-token")
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// main parses command-line flags and dispatches to a single API command.
func main() {
	var (
		cmd       string
		baseURL   string
		caFile    string
		tokenFile string
		profileID string
		showVer   bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: signup | login | logout | profile | projects | contact")
	flag.StringVar(&baseURL, "url", "https://localhost:3001/portfolio-api", "API base URL")
	flag.StringVar(&caFile, "ca", "certs/ca.crt", "path to CA cert, empty for system roots")
	flag.StringVar(&tokenFile, "token-file", defaultTokenFile(), "where the access token is kept")
	flag.StringVar(&profileID, "profile", "", "profile id for profile, projects and contact")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Portfolio API Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	c, err := client.New(baseURL, caFile, client.NewTokenStore(tokenFile))
	if err != nil {
		log.Fatal(err)
	}
	prompt := client.NewPrompter(os.Stdin, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	requireProfile := func() {
		if profileID == "" {
			log.Fatalf("please provide -profile=<id> for %s", cmd)
		}
	}

	switch cmd {
	case "signup":
		user, err := c.Signup(ctx, prompt.Signup())
		if err != nil {
			log.Fatal(err)
		}
		printJSON(user)
	case "login":
		email, password := prompt.Login()
		if err := c.Login(ctx, email, password); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Logged in. Token saved to", tokenFile)
	case "logout":
		if err := c.Logout(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Logged out")
	case "profile":
		requireProfile()
		p, err := c.Profile(ctx, profileID)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(p)
	case "projects":
		requireProfile()
		projects, err := c.Projects(ctx, profileID)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(projects)
	case "contact":
		requireProfile()
		msg, err := c.Contact(ctx, prompt.Contact(profileID))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(msg)
	default:
		log.Fatalf("unknown command: %q", cmd)
	}
}
