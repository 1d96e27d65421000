// Command shopadmin runs one-off maintenance tasks against the shop database.
//
//	shopadmin add-admin -username root -password 'S3cret!pass'
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"beecommerce/internal/auth"
	"beecommerce/internal/config"
	"beecommerce/internal/repos"
	"beecommerce/internal/services"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: shopadmin add-admin -username NAME -password PASS")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "add-admin":
		addAdmin(os.Args[2:])
	default:
		usage()
	}
}

func addAdmin(args []string) {
	fs := flag.NewFlagSet("add-admin", flag.ExitOnError)
	username := fs.String("username", "", "admin username")
	password := fs.String("password", "", "password for a new account")
	_ = fs.Parse(args)
	if *username == "" || *password == "" {
		usage()
	}

	cfg := config.Load()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	svc := services.NewAuthService(db, auth.NewTokens(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL))
	u, err := svc.EnsureAdmin(context.Background(), *username, *password)
	if err != nil {
		log.Fatalf("add-admin: %v", err)
	}
	fmt.Printf("admin %s (%s) ready\n", u.Username, u.ID)
}
