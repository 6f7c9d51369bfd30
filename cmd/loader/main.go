// Command loader handles the offline data chores: importing the catalog,
// historical transactions and customer profiles from CSV exports,
// registering model artifacts, and maintaining staff/test accounts.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/auroramart/storefront/internal/config"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: loader <command> [flags]

commands:
  catalog       import products, categories and subcategories from CSV
  transactions  import historical basket transactions from CSV
  profiles      import customer demographic profiles from CSV
  models        register model artifacts for tracking
  staff         ensure an admin account exists
  cleanup       list or delete test user accounts`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	var cmdErr error
	switch os.Args[1] {
	case "catalog":
		cmdErr = runCatalog(db, os.Args[2:])
	case "transactions":
		cmdErr = runTransactions(db, os.Args[2:])
	case "profiles":
		cmdErr = runProfiles(db, os.Args[2:])
	case "models":
		cmdErr = runModels(db, os.Args[2:])
	case "staff":
		cmdErr = runStaff(db, os.Args[2:])
	case "cleanup":
		cmdErr = runCleanup(db, os.Args[2:])
	default:
		usage()
	}

	if cmdErr != nil {
		log.Fatal(cmdErr)
	}
}
