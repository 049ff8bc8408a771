package main

import (
	"fmt"
	"log"
	"os"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/database"
	"github.com/customeros/warmup/internal/repository"
	"github.com/customeros/warmup/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("config initialization failed: %v", err)
	}

	db, err := database.NewConnection(cfg.Store)
	if err != nil {
		log.Fatalf("database initialization failed: %v", err)
	}

	switch os.Args[1] {
	case "migrate":
		if err := repository.MigrateDB(db); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		log.Println("database migration completed successfully")

	case "server":
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("warmupd starting up...")

		srv, err := server.NewServer(cfg, db)
		if err != nil {
			log.Fatalf("server setup failed: %v", err)
		}
		if err := srv.Run(); err != nil {
			log.Fatalf("server startup failed: %v", err)
		}
		log.Println("shutdown complete")

	default:
		fmt.Printf("unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: warmupd <command>")
	fmt.Println("Commands:")
	fmt.Println("  migrate   Run database migrations")
	fmt.Println("  server    Start the application server")
}
