// Command migrate applies or rolls back the task schema.
//
//	go run ./cmd/migrate [up|down|status|version]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/annie987/todo/internal/config"
	"github.com/annie987/todo/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status|version]\n", os.Args[0])
	}
	flag.Parse()
	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.PG.DSN)
	if err != nil {
		log.Fatalf("goose open db: %v", err)
	}
	defer db.Close()

	switch cmd {
	case "up":
		err = migrations.Up(db)
	case "down":
		err = migrations.Down(db)
	case "status":
		err = migrations.Status(db)
	case "version":
		var v int64
		v, err = migrations.Version(db)
		if err == nil {
			fmt.Println(v)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", cmd, err)
	}
}
