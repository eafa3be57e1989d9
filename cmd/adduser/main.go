// Command adduser creates a dashboard administrator, or resets the password
// of an existing one.
//
//	adduser -db-url intake.sqlite -username alice -password s3cret
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/mbolis/assistance-intake/database"
	"github.com/mbolis/assistance-intake/httpx"
	"github.com/mbolis/assistance-intake/log"
)

func main() {
	_ = godotenv.Load()

	dbUrl := flag.String("db-url", envOr("INTAKE_DB_URL", "intake.sqlite"), "path to SQLite3 DB file")
	username := flag.String("username", "", "administrator user name")
	password := flag.String("password", "", "administrator password")
	roles := flag.String("roles", "admin", "comma separated roles")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := database.Open(*dbUrl)
	if err != nil {
		log.Fatal("adduser.db.open:", err)
	}
	defer db.Close()

	hash, err := httpx.HashPassword(*password)
	if err != nil {
		log.Fatal("adduser.hash:", err)
	}

	_, err = db.Exec(`
		INSERT INTO user (username, password_hash, roles) VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			roles = excluded.roles`,
		*username,
		hash,
		*roles,
	)
	if err != nil {
		log.Fatal("adduser.insert:", err)
	}

	log.Infof("User %s saved with roles %q", *username, *roles)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
