package pawhaven

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS donation_journal (
	key          TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	stage        TEXT NOT NULL,
	campaign_id  TEXT NOT NULL,
	donation_id  TEXT,
	amount       REAL NOT NULL,
	new_total    REAL NOT NULL,
	recorded_at  TIMESTAMP NOT NULL,
	completed_at TIMESTAMP
);
`

func openDatabase() (*sql.DB, error) {
	databaseURL := os.Getenv("DATABASE_URL")

	var driver string

	switch {
	case strings.HasPrefix(databaseURL, "libsql://"):
		driver = "libsql"
	case strings.HasPrefix(databaseURL, "file:"):
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL: %s", databaseURL)
	}

	db, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("encountered an error connecting to the database: %s", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("encountered an error preparing the local schema: %s", err)
	}

	return db, nil
}
