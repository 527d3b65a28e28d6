package cache

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS media_cache (
			remote_uri TEXT PRIMARY KEY,
			local_uri TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			stored_at INTEGER NOT NULL,
			accessed_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_media_cache_accessed_at ON media_cache(accessed_at);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
