package postgres

import (
	"database/sql"
	"github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal draftstore flow, either at
// initial startup or from an external tool.

// Documents and autosave snapshots draw their IDs from the shared
// object_ids sequence, so a snapshot ID never collides with a
// document ID.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "001_initial_schema",
			Up: []string{
				`CREATE TABLE collection (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR UNIQUE NOT NULL
				)`,
				`CREATE SEQUENCE object_ids`,
				`CREATE TABLE document (
					id BIGINT PRIMARY KEY DEFAULT nextval('object_ids'),
					collection_id BIGINT NOT NULL
						REFERENCES collection(id) ON DELETE CASCADE,
					fields BYTEA,
					status VARCHAR NOT NULL DEFAULT 'draft',
					created TIMESTAMP WITH TIME ZONE NOT NULL,
					modified TIMESTAMP WITH TIME ZONE NOT NULL
				)`,
				`CREATE INDEX document_in_collection
					ON document(collection_id)`,
				`CREATE TABLE autosave (
					id BIGINT PRIMARY KEY DEFAULT nextval('object_ids'),
					document_id BIGINT NOT NULL
						REFERENCES document(id) ON DELETE CASCADE,
					author VARCHAR NOT NULL,
					fields BYTEA,
					payload BYTEA,
					created TIMESTAMP WITH TIME ZONE NOT NULL,
					modified TIMESTAMP WITH TIME ZONE NOT NULL,
					CONSTRAINT autosave_unique_author
						UNIQUE (document_id, author)
				)`,
				`CREATE INDEX autosave_in_document
					ON autosave(document_id)`,
			},
			Down: []string{
				`DROP TABLE autosave`,
				`DROP TABLE document`,
				`DROP SEQUENCE object_ids`,
				`DROP TABLE collection`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
