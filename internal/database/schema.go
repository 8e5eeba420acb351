package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// schema creates the three catalog tables.  Constraint names match the
// ones the application reports in duplicate-entry errors.  Tables use a
// binary collation so unique keys and lookups compare names and titles
// exactly: "Tom" and "tom" are different actors.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS actors (
		id         CHAR(36)    NOT NULL,
		first_name VARCHAR(20) NOT NULL,
		last_name  VARCHAR(25) NOT NULL,
		age        INT         NOT NULL,
		PRIMARY KEY (id),
		CONSTRAINT unique_actor UNIQUE (first_name, last_name, age),
		CONSTRAINT check_length_fname CHECK (CHAR_LENGTH(first_name) < 20),
		CONSTRAINT check_length_lname CHECK (CHAR_LENGTH(last_name) < 25),
		CONSTRAINT check_age CHECK (age > 0 AND age < 101)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
	`CREATE TABLE IF NOT EXISTS films (
		id          CHAR(36)     NOT NULL,
		title       VARCHAR(20)  NOT NULL,
		description VARCHAR(500) NOT NULL,
		year        INT          NOT NULL,
		PRIMARY KEY (id),
		CONSTRAINT unique_film UNIQUE (title, year),
		CONSTRAINT check_length_title CHECK (CHAR_LENGTH(title) < 20),
		CONSTRAINT check_length_description CHECK (CHAR_LENGTH(description) < 500),
		CONSTRAINT check_year CHECK (year > 1900 AND year < 2030)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
	`CREATE TABLE IF NOT EXISTS film_actors (
		id       CHAR(36) NOT NULL,
		film_id  CHAR(36) NOT NULL,
		actor_id CHAR(36) NOT NULL,
		PRIMARY KEY (id),
		CONSTRAINT film_actor_combines_unique UNIQUE (film_id, actor_id),
		CONSTRAINT fk_film_actors_film FOREIGN KEY (film_id) REFERENCES films (id),
		CONSTRAINT fk_film_actors_actor FOREIGN KEY (actor_id) REFERENCES actors (id),
		KEY idx_film_actors_actor (actor_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
}

// dropOrder lists the tables children first so foreign keys never block.
var dropOrder = []string{"film_actors", "films", "actors"}

// Migrate creates the catalog tables.  When reset is true every catalog
// table is dropped first.
func Migrate(ctx context.Context, db *sql.DB, reset bool, log *zap.Logger) error {
	if reset {
		log.Info("dropping catalog tables")
		for _, table := range dropOrder {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("drop %s: %w", table, err)
			}
		}
	}
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	log.Info("schema is up to date", zap.Int("statements", len(schema)))
	return nil
}
