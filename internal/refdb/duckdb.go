package refdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// IsDuckDB reports whether a reference path names a converted DuckDB
// file rather than a reference directory.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}

const referenceSchema = `
	CREATE TABLE IF NOT EXISTS alleles (
		locus VARCHAR,
		allele VARCHAR,
		sequence VARCHAR,
		PRIMARY KEY (locus, allele)
	);

	CREATE TABLE IF NOT EXISTS profiles (
		st VARCHAR PRIMARY KEY,
		flaa VARCHAR,
		pile VARCHAR,
		asd VARCHAR,
		mip VARCHAR,
		momps VARCHAR,
		proa VARCHAR,
		neua_neuah VARCHAR
	);
`

// SaveDuckDB writes a loaded database to a DuckDB file using the
// Appender API, for distribution and faster reloads.
func SaveDuckDB(db *Database, path string) error {
	sqldb, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer sqldb.Close()

	if _, err := sqldb.Exec(referenceSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	conn, err := sqldb.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := appendRows(conn, "alleles", func(a *goduckdb.Appender) error {
		for _, locus := range sbt.Loci() {
			for _, allele := range db.Alleles(locus) {
				if err := a.AppendRow(string(locus), allele.ID, allele.Sequence); err != nil {
					return fmt.Errorf("append allele %s_%s: %w", locus, allele.ID, err)
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return appendRows(conn, "profiles", func(a *goduckdb.Appender) error {
		for _, p := range db.Profiles() {
			if err := a.AppendRow(p.ST,
				p.Profile[0], p.Profile[1], p.Profile[2], p.Profile[3],
				p.Profile[4], p.Profile[5], p.Profile[6]); err != nil {
				return fmt.Errorf("append ST %s: %w", p.ST, err)
			}
		}
		return nil
	})
}

// appendRows runs fn with an appender on one table, flushing on success.
func appendRows(conn *sql.Conn, table string, fn func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// LoadDuckDB reads a converted reference database back into the
// in-memory index.
func LoadDuckDB(path string) (*Database, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reference database: %w", err)
	}

	sqldb, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer sqldb.Close()

	db := New()
	if err := loadDuckDBAlleles(sqldb, db); err != nil {
		return nil, err
	}
	if err := loadDuckDBProfiles(sqldb, db); err != nil {
		return nil, err
	}
	return db, nil
}

func loadDuckDBAlleles(sqldb *sql.DB, db *Database) error {
	rows, err := sqldb.Query("SELECT locus, allele, sequence FROM alleles")
	if err != nil {
		return fmt.Errorf("query alleles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var locus, allele, sequence string
		if err := rows.Scan(&locus, &allele, &sequence); err != nil {
			return fmt.Errorf("scan allele: %w", err)
		}
		if err := db.AddAllele(sbt.Locus(locus), allele, sequence); err != nil {
			return err
		}
	}
	return rows.Err()
}

func loadDuckDBProfiles(sqldb *sql.DB, db *Database) error {
	rows, err := sqldb.Query(`
		SELECT st, flaa, pile, asd, mip, momps, proa, neua_neuah
		FROM profiles
	`)
	if err != nil {
		return fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st string
		var p sbt.Profile
		if err := rows.Scan(&st, &p[0], &p[1], &p[2], &p[3], &p[4], &p[5], &p[6]); err != nil {
			return fmt.Errorf("scan profile: %w", err)
		}
		if err := db.AddProfile(st, p); err != nil {
			return err
		}
	}
	return rows.Err()
}
