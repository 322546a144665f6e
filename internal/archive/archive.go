/*
Copyright © 2024 the WheatN authors.
This file is part of WheatN.

WheatN is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WheatN is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WheatN.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package archive stores the results of WheatN runs in a SQLite
// database so that runs with different configurations can be compared.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spatialmodel/wheatn"

	_ "modernc.org/sqlite" // database driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created     TEXT NOT NULL,
	config_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS production (
	run_id        INTEGER NOT NULL REFERENCES runs(id),
	country       TEXT NOT NULL,
	production_mt REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS nitrogen (
	run_id        INTEGER NOT NULL REFERENCES runs(id),
	country       TEXT NOT NULL,
	production_mt REAL NOT NULL,
	nue           REAL NOT NULL,
	output_mt     REAL NOT NULL,
	input_mt      REAL NOT NULL,
	loss_mt       REAL NOT NULL
);`

// Archive is a SQLite database of run results.
type Archive struct {
	db *sql.DB

	// now returns the time a run is saved.
	now func() time.Time
}

// Open opens the archive in file, creating it if it does not exist.
func Open(file string) (*Archive, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %v", file, err)
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{"PRAGMA foreign_keys=ON", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("archive: initializing %s: %v", file, err)
		}
	}
	return &Archive{db: db, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error { return a.db.Close() }

// Save stores production by country and the nitrogen balance in a new
// run and returns the run's id. Either everything is stored or nothing
// is.
func (a *Archive) Save(configHash string, production wheatn.CountryTable, nitrogen []wheatn.NitrogenRecord) (int64, error) {
	tx, err := a.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("archive: %v", err)
	}
	id, err := save(tx, a.now().UTC().Format(time.RFC3339), configHash, production, nitrogen)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("archive: saving run: %v", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("archive: saving run: %v", err)
	}
	return id, nil
}

func save(tx *sql.Tx, created, configHash string, production wheatn.CountryTable, nitrogen []wheatn.NitrogenRecord) (int64, error) {
	res, err := tx.Exec(`INSERT INTO runs (created, config_hash) VALUES (?, ?)`, created, configHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, p := range production {
		_, err := tx.Exec(`INSERT INTO production (run_id, country, production_mt) VALUES (?, ?, ?)`,
			id, p.Country, p.Value)
		if err != nil {
			return 0, err
		}
	}
	for _, n := range nitrogen {
		_, err := tx.Exec(`INSERT INTO nitrogen (run_id, country, production_mt, nue, output_mt, input_mt, loss_mt)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, n.Country, n.Production, n.NUE, n.Output, n.Input, n.Loss)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

// Run is a stored run.
type Run struct {
	ID         int64
	Created    time.Time
	ConfigHash string
}

// Runs returns the stored runs, oldest first.
func (a *Archive) Runs() ([]Run, error) {
	rows, err := a.db.Query(`SELECT id, created, config_hash FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("archive: listing runs: %v", err)
	}
	defer rows.Close()
	var o []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.ConfigHash); err != nil {
			return nil, fmt.Errorf("archive: listing runs: %v", err)
		}
		if r.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("archive: run %d: %v", r.ID, err)
		}
		o = append(o, r)
	}
	return o, rows.Err()
}

// Production returns the production by country stored for a run.
func (a *Archive) Production(runID int64) (wheatn.CountryTable, error) {
	rows, err := a.db.Query(`SELECT country, production_mt FROM production WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("archive: reading production for run %d: %v", runID, err)
	}
	defer rows.Close()
	var o wheatn.CountryTable
	for rows.Next() {
		var c wheatn.CountryValue
		if err := rows.Scan(&c.Country, &c.Value); err != nil {
			return nil, fmt.Errorf("archive: reading production for run %d: %v", runID, err)
		}
		o = append(o, c)
	}
	return o, rows.Err()
}

// Nitrogen returns the nitrogen balance stored for a run.
func (a *Archive) Nitrogen(runID int64) ([]wheatn.NitrogenRecord, error) {
	rows, err := a.db.Query(`SELECT country, production_mt, nue, output_mt, input_mt, loss_mt
		FROM nitrogen WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("archive: reading nitrogen for run %d: %v", runID, err)
	}
	defer rows.Close()
	var o []wheatn.NitrogenRecord
	for rows.Next() {
		var n wheatn.NitrogenRecord
		if err := rows.Scan(&n.Country, &n.Production, &n.NUE, &n.Output, &n.Input, &n.Loss); err != nil {
			return nil, fmt.Errorf("archive: reading nitrogen for run %d: %v", runID, err)
		}
		o = append(o, n)
	}
	return o, rows.Err()
}
