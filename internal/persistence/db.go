// Package persistence provides SQLite-based campaign state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/voryn/starfront/internal/campaign"
)

// DB wraps a SQLite connection for campaign state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS depots (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		supplies_json TEXT NOT NULL,
		units_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shipments (
		id TEXT PRIMARY KEY,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		days_remaining INTEGER NOT NULL,
		total_days INTEGER NOT NULL,
		interdicted INTEGER NOT NULL,
		interdiction_loss_pct REAL NOT NULL,
		supplies_json TEXT NOT NULL,
		units_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT NOT NULL,
		facility TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload_json TEXT NOT NULL,
		PRIMARY KEY (facility, position)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCampaign performs a full save of the campaign envelope.
func (db *DB) SaveCampaign(sg campaign.SaveGame) error {
	slog.Info("saving campaign state",
		"day", sg.Day,
		"depots", len(sg.Depots),
		"shipments", len(sg.Shipments),
	)

	if err := db.saveDepots(sg.Depots); err != nil {
		return fmt.Errorf("save depots: %w", err)
	}
	if err := db.saveShipments(sg.Shipments); err != nil {
		return fmt.Errorf("save shipments: %w", err)
	}
	if err := db.saveJobs(sg.FactoryQueue, sg.BarracksQueue); err != nil {
		return fmt.Errorf("save jobs: %w", err)
	}
	if err := db.saveMetaBlobs(sg); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("campaign state saved")
	return nil
}

func (db *DB) saveDepots(depots []campaign.Depot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM depots"); err != nil {
		return err
	}

	for _, d := range depots {
		suppliesJSON, _ := json.Marshal(d.Supplies)
		unitsJSON, _ := json.Marshal(d.Units)
		_, err := tx.Exec(
			"INSERT INTO depots (id, label, supplies_json, units_json) VALUES (?, ?, ?, ?)",
			d.ID, d.Label, string(suppliesJSON), string(unitsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert depot %s: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) saveShipments(shipments []campaign.Shipment) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shipments"); err != nil {
		return err
	}

	for _, sh := range shipments {
		suppliesJSON, _ := json.Marshal(sh.Supplies)
		unitsJSON, _ := json.Marshal(sh.Units)

		interdicted := 0
		if sh.Interdicted {
			interdicted = 1
		}

		_, err := tx.Exec(`INSERT INTO shipments
			(id, origin, destination, days_remaining, total_days, interdicted,
			 interdiction_loss_pct, supplies_json, units_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sh.ID, sh.Origin, sh.Destination, sh.DaysRemaining, sh.TotalDays,
			interdicted, sh.InterdictionLossPct, string(suppliesJSON), string(unitsJSON),
		)
		if err != nil {
			return fmt.Errorf("insert shipment %s: %w", sh.ID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) saveJobs(factory []campaign.ProductionJob, barracks []campaign.BarracksJob) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM jobs"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO jobs (id, facility, position, payload_json) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, j := range factory {
		payload, _ := json.Marshal(j)
		if _, err := stmt.Exec(j.ID, "factory", i, string(payload)); err != nil {
			return fmt.Errorf("insert factory job %s: %w", j.ID, err)
		}
	}
	for i, j := range barracks {
		payload, _ := json.Marshal(j)
		if _, err := stmt.Exec(j.ID, "barracks", i, string(payload)); err != nil {
			return fmt.Errorf("insert barracks job %s: %w", j.ID, err)
		}
	}

	return tx.Commit()
}

// saveMetaBlobs stores the scalar state and the nested structures that do not
// warrant their own tables as JSON values in campaign_meta.
func (db *DB) saveMetaBlobs(sg campaign.SaveGame) error {
	blobs := map[string]any{
		"task_force":  sg.TaskForce,
		"planet":      sg.Planet,
		"operation":   sg.Operation,
		"last_aar":    sg.LastAAR,
		"transit_log": sg.TransitLog,
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	put := func(key, value string) error {
		_, err := tx.Exec("INSERT OR REPLACE INTO campaign_meta (key, value) VALUES (?, ?)", key, value)
		return err
	}

	for key, v := range blobs {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if err := put(key, string(raw)); err != nil {
			return err
		}
	}

	scalars := map[string]string{
		"day":            strconv.Itoa(sg.Day),
		"version":        strconv.FormatUint(sg.Version, 10),
		"action_points":  strconv.Itoa(sg.ActionPoints),
		"factory_count":  strconv.Itoa(sg.FactoryCount),
		"barracks_count": strconv.Itoa(sg.BarracksCount),
	}
	for key, value := range scalars {
		if err := put(key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the archive. The caller tracks how many it
// has already archived; pass only the new tail.
func (db *DB) SaveEvents(events []campaign.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (day, description, category) VALUES (?, ?, ?)",
			e.Day, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// EventCount returns the number of archived events.
func (db *DB) EventCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM events")
	return n, err
}

// RecentEvents returns the most recent N archived events, newest first.
func (db *DB) RecentEvents(limit int) ([]campaign.Event, error) {
	var events []campaign.Event
	err := db.conn.Select(&events,
		"SELECT day, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// LoadCampaign reassembles the saved envelope. Returns false with no error
// when the database holds no campaign yet.
func (db *DB) LoadCampaign() (campaign.SaveGame, bool, error) {
	var sg campaign.SaveGame

	day, err := db.getMeta("day")
	if errors.Is(err, sql.ErrNoRows) {
		return sg, false, nil
	}
	if err != nil {
		return sg, false, fmt.Errorf("load meta: %w", err)
	}
	sg.Day, _ = strconv.Atoi(day)

	if v, err := db.getMeta("version"); err == nil {
		sg.Version, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, err := db.getMeta("action_points"); err == nil {
		sg.ActionPoints, _ = strconv.Atoi(v)
	}
	if v, err := db.getMeta("factory_count"); err == nil {
		sg.FactoryCount, _ = strconv.Atoi(v)
	}
	if v, err := db.getMeta("barracks_count"); err == nil {
		sg.BarracksCount, _ = strconv.Atoi(v)
	}

	if err := db.getMetaJSON("task_force", &sg.TaskForce); err != nil {
		return sg, false, err
	}
	if err := db.getMetaJSON("planet", &sg.Planet); err != nil {
		return sg, false, err
	}
	if err := db.getMetaJSON("operation", &sg.Operation); err != nil {
		return sg, false, err
	}
	if err := db.getMetaJSON("last_aar", &sg.LastAAR); err != nil {
		return sg, false, err
	}
	if err := db.getMetaJSON("transit_log", &sg.TransitLog); err != nil {
		return sg, false, err
	}

	if err := db.loadDepots(&sg); err != nil {
		return sg, false, fmt.Errorf("load depots: %w", err)
	}
	if err := db.loadShipments(&sg); err != nil {
		return sg, false, fmt.Errorf("load shipments: %w", err)
	}
	if err := db.loadJobs(&sg); err != nil {
		return sg, false, fmt.Errorf("load jobs: %w", err)
	}

	recent, err := db.RecentEvents(1000)
	if err != nil {
		return sg, false, fmt.Errorf("load events: %w", err)
	}
	// Oldest first in memory.
	for i := len(recent) - 1; i >= 0; i-- {
		sg.Events = append(sg.Events, recent[i])
	}

	slog.Info("campaign state loaded", "day", sg.Day, "depots", len(sg.Depots))
	return sg, true, nil
}

type depotRow struct {
	ID           string `db:"id"`
	Label        string `db:"label"`
	SuppliesJSON string `db:"supplies_json"`
	UnitsJSON    string `db:"units_json"`
}

func (db *DB) loadDepots(sg *campaign.SaveGame) error {
	var rows []depotRow
	if err := db.conn.Select(&rows, "SELECT * FROM depots"); err != nil {
		return err
	}
	for _, r := range rows {
		d := campaign.Depot{ID: r.ID, Label: r.Label}
		if err := json.Unmarshal([]byte(r.SuppliesJSON), &d.Supplies); err != nil {
			return fmt.Errorf("depot %s supplies: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.UnitsJSON), &d.Units); err != nil {
			return fmt.Errorf("depot %s units: %w", r.ID, err)
		}
		sg.Depots = append(sg.Depots, d)
	}
	return nil
}

type shipmentRow struct {
	ID            string  `db:"id"`
	Origin        string  `db:"origin"`
	Destination   string  `db:"destination"`
	DaysRemaining int     `db:"days_remaining"`
	TotalDays     int     `db:"total_days"`
	Interdicted   int     `db:"interdicted"`
	LossPct       float64 `db:"interdiction_loss_pct"`
	SuppliesJSON  string  `db:"supplies_json"`
	UnitsJSON     string  `db:"units_json"`
}

func (db *DB) loadShipments(sg *campaign.SaveGame) error {
	var rows []shipmentRow
	if err := db.conn.Select(&rows, "SELECT * FROM shipments"); err != nil {
		return err
	}
	for _, r := range rows {
		sh := campaign.Shipment{
			ID:                  r.ID,
			Origin:              r.Origin,
			Destination:         r.Destination,
			DaysRemaining:       r.DaysRemaining,
			TotalDays:           r.TotalDays,
			Interdicted:         r.Interdicted != 0,
			InterdictionLossPct: r.LossPct,
		}
		if err := json.Unmarshal([]byte(r.SuppliesJSON), &sh.Supplies); err != nil {
			return fmt.Errorf("shipment %s supplies: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.UnitsJSON), &sh.Units); err != nil {
			return fmt.Errorf("shipment %s units: %w", r.ID, err)
		}
		sg.Shipments = append(sg.Shipments, sh)
	}
	return nil
}

type jobRow struct {
	Facility    string `db:"facility"`
	PayloadJSON string `db:"payload_json"`
}

func (db *DB) loadJobs(sg *campaign.SaveGame) error {
	var rows []jobRow
	if err := db.conn.Select(&rows,
		"SELECT facility, payload_json FROM jobs ORDER BY facility, position"); err != nil {
		return err
	}
	for _, r := range rows {
		switch r.Facility {
		case "factory":
			var j campaign.ProductionJob
			if err := json.Unmarshal([]byte(r.PayloadJSON), &j); err != nil {
				return fmt.Errorf("factory job: %w", err)
			}
			sg.FactoryQueue = append(sg.FactoryQueue, j)
		case "barracks":
			var j campaign.BarracksJob
			if err := json.Unmarshal([]byte(r.PayloadJSON), &j); err != nil {
				return fmt.Errorf("barracks job: %w", err)
			}
			sg.BarracksQueue = append(sg.BarracksQueue, j)
		}
	}
	return nil
}

func (db *DB) getMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// getMetaJSON unmarshals a JSON meta value into target; a missing key leaves
// the target at its zero value.
func (db *DB) getMetaJSON(key string, target any) error {
	raw, err := db.getMeta(key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load meta %s: %w", key, err)
	}
	if raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("decode meta %s: %w", key, err)
	}
	return nil
}
