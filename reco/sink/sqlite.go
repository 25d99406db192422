package sink

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/signature-reco/signature-reco/reco"
)

// DefaultBatchSize is the number of records committed per transaction.
const DefaultBatchSize = 256

// schema.sql defines one table per record section keyed by (run_id, idx).
//
//go:embed schema.sql
var schemaSQL string

const (
	insertEvent    = `INSERT INTO events (run_id, idx, run, subrun, event, error, pv_x, pv_y, pv_z) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertPresence = `INSERT INTO presence (run_id, idx, pdg, found) VALUES (?, ?, ?, ?)`
	insertSig      = `INSERT INTO signatures (run_id, idx, name, found, chain, root_track_id, root_pdg, root_energy, root_px, root_py, root_pz, root_process, root_end_process, dv_x, dv_y, dv_z, decay_length) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertDaughter = `INSERT INTO daughters (run_id, idx, signature, slot, track_id, pdg, energy, px, py, pz, process, end_process, phi, impact_parameter, n_elastic, n_inelastic, end_state) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertObject   = `INSERT INTO objects (run_id, idx, object_id, separation, phi, perp_offset, n_segments) VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertSegment  = `INSERT INTO segments (run_id, idx, class, start_point, end_point, length) VALUES (?, ?, ?, ?, ?, ?)`
)

// SQLiteWriter stores records in a SQLite database, committing every
// BatchSize records.
type SQLiteWriter struct {
	DB        *sql.DB
	BatchSize int

	tx      *sql.Tx
	pending int
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite sink: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	logrus.Debugf("sqlite sink initialized at %s", path)
	return &SQLiteWriter{DB: db, BatchSize: DefaultBatchSize}, nil
}

// Write implements Writer.
func (w *SQLiteWriter) Write(rec *reco.EventRecord) error {
	if w.tx == nil {
		tx, err := w.DB.Begin()
		if err != nil {
			return fmt.Errorf("beginning sqlite batch: %w", err)
		}
		w.tx = tx
	}
	if err := insertRecord(w.tx, rec); err != nil {
		w.tx.Rollback()
		w.tx, w.pending = nil, 0
		return fmt.Errorf("storing record %d: %w", rec.Index, err)
	}
	w.pending++
	if w.pending >= w.BatchSize {
		return w.commit()
	}
	return nil
}

func (w *SQLiteWriter) commit() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx, w.pending = nil, 0
	if err != nil {
		return fmt.Errorf("committing sqlite batch: %w", err)
	}
	return nil
}

// Close commits the open batch and closes the database.
func (w *SQLiteWriter) Close() error {
	if err := w.commit(); err != nil {
		w.DB.Close()
		return err
	}
	return w.DB.Close()
}

func insertRecord(tx *sql.Tx, rec *reco.EventRecord) error {
	pv := rec.PrimaryVertex
	if _, err := tx.Exec(insertEvent, rec.RunID, rec.Index, rec.Run, rec.Subrun, rec.Event, rec.Error, pv.X, pv.Y, pv.Z); err != nil {
		return fmt.Errorf("event row: %w", err)
	}
	for _, p := range rec.Presence {
		if _, err := tx.Exec(insertPresence, rec.RunID, rec.Index, p.PDG, p.Found); err != nil {
			return fmt.Errorf("presence row: %w", err)
		}
	}
	for _, s := range rec.Signatures {
		r, dv := s.Root, s.DecayVertex
		if _, err := tx.Exec(insertSig, rec.RunID, rec.Index, s.Name, s.Found, joinIDs(s.Chain),
			r.TrackID, r.PDG, r.Energy, r.Px, r.Py, r.Pz, r.Process, r.EndProcess,
			dv.X, dv.Y, dv.Z, s.DecayLength); err != nil {
			return fmt.Errorf("signature row %s: %w", s.Name, err)
		}
		for slot, d := range s.Daughters {
			if _, err := tx.Exec(insertDaughter, rec.RunID, rec.Index, s.Name, slot,
				d.TrackID, d.PDG, d.Energy, d.Px, d.Py, d.Pz, d.Process, d.EndProcess,
				d.Phi, d.ImpactParameter, d.Elastic, d.Inelastic, d.EndState); err != nil {
				return fmt.Errorf("daughter row %s/%d: %w", s.Name, slot, err)
			}
		}
	}
	for _, o := range rec.Objects {
		if _, err := tx.Exec(insertObject, rec.RunID, rec.Index, o.ID, o.Separation, o.Phi, o.Offset, o.Segments); err != nil {
			return fmt.Errorf("object row %d: %w", o.ID, err)
		}
	}
	for _, s := range rec.Segments {
		if _, err := tx.Exec(insertSegment, rec.RunID, rec.Index, s.Class, s.Start, s.End, s.Length); err != nil {
			return fmt.Errorf("segment row: %w", err)
		}
	}
	return nil
}

// joinIDs renders a chain as space separated track ids, root first.
func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
