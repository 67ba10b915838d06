// Package audit archives finished runs into SQLite for offline inspection.
// The archive is write-only from the engine's point of view: nothing in a
// run ever reads it back.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/mendloop/pkg/config"
	"github.com/XiaoConstantine/mendloop/pkg/engine"
	"github.com/XiaoConstantine/mendloop/pkg/errors"
	"github.com/XiaoConstantine/mendloop/pkg/logging"
)

// Archive is a SQLite-backed store of run summaries, traces, and the full
// patch corpus including quarantined entries.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	initialized sync.Once
}

// Open creates or opens an archive at path. Use ":memory:" for an
// in-memory archive in tests.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open audit archive"),
			errors.Fields{"path": path})
	}

	a := &Archive{db: db, path: path}
	if err := a.ensureInitialized(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) ensureInitialized() error {
	var initErr error
	a.initialized.Do(func() {
		if _, err := a.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		schema := `
        CREATE TABLE IF NOT EXISTS runs (
            run_id TEXT PRIMARY KEY,
            seed INTEGER NOT NULL,
            config TEXT NOT NULL,
            total INTEGER NOT NULL,
            ok INTEGER NOT NULL,
            baseline_ok INTEGER NOT NULL,
            patches_created INTEGER NOT NULL,
            patches_active INTEGER NOT NULL,
            patches_quarantined INTEGER NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS traces (
            trace_id TEXT PRIMARY KEY,
            run_id TEXT NOT NULL,
            request TEXT NOT NULL,
            result_label TEXT NOT NULL,
            carrier_label TEXT NOT NULL,
            ok INTEGER NOT NULL,
            baseline_ok INTEGER NOT NULL,
            retrieved_patch_ids TEXT NOT NULL,
            applied_patch_ids TEXT NOT NULL,
            failure_cluster TEXT
        );

        CREATE TABLE IF NOT EXISTS patches (
            patch_id TEXT NOT NULL,
            run_id TEXT NOT NULL,
            trigger_text TEXT NOT NULL,
            status TEXT NOT NULL,
            payload TEXT NOT NULL,
            source_request TEXT NOT NULL,
            PRIMARY KEY (patch_id, run_id)
        );

        CREATE INDEX IF NOT EXISTS idx_traces_run_id ON traces(run_id);
        CREATE INDEX IF NOT EXISTS idx_patches_run_id ON patches(run_id);
        `
		if _, err := a.db.Exec(schema); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize audit schema")
			return
		}
	})
	return initErr
}

// SaveRun writes the run row, every trace, and every stored patch in one
// transaction. Re-saving the same run id replaces its rows.
func (a *Archive) SaveRun(ctx context.Context, result *engine.RunResult, cfg *config.SimulationConfig) error {
	if err := errors.CheckContext(ctx, "audit save"); err != nil {
		return err
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to marshal run config")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin audit transaction")
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.GetLogger().Error(ctx, "failed to rollback audit transaction: %v", err)
		}
	}()

	m := result.Metrics
	_, err = tx.ExecContext(ctx, `
        INSERT INTO runs (run_id, seed, config, total, ok, baseline_ok,
            patches_created, patches_active, patches_quarantined)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            seed = excluded.seed,
            config = excluded.config,
            total = excluded.total,
            ok = excluded.ok,
            baseline_ok = excluded.baseline_ok,
            patches_created = excluded.patches_created,
            patches_active = excluded.patches_active,
            patches_quarantined = excluded.patches_quarantined`,
		result.RunID, result.Seed, string(cfgJSON), m.Total, m.OK, m.BaselineOK,
		m.PatchesCreated, m.PatchesActive, m.PatchesQuarantined)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to save run row"),
			errors.Fields{"run_id": result.RunID})
	}

	traceStmt, err := tx.PrepareContext(ctx, `
        INSERT INTO traces (trace_id, run_id, request, result_label, carrier_label,
            ok, baseline_ok, retrieved_patch_ids, applied_patch_ids, failure_cluster)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(trace_id) DO NOTHING`)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to prepare trace insert")
	}
	defer traceStmt.Close()

	for _, trace := range result.Traces {
		_, err = traceStmt.ExecContext(ctx,
			trace.ID, result.RunID, trace.Request,
			trace.Result.Label(), trace.Feedback.Label(),
			trace.OK, trace.BaselineOK,
			strings.Join(trace.RetrievedPatchIDs, ","),
			strings.Join(trace.AppliedPatchIDs, ","),
			trace.FailureCluster)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.StorageFailed, "failed to save trace row"),
				errors.Fields{"trace_id": trace.ID})
		}
	}

	patchStmt, err := tx.PrepareContext(ctx, `
        INSERT INTO patches (patch_id, run_id, trigger_text, status, payload, source_request)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(patch_id, run_id) DO UPDATE SET
            status = excluded.status,
            payload = excluded.payload`)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to prepare patch insert")
	}
	defer patchStmt.Close()

	for _, patch := range result.Patches {
		_, err = patchStmt.ExecContext(ctx,
			patch.ID, result.RunID, patch.Trigger, string(patch.Status),
			patch.Summary(), patch.SourceRequest)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.StorageFailed, "failed to save patch row"),
				errors.Fields{"patch_id": patch.ID})
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to commit audit transaction")
	}
	return nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	if err := a.db.Close(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to close audit archive")
	}
	return nil
}
