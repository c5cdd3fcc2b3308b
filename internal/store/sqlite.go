package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fleetml"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLite is the production Store, backed by modernc.org/sqlite (no
// cgo). Opening mirrors ployz's infra/sqlite store opener:
// create the parent directory, open, set WAL + a busy timeout so
// concurrent readers don't immediately fail against the single writer.
type SQLite struct {
	db    *sql.DB
	trace bool
}

// Open creates (if absent) and opens the database at path. path may be
// ":memory:" for tests. trace enables per-statement debug logging.
func Open(path string, trace bool) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set journal mode: %w", err)
		}
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	// SQLite's writer lock means a single *sql.DB connection pool entry
	// serializes writers naturally, but the modernc driver multiplexes
	// multiple connections; cap the pool at one so "single-writer" holds
	// even under concurrent readers issuing writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, trace: trace}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) log(query string, args ...any) {
	if s.trace {
		slog.Debug("store query", "sql", query, "args", args)
	}
}

// --- Tasks ---

func (s *SQLite) StoreTaskIns(ctx context.Context, ins fleetml.TaskIns) (string, bool, error) {
	return s.storeTask(ctx, "task_ins", ins)
}

func (s *SQLite) StoreTaskRes(ctx context.Context, res fleetml.TaskRes) (string, bool, error) {
	return s.storeTask(ctx, "task_res", res)
}

func (s *SQLite) storeTask(ctx context.Context, table string, t fleetml.Task) (string, bool, error) {
	if errs := validateTask(t); len(errs) > 0 {
		return "", false, &ErrValidation{Errors: errs}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM run WHERE run_id = ?`, idSint(t.RunID)).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, ErrRunNotFound(t.RunID)
		}
		return "", false, err
	}

	id := uuid.NewString()
	ancestry, err := json.Marshal(t.Ancestry)
	if err != nil {
		return "", false, err
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(task_id, group_id, run_id, producer_anonymous, producer_node_id,
		 consumer_anonymous, consumer_node_id, created_at, delivered_at,
		 pushed_at, ttl, ancestry, task_type, recordset)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, table)
	s.log(query, id)
	_, err = tx.ExecContext(ctx, query,
		id, t.GroupID, idSint(t.RunID),
		boolInt(t.Producer.Anonymous), idSint(t.Producer.NodeID),
		boolInt(t.Consumer.Anonymous), idSint(t.Consumer.NodeID),
		t.CreatedAt, "", t.PushedAt, t.TTL, string(ancestry), t.TaskType, []byte(t.RecordSet),
	)
	if err != nil {
		return "", false, err
	}

	if err := tx.Commit(); err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *SQLite) GetTaskIns(ctx context.Context, nodeID *uint64, limit *int) ([]fleetml.TaskIns, error) {
	if limit != nil && *limit < 1 {
		return nil, ErrInvalidArgument("limit must be >= 1")
	}
	if nodeID != nil && *nodeID == 0 {
		return nil, ErrInvalidArgument("node_id must be non-zero; pass nil for anonymous pull")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	selectQuery := `SELECT task_id, group_id, run_id, producer_anonymous, producer_node_id,
		consumer_anonymous, consumer_node_id, created_at, pushed_at, ttl, ancestry,
		task_type, recordset
		FROM task_ins WHERE delivered_at = '' AND consumer_anonymous = ? AND consumer_node_id = ?`
	anon := nodeID == nil
	cid := uint64(0)
	if nodeID != nil {
		cid = *nodeID
	}
	if limit != nil {
		selectQuery += fmt.Sprintf(" LIMIT %d", *limit)
	}
	s.log(selectQuery, anon, cid)

	rows, err := tx.QueryContext(ctx, selectQuery, boolInt(anon), idSint(cid))
	if err != nil {
		return nil, err
	}
	var out []fleetml.TaskIns
	var ids []string
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, t)
		ids = append(ids, t.TaskID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) > 0 {
		ts := nowISO()
		placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
		args := make([]any, 0, len(ids)+1)
		args = append(args, ts)
		for _, id := range ids {
			args = append(args, id)
		}
		updateQuery := fmt.Sprintf(`UPDATE task_ins SET delivered_at = ? WHERE task_id IN (%s)`, placeholders)
		s.log(updateQuery, args...)
		if _, err := tx.ExecContext(ctx, updateQuery, args...); err != nil {
			return nil, err
		}
		for i := range out {
			out[i].DeliveredAt = ts
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLite) GetTaskRes(ctx context.Context, taskIDs map[string]struct{}, limit *int) ([]fleetml.TaskRes, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]string, 0, len(taskIDs))
	for id := range taskIDs {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	ancestryExprs := make([]string, len(ids))
	for i, id := range ids {
		args[i] = fmt.Sprintf("[%q]", id)
		ancestryExprs[i] = "?"
	}
	_ = placeholders

	selectQuery := fmt.Sprintf(`SELECT task_id, group_id, run_id, producer_anonymous, producer_node_id,
		consumer_anonymous, consumer_node_id, created_at, pushed_at, ttl, ancestry,
		task_type, recordset
		FROM task_res WHERE delivered_at = '' AND ancestry IN (%s)`, strings.Join(ancestryExprs, ","))
	if limit != nil {
		selectQuery += fmt.Sprintf(" LIMIT %d", *limit)
	}
	s.log(selectQuery, args...)

	rows, err := tx.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, err
	}
	var result []fleetml.TaskRes
	var resIDs []string
	matchedAncestry := make(map[string]struct{})
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, t)
		resIDs = append(resIDs, t.TaskID)
		if len(t.Ancestry) == 1 {
			matchedAncestry[t.Ancestry[0]] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	ts := nowISO()
	if len(resIDs) > 0 {
		ph := strings.TrimRight(strings.Repeat("?,", len(resIDs)), ",")
		uargs := make([]any, 0, len(resIDs)+1)
		uargs = append(uargs, ts)
		for _, id := range resIDs {
			uargs = append(uargs, id)
		}
		updateQuery := fmt.Sprintf(`UPDATE task_res SET delivered_at = ? WHERE task_id IN (%s)`, ph)
		if _, err := tx.ExecContext(ctx, updateQuery, uargs...); err != nil {
			return nil, err
		}
		for i := range result {
			result[i].DeliveredAt = ts
		}
	}

	var remaining []string
	for _, id := range ids {
		if _, done := matchedAncestry[id]; !done {
			remaining = append(remaining, id)
		}
	}

	for _, id := range remaining {
		if limit != nil && len(result) >= *limit {
			break
		}
		var ins fleetml.TaskIns
		row := tx.QueryRowContext(ctx, `SELECT task_id, group_id, run_id, producer_anonymous, producer_node_id,
			consumer_anonymous, consumer_node_id, created_at, pushed_at, ttl, ancestry,
			task_type, recordset FROM task_ins WHERE task_id = ?`, id)
		scanned, err := scanTaskRow(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		ins = scanned
		if ins.Consumer.Anonymous {
			continue
		}

		var onlineUntil int64
		err = tx.QueryRowContext(ctx, `SELECT online_until FROM node WHERE node_id = ?`, idSint(ins.Consumer.NodeID)).Scan(&onlineUntil)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		if onlineUntil >= nowFunc().UnixNano() {
			continue
		}
		result = append(result, substituteReply(ins, ts))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLite) NumTaskIns(ctx context.Context) (int, error) {
	return s.count(ctx, "task_ins")
}

func (s *SQLite) NumTaskRes(ctx context.Context) (int, error) {
	return s.count(ctx, "task_res")
}

func (s *SQLite) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n)
	return n, err
}

func (s *SQLite) DeleteTasks(ctx context.Context, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range taskIDs {
		var deliveredAt string
		err := tx.QueryRowContext(ctx, `SELECT delivered_at FROM task_ins WHERE task_id = ?`, id).Scan(&deliveredAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return err
		}
		if deliveredAt == "" {
			continue
		}

		var resID string
		err = tx.QueryRowContext(ctx,
			`SELECT task_id FROM task_res WHERE ancestry = ? AND delivered_at != '' LIMIT 1`,
			fmt.Sprintf("[%q]", id),
		).Scan(&resID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM task_ins WHERE task_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_res WHERE task_id = ?`, resID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// --- Nodes ---

func (s *SQLite) CreateNode(ctx context.Context, pingInterval int64, publicKey []byte) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if len(publicKey) > 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM node WHERE public_key = ?`, publicKey).Scan(&exists)
		if err == nil {
			return 0, ErrPublicKeyInUse()
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
	}

	id, err := generateID()
	if err != nil {
		return 0, err
	}

	onlineUntil := nowFunc().Add(secondsToDuration(pingInterval)).UnixNano()
	_, err = tx.ExecContext(ctx, `INSERT INTO node (node_id, online_until, ping_interval, public_key) VALUES (?,?,?,?)`,
		idSint(id), onlineUntil, pingInterval, nullableBytes(publicKey))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrIDCollision()
		}
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLite) DeleteNode(ctx context.Context, nodeID uint64, publicKey []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var storedKey []byte
	err = tx.QueryRowContext(ctx, `SELECT public_key FROM node WHERE node_id = ?`, idSint(nodeID)).Scan(&storedKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNodeNotFound(nodeID)
		}
		return err
	}
	if len(publicKey) > 0 && string(publicKey) != string(storedKey) {
		return ErrInvalidArgument("public key does not match registered node")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM node WHERE node_id = ?`, idSint(nodeID)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) GetNodes(ctx context.Context, runID uint64) (map[uint64]struct{}, error) {
	out := make(map[uint64]struct{})

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM run WHERE run_id = ?`, idSint(runID)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT node_id FROM node WHERE online_until > ?`, nowFunc().UnixNano())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[idUint(id)] = struct{}{}
	}
	return out, rows.Err()
}

func (s *SQLite) GetNodeID(ctx context.Context, publicKey []byte) (uint64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT node_id FROM node WHERE public_key = ?`, publicKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return idUint(id), true, nil
}

func (s *SQLite) AcknowledgePing(ctx context.Context, nodeID uint64, pingInterval int64) (bool, error) {
	onlineUntil := nowFunc().Add(secondsToDuration(pingInterval)).UnixNano()
	res, err := s.db.ExecContext(ctx,
		`UPDATE node SET online_until = ?, ping_interval = ? WHERE node_id = ?`,
		onlineUntil, pingInterval, idSint(nodeID))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- Runs ---

func (s *SQLite) CreateRun(ctx context.Context, fabID, fabVersion, fabHash string, overrideConfig map[string]any) (uint64, error) {
	id, err := generateID()
	if err != nil {
		return 0, err
	}

	cfg, err := json.Marshal(overrideConfig)
	if err != nil {
		return 0, err
	}

	if fabHash != "" {
		fabID, fabVersion = "", ""
	} else {
		fabHash = ""
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run (run_id, fab_id, fab_version, fab_hash, override_config) VALUES (?,?,?,?,?)`,
		idSint(id), fabID, fabVersion, fabHash, string(cfg))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrIDCollision()
		}
		return 0, err
	}
	return id, nil
}

func (s *SQLite) GetRun(ctx context.Context, runID uint64) (fleetml.Run, bool, error) {
	var r fleetml.Run
	var cfg string
	var rawID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, fab_id, fab_version, fab_hash, override_config, pending_at, starting_at, running_at, finished_at FROM run WHERE run_id = ?`,
		idSint(runID),
	).Scan(&rawID, &r.FabID, &r.FabVersion, &r.FabHash, &cfg, &r.PendingAt, &r.StartingAt, &r.RunningAt, &r.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fleetml.Run{}, false, nil
	}
	if err != nil {
		return fleetml.Run{}, false, err
	}
	r.RunID = idUint(rawID)
	if cfg != "" {
		if err := json.Unmarshal([]byte(cfg), &r.OverrideConfig); err != nil {
			return fleetml.Run{}, false, err
		}
	}
	return r, true, nil
}

// --- Credentials ---

func (s *SQLite) StoreServerPrivatePublicKey(ctx context.Context, private, public []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO credential (id, private_key, public_key) VALUES (1, ?, ?)`, private, public)
	if isUniqueViolation(err) {
		return ErrCredentialExists()
	}
	return err
}

func (s *SQLite) GetServerPrivateKey(ctx context.Context) ([]byte, bool, error) {
	var key []byte
	err := s.db.QueryRowContext(ctx, `SELECT private_key FROM credential WHERE id = 1`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	return key, err == nil, err
}

func (s *SQLite) GetServerPublicKey(ctx context.Context) ([]byte, bool, error) {
	var key []byte
	err := s.db.QueryRowContext(ctx, `SELECT public_key FROM credential WHERE id = 1`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	return key, err == nil, err
}

func (s *SQLite) StoreNodePublicKey(ctx context.Context, publicKey []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO node_public_key (public_key) VALUES (?)`, publicKey)
	return err
}

func (s *SQLite) GetNodePublicKeys(ctx context.Context) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT public_key FROM node_public_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][]byte
	for rows.Next() {
		var k []byte
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
