package store

import (
	"encoding/json"
	"strings"
	"time"

	"fleetml"
	"fleetml/internal/idcodec"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(rows scanner) (fleetml.Task, error) {
	return scanTaskGeneric(rows)
}

func scanTaskRow(row scanner) (fleetml.Task, error) {
	return scanTaskGeneric(row)
}

func scanTaskGeneric(sc scanner) (fleetml.Task, error) {
	var (
		t                                          fleetml.Task
		runID                                      int64
		producerAnon, consumerAnon                 int
		producerNode, consumerNode                 int64
		ancestryJSON                               string
		recordset                                  []byte
	)
	err := sc.Scan(&t.TaskID, &t.GroupID, &runID, &producerAnon, &producerNode,
		&consumerAnon, &consumerNode, &t.CreatedAt, &t.PushedAt, &t.TTL, &ancestryJSON,
		&t.TaskType, &recordset)
	if err != nil {
		return fleetml.Task{}, err
	}

	t.RunID = idcodec.Sint64ToUint64(runID)
	t.Producer = fleetml.Address{Anonymous: producerAnon != 0, NodeID: idcodec.Sint64ToUint64(producerNode)}
	t.Consumer = fleetml.Address{Anonymous: consumerAnon != 0, NodeID: idcodec.Sint64ToUint64(consumerNode)}
	t.RecordSet = fleetml.RecordSet(recordset)
	if ancestryJSON != "" {
		if err := json.Unmarshal([]byte(ancestryJSON), &t.Ancestry); err != nil {
			return fleetml.Task{}, err
		}
	}
	return t, nil
}

func idSint(x uint64) int64 { return idcodec.Uint64ToSint64(x) }
func idUint(x int64) uint64 { return idcodec.Sint64ToUint64(x) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

// isUniqueViolation classifies a sqlite driver error as a uniqueness
// collision. modernc.org/sqlite doesn't expose a typed error for this,
// so — like ployz's toGRPCError fallback — this matches on the
// driver's message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
