package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spendtrack-dev/spendtrack/internal/model"
)

// AppendHistory persists an immutable history entry, assigning its ID
// and stamping OccurredAt at write time if the caller left it zero.
// Keys are the big-endian entry ID, so iteration order is insertion
// order, which is also (date, time) order since timestamps are
// assigned under the single writer.
func (tx *Tx) AppendHistory(h model.History) (model.History, error) {
	b := tx.btx.Bucket([]byte(bucketHistory))

	seq, err := b.NextSequence()
	if err != nil {
		return model.History{}, fmt.Errorf("allocating history id: %w", err)
	}
	h.ID = int64(seq)
	if h.OccurredAt.IsZero() {
		h.OccurredAt = time.Now()
	}

	if err := tx.putJSON(bucketHistory, itob(seq), &h); err != nil {
		return model.History{}, err
	}
	return h, nil
}

// History returns all entries, most recent first. A kind filter of ""
// returns every budget kind.
func (tx *Tx) History(kind model.BudgetKind) ([]model.History, error) {
	var out []model.History
	c := tx.btx.Bucket([]byte(bucketHistory)).Cursor()
	for k, v := c.Last(); k != nil; k, v = c.Prev() {
		var h model.History
		if err := json.Unmarshal(v, &h); err != nil {
			return nil, fmt.Errorf("decoding history record: %w", err)
		}
		if kind != "" && h.BudgetKind != kind {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
