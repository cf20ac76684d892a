package insights

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is a point-of-sale summary row used as assistant context.
type SaleRecord struct {
	ID     string          `json:"id"`
	Time   time.Time       `json:"time"`
	Items  int             `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Method string          `json:"method"`
}

// SalesLog is a bounded in-memory feed of recent sales supplied by the
// hosting shell. It only exists to give the assistant context; it is not
// a ledger concern.
type SalesLog struct {
	mu      sync.Mutex
	records []SaleRecord
	cap     int
}

// NewSalesLog builds a log retaining at most capacity records.
func NewSalesLog(capacity int) *SalesLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &SalesLog{cap: capacity}
}

// Add appends a sale, evicting the oldest beyond capacity.
func (l *SalesLog) Add(rec SaleRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	if len(l.records) > l.cap {
		l.records = l.records[len(l.records)-l.cap:]
	}
}

// Recent returns up to limit sales, newest first.
func (l *SalesLog) Recent(limit int) []SaleRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]SaleRecord(nil), l.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
