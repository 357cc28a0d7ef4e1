// Package ledger merges normalized transactions from many statements
// into one deduplicated, date-ordered canonical list. Statements
// overlap in practice (monthly statements re-print trailing days, and
// users re-upload files), so identical rows from different statements
// collapse into a single entry that remembers every statement it
// appeared in.
package ledger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source records one appearance of a transaction in a statement.
type Source struct {
	StatementID string
	Page        int
	Line        int
}

// Transaction is one canonical ledger row. Amount is signed: negative
// means money left the account.
type Transaction struct {
	ID          uuid.UUID
	StatementID string
	Seq         int
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Currency    string
	Balance     *decimal.Decimal
	Category    string
	// CategorySource names the tier that assigned the category:
	// "rule", "semantic" or "unmatched".
	CategorySource string
	Confidence     float64
	Source         Source
}

// Key identifies a transaction for cross-statement deduplication. Two
// rows with the same posting date, amount and description are the same
// real-world transaction seen through two statements.
func (t *Transaction) Key() string {
	return fmt.Sprintf("%s|%s|%s",
		t.Date.Format("2006-01-02"),
		t.Amount.String(),
		strings.ToLower(t.Description))
}

// Entry is a deduplicated ledger row with the statements it came from.
type Entry struct {
	Transaction
	Sources []Source
}

// Ledger is the merged output.
type Ledger struct {
	Entries []Entry
}

// Duplicates counts entries that appeared in more than one statement.
func (l *Ledger) Duplicates() int {
	n := 0
	for _, e := range l.Entries {
		if len(e.Sources) > 1 {
			n++
		}
	}
	return n
}

type entry struct {
	tx          Transaction
	sources     []Source
	uploadOrder int
	seq         int
}

// Builder accumulates statements and produces a merged ledger.
// Re-adding a statement id replaces its previous contribution, so
// re-uploading a corrected file is idempotent.
type Builder struct {
	logger *slog.Logger

	// entries[key] holds one entry per occurrence of the key within a
	// single statement: the nth identical row of one statement matches
	// the nth identical row of an overlapping statement, never the
	// same row twice.
	entries    map[string][]*entry
	uploads    map[string]int
	nextUpload int
}

// NewBuilder creates an empty ledger builder.
func NewBuilder() *Builder {
	return &Builder{
		logger:  slog.Default(),
		entries: make(map[string][]*entry),
		uploads: make(map[string]int),
	}
}

// WithLogger sets the builder's logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// Add merges one statement's transactions into the ledger under the
// given statement id.
func (b *Builder) Add(statementID string, txs []Transaction) {
	if _, seen := b.uploads[statementID]; seen {
		b.remove(statementID)
		b.logger.Info("statement re-added, previous rows replaced",
			slog.String("statement_id", statementID))
	}
	upload := b.nextUpload
	b.nextUpload++
	b.uploads[statementID] = upload

	occurrence := make(map[string]int)
	merged := 0
	for i, tx := range txs {
		tx.StatementID = statementID
		tx.Source.StatementID = statementID
		key := tx.Key()
		n := occurrence[key]
		occurrence[key] = n + 1

		if existing := b.entries[key]; n < len(existing) {
			existing[n].sources = append(existing[n].sources, tx.Source)
			merged++
			continue
		}
		b.entries[key] = append(b.entries[key], &entry{
			tx:          tx,
			sources:     []Source{tx.Source},
			uploadOrder: upload,
			seq:         i,
		})
	}
	b.logger.Debug("statement merged into ledger",
		slog.String("statement_id", statementID),
		slog.Int("rows", len(txs)),
		slog.Int("duplicates", merged))
}

// remove drops every source contributed by the statement and any entry
// left without sources.
func (b *Builder) remove(statementID string) {
	for key, list := range b.entries {
		kept := list[:0]
		for _, e := range list {
			srcs := e.sources[:0]
			for _, s := range e.sources {
				if s.StatementID != statementID {
					srcs = append(srcs, s)
				}
			}
			e.sources = srcs
			if len(e.sources) > 0 {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(b.entries, key)
		} else {
			b.entries[key] = kept
		}
	}
	delete(b.uploads, statementID)
}

// Build returns the merged ledger ordered by transaction date, with
// ties broken by the order statements were added and then by row order
// within the statement.
func (b *Builder) Build() *Ledger {
	var all []*entry
	for _, list := range b.entries {
		all = append(all, list...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].tx.Date.Equal(all[j].tx.Date) {
			return all[i].tx.Date.Before(all[j].tx.Date)
		}
		if all[i].uploadOrder != all[j].uploadOrder {
			return all[i].uploadOrder < all[j].uploadOrder
		}
		return all[i].seq < all[j].seq
	})

	out := &Ledger{Entries: make([]Entry, 0, len(all))}
	for _, e := range all {
		out.Entries = append(out.Entries, Entry{
			Transaction: e.tx,
			Sources:     e.sources,
		})
	}
	return out
}
