package domain

import "time"

// EntryKind tags a ledger row
type EntryKind string

const (
	EntryKindKeyword EntryKind = "關鍵字"
	EntryKindImage   EntryKind = "圖片"
)

// LedgerTimeLayout is the timestamp format written to ledger rows
const LedgerTimeLayout = "2006-01-02 15:04:05"

// LedgerEntry is one row of the ledger
type LedgerEntry struct {
	RecordedAt  time.Time
	DisplayName string
	Kind        EntryKind
	Content     string
}

// Row returns the entry as spreadsheet cells
func (e LedgerEntry) Row() []interface{} {
	return []interface{}{
		e.RecordedAt.Format(LedgerTimeLayout),
		e.DisplayName,
		string(e.Kind),
		e.Content,
	}
}
