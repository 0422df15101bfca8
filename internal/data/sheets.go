package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// googleCallTimeout bounds a single Google API call
const googleCallTimeout = 30 * time.Second

// sheetsRepo appends ledger rows to the first worksheet of a spreadsheet
type sheetsRepo struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetTitle    string
}

// SheetsLedger is the Google Sheets ledger
type SheetsLedger interface {
	repo.LedgerRepo
	SheetTitle() string
}

// NewSheetsRepo opens the spreadsheet and resolves its first worksheet
func NewSheetsRepo(ctx context.Context, svc *sheets.Service, spreadsheetID string) (SheetsLedger, error) {
	ctx, cancel := context.WithTimeout(ctx, googleCallTimeout)
	defer cancel()

	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", spreadsheetID)
	}

	return &sheetsRepo{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetTitle:    ss.Sheets[0].Properties.Title,
	}, nil
}

// SheetTitle returns the worksheet rows are appended to
func (r *sheetsRepo) SheetTitle() string {
	return r.sheetTitle
}

// Append appends one row
func (r *sheetsRepo) Append(ctx context.Context, entry domain.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, googleCallTimeout)
	defer cancel()

	values := &sheets.ValueRange{Values: [][]interface{}{entry.Row()}}
	_, err := r.svc.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange(r.sheetTitle), values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// sheetRange builds an A1 range covering the ledger columns of a worksheet
func sheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A:D"
}
