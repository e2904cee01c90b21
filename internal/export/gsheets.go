package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "ibms/internal/log"
	"ibms/internal/services"
)

// SheetsTabs are the tabs refreshed in the shared spreadsheet. Sub-marketor
// drill-down stays in the xlsx export.
var SheetsTabs = []string{TabInvestments, TabMarketers, TabSummary}

// SheetsExporter overwrites report tabs of a Google spreadsheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Credentials selects a service account. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// NewSheetsExporter authenticates with a service account.
func NewSheetsExporter(ctx context.Context, spreadsheetID string, creds Credentials) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewSheetsExporterWithService wraps an existing service; tests point one at
// a fake endpoint.
func NewSheetsExporterWithService(svc *gsheet.Service, spreadsheetID string) *SheetsExporter {
	return &SheetsExporter{svc: svc, spreadsheetID: spreadsheetID}
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// Export replaces the content of every tab in SheetsTabs, creating missing tabs.
func (e *SheetsExporter) Export(ctx context.Context, rep services.Report) error {
	tables := make(map[string]Table)
	for _, t := range Tables(rep) {
		tables[t.Name] = t
	}

	if err := e.ensureTabs(ctx, SheetsTabs); err != nil {
		return err
	}

	for _, name := range SheetsTabs {
		t := tables[name]
		if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, name, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
		vr := &gsheet.ValueRange{Values: sheetsValues(t.Values())}
		if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, name+"!A1", vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update %s: %w", name, err)
		}
		slog.DebugContext(ctx, "Sheet tab exported",
			applog.FieldComponent, applog.ComponentSheets,
			"tab", name,
			"rows", len(t.Rows))
	}
	return nil
}

func (e *SheetsExporter) ensureTabs(ctx context.Context, names []string) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var reqs []*gsheet.Request
	for _, name := range names {
		if !existing[name] {
			reqs = append(reqs, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			}})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add tabs: %w", err)
	}
	return nil
}

// sheetsValues sends decimals as plain numeric strings so USER_ENTERED
// parses them as numbers without float rounding.
func sheetsValues(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if d, ok := v.(decimal.Decimal); ok {
				cells[j] = d.String()
				continue
			}
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
