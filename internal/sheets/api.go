package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Metadata describes the spreadsheet and the tab leads are written to.
type Metadata struct {
	Title         string
	SpreadsheetID string
	// SheetID is the numeric id of the target tab, used for formatting.
	SheetID int64
}

// API is the subset of the Sheets v4 surface the writer needs.
type API interface {
	GetValues(ctx context.Context, rng string) ([][]any, error)
	UpdateValues(ctx context.Context, rng string, row []any) error
	AppendValues(ctx context.Context, rng string, row []any) error
	FormatHeader(ctx context.Context, sheetID int64, columns int) error
	Metadata(ctx context.Context, sheetName string) (Metadata, error)
}

// Values are stored as typed text; RAW input is never parsed as a formula.
const valueInputRaw = "RAW"

type serviceAPI struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewServiceAPI authenticates with service-account credentials and returns an
// API bound to one spreadsheet.
func NewServiceAPI(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (API, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &serviceAPI{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (a *serviceAPI) GetValues(ctx context.Context, rng string) ([][]any, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *serviceAPI) UpdateValues(ctx context.Context, rng string, row []any) error {
	body := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := a.svc.Spreadsheets.Values.Update(a.spreadsheetID, rng, body).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) AppendValues(ctx context.Context, rng string, row []any) error {
	body := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, rng, body).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) FormatHeader(ctx context.Context, sheetID int64, columns int) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
					// Zero values are omitted from the request otherwise.
					ForceSendFields: []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell: &gsheets.CellData{
					UserEnteredFormat: &gsheets.CellFormat{
						BackgroundColor: &gsheets.Color{Red: 0.2, Green: 0.6, Blue: 0.2},
						TextFormat: &gsheets.TextFormat{
							Bold:            true,
							ForegroundColor: &gsheets.Color{Red: 1, Green: 1, Blue: 1},
						},
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat)",
			},
		}},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Metadata(ctx context.Context, sheetName string) (Metadata, error) {
	resp, err := a.svc.Spreadsheets.Get(a.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return Metadata{}, err
	}
	meta := Metadata{SpreadsheetID: resp.SpreadsheetId}
	if resp.Properties != nil {
		meta.Title = resp.Properties.Title
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			meta.SheetID = sh.Properties.SheetId
			break
		}
	}
	return meta, nil
}
