// Package sheets stores destinations as worksheets of one Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/sink"
)

var (
	ErrUnauthorized   = errors.New("sheets: unauthorised (invalid credentials)")
	ErrForbidden      = errors.New("sheets: forbidden (spreadsheet not shared with the service account)")
	ErrNotFound       = errors.New("sheets: spreadsheet or worksheet not found")
	ErrRateLimited    = errors.New("sheets: rate limit exceeded")
	// ErrHeaderMismatch is returned for a worksheet whose header has no link
	// column. Such a tab can be neither deduplicated nor appended to safely.
	ErrHeaderMismatch = errors.New("sheets: worksheet header has no link column")
)

const (
	// lastColumn is the column letter of the final Header entry.
	lastColumn = "J"
	// readColumns is wide enough for legacy layouts with extra columns.
	readColumns = "A:Z"
)

// valuesAPI is the subset of the Sheets API the sink uses.
type valuesAPI interface {
	Tabs(ctx context.Context) ([]string, error)
	AddTab(ctx context.Context, title string) error
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, values [][]any) error
	Append(ctx context.Context, rng string, values [][]any) error
}

type Sheet struct {
	api    valuesAPI
	logger *zap.Logger

	mu sync.Mutex
	// tabs is nil until the worksheets were listed.
	tabs map[string]bool
	// headers holds row 1 of every worksheet seen, rows are laid out by it.
	headers map[routing.Category][]string
}

// New authenticates with a service account JSON key.
func New(ctx context.Context, spreadsheetID, credentialsFile string, l *zap.Logger) (*Sheet, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials %q: %w", credentialsFile, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	svc, err := gsheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return newSheet(&serviceAPI{svc: svc, id: spreadsheetID}, l), nil
}

func newSheet(api valuesAPI, l *zap.Logger) *Sheet {
	return &Sheet{
		api:     api,
		logger:  logger.OrNop(l),
		headers: make(map[routing.Category][]string),
	}
}

func columnRange(dest routing.Category) string {
	return fmt.Sprintf("'%s'!%s", dest, readColumns)
}

func (s *Sheet) existingTabs(ctx context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tabs != nil {
		return s.tabs, nil
	}

	titles, err := s.api.Tabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing worksheets: %w", WrapError(err))
	}

	s.tabs = make(map[string]bool, len(titles))
	for _, t := range titles {
		s.tabs[t] = true
	}
	return s.tabs, nil
}

func (s *Sheet) setHeader(dest routing.Category, header []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers[dest] = header
}

func (s *Sheet) header(dest routing.Category) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[dest]
}

// Prepare creates missing worksheets and writes the header into an empty
// row 1. A non-empty row 1 is never rewritten: a legacy header that still
// has a link column is kept and new rows follow its layout, one without a
// link column fails with ErrHeaderMismatch.
func (s *Sheet) Prepare(ctx context.Context, dests []routing.Category) error {
	tabs, err := s.existingTabs(ctx)
	if err != nil {
		return err
	}

	header := make([]any, len(sink.Header))
	for i, h := range sink.Header {
		header[i] = h
	}

	for _, dest := range dests {
		if !tabs[string(dest)] {
			s.logger.Info("creating worksheet", zap.String(logger.FieldCategory, string(dest)))
			if err := s.api.AddTab(ctx, string(dest)); err != nil {
				return fmt.Errorf("creating worksheet %s: %w", dest, WrapError(err))
			}
			s.mu.Lock()
			s.tabs[string(dest)] = true
			s.mu.Unlock()
		}

		first, err := s.api.Get(ctx, fmt.Sprintf("'%s'!1:1", dest))
		if err != nil {
			return fmt.Errorf("reading %s header: %w", dest, WrapError(err))
		}

		var got []string
		if len(first) > 0 {
			got = stringsOf(first[0])
		}

		switch {
		case blank(got):
			if err := s.api.Update(ctx, fmt.Sprintf("'%s'!A1:%s1", dest, lastColumn), [][]any{header}); err != nil {
				return fmt.Errorf("writing %s header: %w", dest, WrapError(err))
			}
			s.setHeader(dest, sink.Header)
		case HeaderOK(got):
			s.setHeader(dest, sink.Header)
		case sink.KeyColumn(got) < 0:
			return fmt.Errorf("%w: %s has %v", ErrHeaderMismatch, dest, got)
		default:
			s.logger.Warn("keeping legacy worksheet header",
				zap.String(logger.FieldCategory, string(dest)),
				zap.Strings("found", got),
			)
			s.setHeader(dest, got)
		}
	}

	return nil
}

// HeaderOK accepts an exact header match.
func HeaderOK(got []string) bool {
	return len(got) == len(sink.Header) && sink.HeaderMatches(got)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadKeys treats a missing worksheet as an empty destination.
func (s *Sheet) ReadKeys(ctx context.Context, dest routing.Category) ([]string, error) {
	tabs, err := s.existingTabs(ctx)
	if err != nil {
		return nil, err
	}
	if !tabs[string(dest)] {
		return nil, nil
	}

	values, err := s.api.Get(ctx, columnRange(dest))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dest, WrapError(err))
	}
	if len(values) == 0 {
		return nil, nil
	}

	header := stringsOf(values[0])
	if blank(header) {
		return nil, nil
	}
	col := sink.KeyColumn(header)
	if col < 0 {
		return nil, fmt.Errorf("%w: %s has %v", ErrHeaderMismatch, dest, header)
	}
	s.setHeader(dest, header)

	var keys []string
	for _, row := range values[1:] {
		if col >= len(row) {
			continue
		}
		if key := strings.TrimSpace(fmt.Sprint(row[col])); key != "" {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Append lays the row out under the worksheet header when one is known.
func (s *Sheet) Append(ctx context.Context, dest routing.Category, row sink.Row) error {
	values := row.Values()
	if header := s.header(dest); header != nil {
		values = row.ValuesFor(header)
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := s.api.Append(ctx, columnRange(dest), [][]any{cells}); err != nil {
		return fmt.Errorf("appending to %s: %w", dest, WrapError(err))
	}
	return nil
}

func stringsOf(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// WrapError maps Google API status codes to package errors while keeping the
// original error in the chain.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	default:
		return err
	}
}

type serviceAPI struct {
	svc *gsheets.Service
	id  string
}

func (a *serviceAPI) Tabs(ctx context.Context) ([]string, error) {
	ss, err := a.svc.Spreadsheets.Get(a.id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (a *serviceAPI) AddTab(ctx context.Context, title string) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{Properties: &gsheets.SheetProperties{Title: title}},
		}},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(a.id, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Get(ctx context.Context, rng string) ([][]any, error) {
	vr, err := a.svc.Spreadsheets.Values.Get(a.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return vr.Values, nil
}

func (a *serviceAPI) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := a.svc.Spreadsheets.Values.Update(a.id, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) Append(ctx context.Context, rng string, values [][]any) error {
	_, err := a.svc.Spreadsheets.Values.Append(a.id, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
