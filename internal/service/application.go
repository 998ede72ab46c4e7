package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"agencysite/internal/model"
	"agencysite/internal/repository"
)

// isoMillis matches the timestamps written by the audit log and CSV export.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// csvHeader is the first line of the applications export.
const csvHeader = "createdAt,name,email,phone,category"

// ApplicationService exposes the stored applications to the admin API.
type ApplicationService interface {
	// List returns applications newest first. A non-empty q keeps only those
	// whose name, email, phone or category contain q, ignoring case.
	List(ctx context.Context, q string) ([]model.Application, error)
	// ExportCSV renders every application in log order.
	ExportCSV(ctx context.Context) ([]byte, error)
}

type applicationService struct {
	log repository.ApplicationLog
}

// NewApplicationService constructs an ApplicationService reading from log.
func NewApplicationService(log repository.ApplicationLog) ApplicationService {
	return &applicationService{log: log}
}

func (s *applicationService) List(ctx context.Context, q string) ([]model.Application, error) {
	apps, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.Application, 0, len(apps))
	for _, a := range apps {
		if q == "" || strings.Contains(strings.ToLower(strings.Join([]string{a.Name, a.Email, a.Phone, a.Category}, " ")), q) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Application) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *applicationService) ExportCSV(ctx context.Context) ([]byte, error) {
	apps, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	rows := make([]string, 0, len(apps)+1)
	rows = append(rows, csvHeader)
	for _, a := range apps {
		rows = append(rows, csvRow(a.CreatedAt, a.Name, a.Email, a.Phone, a.Category))
	}
	return []byte(strings.Join(rows, "\n")), nil
}

// csvRow quotes every field and doubles embedded quotes. encoding/csv only
// quotes fields that need it, and the export format quotes all of them.
func csvRow(createdAt time.Time, fields ...string) string {
	quoted := make([]string, 0, len(fields)+1)
	quoted = append(quoted, quote(createdAt.UTC().Format(isoMillis)))
	for _, f := range fields {
		quoted = append(quoted, quote(f))
	}
	return strings.Join(quoted, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
