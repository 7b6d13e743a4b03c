package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
)

type StatsRange string

const (
	RangeHourly  StatsRange = "hourly"
	RangeDaily   StatsRange = "daily"
	RangeWeekly  StatsRange = "weekly"
	RangeMonthly StatsRange = "monthly"
)

const unknownStaff = "unknown"

// StatsSource lists orders with their waiter preloaded, optionally limited
// to [from, to).
type StatsSource interface {
	ListForStats(ctx context.Context, from, to *time.Time) ([]models.Order, error)
}

// StatRow is one chart bucket. It encodes as {"date": bucket, name: count...}.
type StatRow struct {
	Bucket string
	Counts map[string]int64
}

func (r StatRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Counts)+1)
	for name, count := range r.Counts {
		out[name] = count
	}
	out["date"] = r.Bucket
	return json.Marshal(out)
}

type StatsService interface {
	GetOrderStats(ctx context.Context, rng, date string) ([]StatRow, error)
}

type statsService struct {
	source StatsSource
	loc    *time.Location
}

func NewStatsService(source StatsSource, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statsService{source: source, loc: loc}
}

func (s *statsService) GetOrderStats(ctx context.Context, rng, date string) ([]StatRow, error) {
	r := StatsRange(rng)
	switch r {
	case RangeHourly, RangeDaily, RangeWeekly, RangeMonthly:
	default:
		return nil, apperrors.NewInvalidInput("invalid range %q", rng)
	}

	var from, to *time.Time
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, s.loc)
		if err != nil {
			return nil, apperrors.NewInvalidInput("invalid date %q, expected YYYY-MM-DD", date)
		}
		if r == RangeHourly {
			end := day.AddDate(0, 0, 1)
			from, to = &day, &end
		}
	}

	orders, err := s.source.ListForStats(ctx, from, to)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load orders")
	}

	counts := make(map[string]map[string]int64)
	staff := make(map[string]struct{})
	for _, order := range orders {
		bucket := s.bucket(r, order.CreatedAt)
		name := unknownStaff
		if order.OpenedBy != nil && order.OpenedBy.Name != "" {
			name = order.OpenedBy.Name
		}
		if counts[bucket] == nil {
			counts[bucket] = make(map[string]int64)
		}
		counts[bucket][name]++
		staff[name] = struct{}{}
	}

	var buckets []string
	if r == RangeHourly {
		buckets = make([]string, 0, 24)
		for h := 0; h < 24; h++ {
			buckets = append(buckets, fmt.Sprintf("%02d:00", h))
		}
	} else {
		buckets = make([]string, 0, len(counts))
		for b := range counts {
			buckets = append(buckets, b)
		}
		sort.Strings(buckets)
	}

	rows := make([]StatRow, 0, len(buckets))
	for _, b := range buckets {
		row := StatRow{Bucket: b, Counts: make(map[string]int64, len(staff))}
		for name := range staff {
			row.Counts[name] = counts[b][name]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *statsService) bucket(r StatsRange, at time.Time) string {
	t := at.In(s.loc)
	switch r {
	case RangeHourly:
		return fmt.Sprintf("%02d:00", t.Hour())
	case RangeDaily:
		return t.Format("2006-01-02")
	case RangeWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}
