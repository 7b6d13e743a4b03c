package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsSource struct {
	orders   []models.Order
	from, to *time.Time
}

func (f *fakeStatsSource) ListForStats(_ context.Context, from, to *time.Time) ([]models.Order, error) {
	f.from, f.to = from, to
	var out []models.Order
	for _, o := range f.orders {
		if from != nil && o.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !o.CreatedAt.Before(*to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func statOrder(waiter string, at time.Time) models.Order {
	return models.Order{CreatedAt: at, OpenedBy: &models.User{Name: waiter}}
}

func TestGetOrderStats_HourlyEmpty(t *testing.T) {
	svc := NewStatsService(&fakeStatsSource{}, time.UTC)

	rows, err := svc.GetOrderStats(context.Background(), "hourly", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, rows, 24)
	assert.Equal(t, "00:00", rows[0].Bucket)
	assert.Equal(t, "23:00", rows[23].Bucket)
	for _, row := range rows {
		assert.Empty(t, row.Counts)
	}
}

func TestGetOrderStats_HourlyFiltersDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeStatsSource{orders: []models.Order{
		statOrder("Ana", day.Add(9*time.Hour)),
		statOrder("Ana", day.Add(9*time.Hour+30*time.Minute)),
		statOrder("Ben", day.Add(13*time.Hour)),
		statOrder("Ben", day.Add(-time.Hour)),
	}}
	svc := NewStatsService(source, time.UTC)

	rows, err := svc.GetOrderStats(context.Background(), "hourly", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, rows, 24)
	require.NotNil(t, source.from)
	assert.True(t, source.from.Equal(day))
	assert.True(t, source.to.Equal(day.AddDate(0, 0, 1)))

	assert.Equal(t, map[string]int64{"Ana": 2, "Ben": 0}, rows[9].Counts)
	assert.Equal(t, map[string]int64{"Ana": 0, "Ben": 1}, rows[13].Counts)
	assert.Equal(t, map[string]int64{"Ana": 0, "Ben": 0}, rows[0].Counts)
}

func TestGetOrderStats_Buckets(t *testing.T) {
	source := &fakeStatsSource{orders: []models.Order{
		statOrder("Ana", time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)),
		statOrder("Ben", time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)),
		statOrder("Ana", time.Date(2024, 2, 5, 18, 0, 0, 0, time.UTC)),
		statOrder("", time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)),
	}}
	svc := NewStatsService(source, time.UTC)

	tests := []struct {
		rng     string
		buckets []string
	}{
		{"daily", []string{"2023-12-31", "2024-01-31", "2024-02-05"}},
		{"weekly", []string{"2023-52", "2024-05", "2024-06"}},
		{"monthly", []string{"2023-12", "2024-01", "2024-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			rows, err := svc.GetOrderStats(context.Background(), tt.rng, "")
			require.NoError(t, err)
			var got []string
			for _, row := range rows {
				got = append(got, row.Bucket)
				assert.Len(t, row.Counts, 3)
			}
			assert.Equal(t, tt.buckets, got)
		})
	}

	rows, err := svc.GetOrderStats(context.Background(), "monthly", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows[2].Counts["Ana"])
	assert.Equal(t, int64(1), rows[0].Counts[unknownStaff])
}

func TestGetOrderStats_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	source := &fakeStatsSource{orders: []models.Order{
		statOrder("Ana", time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)),
	}}
	svc := NewStatsService(source, loc)

	rows, err := svc.GetOrderStats(context.Background(), "daily", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-02", rows[0].Bucket)
}

func TestGetOrderStats_InvalidInput(t *testing.T) {
	svc := NewStatsService(&fakeStatsSource{}, nil)

	_, err := svc.GetOrderStats(context.Background(), "yearly", "")
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	_, err = svc.GetOrderStats(context.Background(), "hourly", "01/02/2024")
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))
}

func TestStatRow_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(StatRow{Bucket: "09:00", Counts: map[string]int64{"Ana": 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"09:00","Ana":2}`, string(data))
}
