package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

type fakeOrderSource struct {
	orders []models.Order
	err    error
}

func (f *fakeOrderSource) List(ctx context.Context) ([]models.Order, error) {
	return f.orders, f.err
}

type fakeUserSource struct {
	users []models.User
	err   error
}

func (f *fakeUserSource) List(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

type fakeProductSource struct {
	name     string
	products []models.Product
	err      error
}

func (f *fakeProductSource) Collection() string { return f.name }

func (f *fakeProductSource) List(ctx context.Context) ([]models.Product, error) {
	return f.products, f.err
}

func newTestAggregator(orders *fakeOrderSource, users *fakeUserSource, now time.Time, products ...ProductSource) *Aggregator {
	a := NewAggregator(orders, users, products)
	a.now = func() time.Time { return now }
	return a
}

func TestPctChange(t *testing.T) {
	assert.Equal(t, 0, PctChange(0, 0))
	assert.Equal(t, 100, PctChange(0, 5))
	assert.Equal(t, 50, PctChange(10, 15))
	assert.Equal(t, -50, PctChange(10, 5))
	assert.Equal(t, -100, PctChange(10, 0))
	assert.Equal(t, 33, PctChange(3, 4))
}

func TestLoadStatisticsTotalsAndChange(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrderSource{orders: []models.Order{
		{ID: "1", TotalAmount: 100, CreatedAt: now.AddDate(0, 0, -1)},  // current month
		{ID: "2", TotalAmount: 200, CreatedAt: now.AddDate(0, 0, -10)}, // current month
		{ID: "3", TotalAmount: 300, CreatedAt: now.AddDate(0, -1, 0)},  // previous month
		{ID: "4", TotalAmount: 50},                                     // no timestamp
	}}
	users := &fakeUserSource{users: []models.User{{ID: "u1"}, {ID: "u2"}}}

	a := newTestAggregator(orders, users, now)
	stats := a.LoadStatistics(context.Background())

	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 650.0, stats.TotalRevenue)
	assert.Equal(t, 100, stats.OrdersChange)  // 1 -> 2
	assert.Equal(t, 0, stats.RevenueChange)   // 300 -> 300
}

func TestLoadStatisticsSourceFailureReadsZero(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	orders := &fakeOrderSource{err: fmt.Errorf("backend down")}
	users := &fakeUserSource{users: []models.User{{ID: "u1"}}}

	a := newTestAggregator(orders, users, now)
	stats := a.LoadStatistics(context.Background())

	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 0.0, stats.TotalRevenue)
}

func TestDepartmentCounts(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	a := newTestAggregator(&fakeOrderSource{}, &fakeUserSource{}, now,
		&fakeProductSource{name: "chargers", products: make([]models.Product, 3)},
		&fakeProductSource{name: "wires", products: make([]models.Product, 7)},
		&fakeProductSource{name: "boxes", err: fmt.Errorf("timeout")},
	)

	counts := a.DepartmentCounts(context.Background())
	assert.Equal(t, map[string]int{"chargers": 3, "wires": 7, "boxes": 0}, counts)
}

func TestChartWeekBucketsByCalendarDay(t *testing.T) {
	// A Saturday afternoon.
	now := time.Date(2026, time.August, 15, 15, 30, 0, 0, time.UTC)

	orders := &fakeOrderSource{orders: []models.Order{
		{ID: "1", TotalAmount: 500, CreatedAt: now.Add(-2 * time.Hour)}, // today
		{ID: "2", TotalAmount: 250, CreatedAt: now.AddDate(0, 0, -2)},   // two days ago
		{ID: "3", TotalAmount: 100, CreatedAt: now.AddDate(0, 0, -2)},   // two days ago
		{ID: "4", TotalAmount: 900, CreatedAt: now.AddDate(0, 0, -10)},  // outside the window
		{ID: "5"},                                                       // no timestamp
	}}

	a := newTestAggregator(orders, &fakeUserSource{}, now)
	data, err := a.ChartData(context.Background(), RangeWeek)
	require.NoError(t, err)

	require.Len(t, data.Values, 7)
	require.Len(t, data.Revenue, 7)
	require.Len(t, data.Labels, 7)
	assert.Equal(t, 1.0, data.Values[6]) // today
	assert.Equal(t, 2.0, data.Values[4]) // two days ago
	assert.Equal(t, 500.0, data.Revenue[6])
	assert.Equal(t, 350.0, data.Revenue[4])
	assert.Equal(t, 0.0, data.Revenue[5])
	assert.Equal(t, "السبت", data.Labels[6])
	assert.Equal(t, "الخميس", data.Labels[4])
}

func TestChartWeekHandlesShortenedDSTDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// March 29th 2026 is the spring-forward day in Berlin and only lasts
	// 23 hours. An order placed that day must land in its own bucket, not
	// bleed into the next day's.
	now := time.Date(2026, time.March, 30, 12, 0, 0, 0, berlin)
	orders := &fakeOrderSource{orders: []models.Order{
		{ID: "1", TotalAmount: 80, CreatedAt: time.Date(2026, time.March, 29, 10, 0, 0, 0, berlin)},
	}}

	a := newTestAggregator(orders, &fakeUserSource{}, now)
	data, err := a.ChartData(context.Background(), RangeWeek)
	require.NoError(t, err)

	assert.Equal(t, 1.0, data.Values[5]) // yesterday
	assert.Equal(t, 0.0, data.Values[6]) // today
	assert.Equal(t, 80.0, data.Revenue[5])
}

func TestChartMonthUsesTrailingWeeks(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrderSource{orders: []models.Order{
		{ID: "1", TotalAmount: 40, CreatedAt: now},                    // latest window
		{ID: "2", TotalAmount: 30, CreatedAt: now.AddDate(0, 0, -8)},  // one window back
		{ID: "3", TotalAmount: 20, CreatedAt: now.AddDate(0, 0, -27)}, // oldest window
		{ID: "4", TotalAmount: 10, CreatedAt: now.AddDate(0, 0, -30)}, // outside
	}}

	a := newTestAggregator(orders, &fakeUserSource{}, now)
	data, err := a.ChartData(context.Background(), RangeMonth)
	require.NoError(t, err)

	require.Len(t, data.Values, 4)
	assert.Equal(t, []string{"الأسبوع 1", "الأسبوع 2", "الأسبوع 3", "الأسبوع 4"}, data.Labels)
	assert.Equal(t, 1.0, data.Values[3])
	assert.Equal(t, 1.0, data.Values[2])
	assert.Equal(t, 1.0, data.Values[0])
	assert.Equal(t, []float64{20, 0, 30, 40}, data.Revenue)
}

func TestChartYearUsesCalendarMonths(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrderSource{orders: []models.Order{
		{ID: "1", TotalAmount: 75, CreatedAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", TotalAmount: 60, CreatedAt: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "3", TotalAmount: 45, CreatedAt: time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "4", TotalAmount: 30, CreatedAt: time.Date(2025, time.August, 30, 0, 0, 0, 0, time.UTC)}, // outside
	}}

	a := newTestAggregator(orders, &fakeUserSource{}, now)
	data, err := a.ChartData(context.Background(), RangeYear)
	require.NoError(t, err)

	require.Len(t, data.Values, 12)
	assert.Equal(t, "سبتمبر", data.Labels[0])
	assert.Equal(t, "أغسطس", data.Labels[11])
	assert.Equal(t, 1.0, data.Values[0])  // Sep 2025
	assert.Equal(t, 1.0, data.Values[4])  // Jan 2026
	assert.Equal(t, 1.0, data.Values[11]) // Aug 2026
	assert.Equal(t, 45.0, data.Revenue[0])
	assert.Equal(t, 60.0, data.Revenue[4])
	assert.Equal(t, 75.0, data.Revenue[11])
}

func TestChartUnknownRange(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	a := newTestAggregator(&fakeOrderSource{}, &fakeUserSource{}, now)

	_, err := a.ChartData(context.Background(), Range("decade"))
	assert.Error(t, err)
}

func TestHalfSplitChange(t *testing.T) {
	assert.Equal(t, 0, halfSplitChange(nil))
	assert.Equal(t, 0, halfSplitChange([]float64{5}))
	assert.Equal(t, 100, halfSplitChange([]float64{1, 2}))
	// Odd length: the middle bucket counts toward the later half.
	assert.Equal(t, 50, halfSplitChange([]float64{2, 1, 2}))
	assert.Equal(t, 100, halfSplitChange([]float64{0, 0, 1}))
}
