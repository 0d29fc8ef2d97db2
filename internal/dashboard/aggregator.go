package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

// OrderSource lists every order. The dashboard aggregates client-side;
// there is no server-side reporting endpoint.
type OrderSource interface {
	List(ctx context.Context) ([]models.Order, error)
}

// UserSource lists every back-office user.
type UserSource interface {
	List(ctx context.Context) ([]models.User, error)
}

// ProductSource lists one catalog category.
type ProductSource interface {
	Collection() string
	List(ctx context.Context) ([]models.Product, error)
}

// Statistics is the dashboard summary card row. Change fields are
// month-over-month percentages comparing the current calendar month with
// the previous one.
type Statistics struct {
	TotalOrders   int     `json:"totalOrders"`
	TotalUsers    int     `json:"totalUsers"`
	TotalRevenue  float64 `json:"totalRevenue"`
	OrdersChange  int     `json:"ordersChange"`
	RevenueChange int     `json:"revenueChange"`
}

// Range selects the chart bucketing.
type Range string

const (
	RangeWeek      Range = "week"
	RangeMonth     Range = "month"
	RangeSixMonths Range = "6months"
	RangeYear      Range = "year"
)

// ChartData is one rendered chart: an order-count series and a revenue
// series over the same buckets. Change compares the sum of the later half
// of the count buckets against the earlier half.
type ChartData struct {
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Revenue []float64 `json:"revenue"`
	Change  int       `json:"change"`
}

var arabicWeekdays = [7]string{
	"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت",
}

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Aggregator computes the dashboard views from the raw collections.
type Aggregator struct {
	orders   OrderSource
	users    UserSource
	products []ProductSource
	logger   *zap.Logger

	now func() time.Time
}

func NewAggregator(orders OrderSource, users UserSource, products []ProductSource) *Aggregator {
	return &Aggregator{
		orders:   orders,
		users:    users,
		products: products,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// PctChange is the percentage change from old to new, rounded to the
// nearest integer. A zero baseline with any growth reads as 100.
func PctChange(old, new float64) int {
	if old == 0 {
		if new > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round((new - old) / old * 100))
}

// LoadStatistics fetches orders and users concurrently and folds them into
// the summary cards. A failed source contributes zeros instead of failing
// the whole dashboard.
func (a *Aggregator) LoadStatistics(ctx context.Context) Statistics {
	ctx, span := util.StartSpan(ctx, "dashboard.LoadStatistics")
	defer span.End()

	var orders []models.Order
	var users []models.User

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := a.orders.List(gctx)
		if err != nil {
			a.logger.Warn("Failed to load orders for dashboard", zap.Error(err))
			return nil
		}
		orders = list
		return nil
	})
	g.Go(func() error {
		list, err := a.users.List(gctx)
		if err != nil {
			a.logger.Warn("Failed to load users for dashboard", zap.Error(err))
			return nil
		}
		users = list
		return nil
	})
	_ = g.Wait()

	now := a.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := monthStart.AddDate(0, -1, 0)

	var revenue float64
	var curOrders, prevOrders float64
	var curRevenue, prevRevenue float64
	for _, o := range orders {
		revenue += o.TotalAmount
		if o.CreatedAt.IsZero() {
			continue
		}
		switch {
		case !o.CreatedAt.Before(monthStart):
			curOrders++
			curRevenue += o.TotalAmount
		case !o.CreatedAt.Before(prevStart):
			prevOrders++
			prevRevenue += o.TotalAmount
		}
	}

	return Statistics{
		TotalOrders:   len(orders),
		TotalUsers:    len(users),
		TotalRevenue:  revenue,
		OrdersChange:  PctChange(prevOrders, curOrders),
		RevenueChange: PctChange(prevRevenue, curRevenue),
	}
}

// DepartmentCounts fetches every catalog category concurrently and returns
// the item count per collection. A failed category reads as zero.
func (a *Aggregator) DepartmentCounts(ctx context.Context) map[string]int {
	ctx, span := util.StartSpan(ctx, "dashboard.DepartmentCounts")
	defer span.End()

	counts := make([]int, len(a.products))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.products {
		i, src := i, src
		g.Go(func() error {
			list, err := src.List(gctx)
			if err != nil {
				a.logger.Warn("Failed to load category for dashboard",
					zap.String("collection", src.Collection()),
					zap.Error(err))
				return nil
			}
			counts[i] = len(list)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]int, len(a.products))
	for i, src := range a.products {
		out[src.Collection()] = counts[i]
	}
	return out
}

// ChartData buckets order counts and revenue over the requested range.
// Orders without a creation timestamp are excluded.
func (a *Aggregator) ChartData(ctx context.Context, r Range) (ChartData, error) {
	ctx, span := util.StartSpan(ctx, "dashboard.ChartData")
	defer span.End()

	orders, err := a.orders.List(ctx)
	if err != nil {
		return ChartData{}, fmt.Errorf("failed to load orders for chart: %w", err)
	}

	now := a.now()
	var data ChartData
	switch r {
	case RangeWeek:
		data = bucketDaily(orders, now, 7)
	case RangeMonth:
		data = bucketWeekly(orders, now, 4)
	case RangeSixMonths:
		data = bucketMonthly(orders, now, 6)
	case RangeYear:
		data = bucketMonthly(orders, now, 12)
	default:
		return ChartData{}, fmt.Errorf("unknown chart range: %q", r)
	}

	data.Change = halfSplitChange(data.Values)
	return data, nil
}

// bucketDaily produces one bucket per calendar day, ending today. Orders
// are matched on date components, not elapsed duration, so a shortened
// DST day still lands in its own bucket.
func bucketDaily(orders []models.Order, now time.Time, days int) ChartData {
	labels := make([]string, days)
	values := make([]float64, days)
	revenue := make([]float64, days)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type dateKey struct {
		year  int
		month time.Month
		day   int
	}
	index := make(map[dateKey]int, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1)
		labels[i] = arabicWeekdays[int(day.Weekday())]
		index[dateKey{day.Year(), day.Month(), day.Day()}] = i
	}
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		created := o.CreatedAt.In(now.Location())
		if i, ok := index[dateKey{created.Year(), created.Month(), created.Day()}]; ok {
			values[i]++
			revenue[i] += o.TotalAmount
		}
	}
	return ChartData{Labels: labels, Values: values, Revenue: revenue}
}

// bucketWeekly produces trailing 7-day windows ending today, oldest first.
func bucketWeekly(orders []models.Order, now time.Time, weeks int) ChartData {
	labels := make([]string, weeks)
	values := make([]float64, weeks)
	revenue := make([]float64, weeks)
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	for i := 0; i < weeks; i++ {
		labels[i] = fmt.Sprintf("الأسبوع %d", i+1)
	}
	start := end.AddDate(0, 0, -7*weeks)
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		created := o.CreatedAt.In(now.Location())
		if created.Before(start) || !created.Before(end) {
			continue
		}
		bucket := int(created.Sub(start).Hours() / 24 / 7)
		if bucket >= 0 && bucket < weeks {
			values[bucket]++
			revenue[bucket] += o.TotalAmount
		}
	}
	return ChartData{Labels: labels, Values: values, Revenue: revenue}
}

// bucketMonthly produces one bucket per calendar month, ending with the
// current month.
func bucketMonthly(orders []models.Order, now time.Time, months int) ChartData {
	labels := make([]string, months)
	values := make([]float64, months)
	revenue := make([]float64, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1-months, 0)

	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		labels[i] = arabicMonths[int(m.Month())-1]
	}
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		created := o.CreatedAt.In(now.Location())
		bucket := (created.Year()-first.Year())*12 + int(created.Month()) - int(first.Month())
		if bucket >= 0 && bucket < months {
			values[bucket]++
			revenue[bucket] += o.TotalAmount
		}
	}
	return ChartData{Labels: labels, Values: values, Revenue: revenue}
}

// halfSplitChange compares the later half of the series against the
// earlier half. The middle bucket of an odd-length series counts toward
// the later half.
func halfSplitChange(values []float64) int {
	if len(values) < 2 {
		return 0
	}
	mid := len(values) / 2
	var older, newer float64
	for i, v := range values {
		if i < mid {
			older += v
		} else {
			newer += v
		}
	}
	return PctChange(older, newer)
}
