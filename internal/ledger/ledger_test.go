package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/middleware"
)

func TestAggregateUserTotals(t *testing.T) {
	charges := []Charge{
		{UserID: "u2", UserName: "Binh", FinalPrice: 46666.67},
		{UserID: "u1", UserName: "An", FinalPrice: 46666.67},
		{UserID: "u2", UserName: "Binh renamed", FinalPrice: 26666.67},
		{UserID: "u3", UserName: "Chi", FinalPrice: 0.1},
		{UserID: "u3", UserName: "Chi", FinalPrice: 0.2},
	}

	totals := AggregateUserTotals(charges)
	require.Len(t, totals, 3)

	assert.Equal(t, "u2", totals[0].UserID)
	assert.Equal(t, "Binh", totals[0].UserName)
	assert.Equal(t, 73333.34, totals[0].TotalAmount)
	assert.Equal(t, "u1", totals[1].UserID)
	assert.Equal(t, 0.3, totals[2].TotalAmount)

	assert.Equal(t, totals, AggregateUserTotals(charges))
	assert.Empty(t, AggregateUserTotals(nil))
}

func TestAllPaid(t *testing.T) {
	totals := []UserTotal{{UserID: "u1"}, {UserID: "u2"}}
	paid := map[string]bool{"u1": true}
	lookup := func(id string) bool { return paid[id] }

	assert.False(t, AllPaid(nil, lookup))
	assert.False(t, AllPaid(totals, lookup))
	assert.True(t, AnyUnpaid(totals, lookup))

	paid["u2"] = true
	assert.True(t, AllPaid(totals, lookup))
	assert.False(t, AnyUnpaid(totals, lookup))
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)

	_, ok, err := cache.Get(ctx, "w1", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []UserTotal{{UserID: "u1", UserName: "An", TotalAmount: 46666.67}}
	require.NoError(t, cache.Set(ctx, "w1", 1, want))
	assert.True(t, mr.Exists("ledger:week:w1:v1"))

	got, ok, err := cache.Get(ctx, "w1", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = cache.Get(ctx, "w1", 2)
	require.NoError(t, err)
	assert.False(t, ok, "a bumped version must miss")

	mr.FastForward(2 * time.Minute)
	_, ok, _ = cache.Get(ctx, "w1", 1)
	assert.False(t, ok)
}

type fakeWeeks struct{ weeks []*week.Week }

func (f *fakeWeeks) GetByID(_ context.Context, id string) (*week.Week, error) {
	for _, w := range f.weeks {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWeeks) List(context.Context) ([]*week.WithCount, error) {
	out := make([]*week.WithCount, len(f.weeks))
	for i, w := range f.weeks {
		out[i] = &week.WithCount{Week: *w}
	}
	return out, nil
}

type fakeOrders struct {
	items map[string][]*order.Item
	calls int
}

func (f *fakeOrders) ListByWeek(_ context.Context, weekID string) ([]*order.Order, error) {
	var sum float64
	for _, it := range f.items[weekID] {
		sum += it.FinalPrice
	}
	if sum == 0 {
		return nil, nil
	}
	return []*order.Order{{ID: "o-" + weekID, WeekID: weekID, FinalAmount: sum, Items: f.items[weekID]}}, nil
}

func (f *fakeOrders) ListItemsByWeek(_ context.Context, weekID string) ([]*order.Item, error) {
	f.calls++
	return f.items[weekID], nil
}

type fakePayments map[string][]*payment.Payment

func (f fakePayments) ListByWeek(_ context.Context, weekID string) ([]*payment.Payment, error) {
	return f[weekID], nil
}

func fixture() (*fakeWeeks, *fakeOrders, fakePayments) {
	start := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	weeks := &fakeWeeks{weeks: []*week.Week{
		{ID: "w2", StartDate: start.AddDate(0, 0, 7), EndDate: week.EndOf(start.AddDate(0, 0, 7)), IsFinalized: true},
		{ID: "w1", StartDate: start, EndDate: week.EndOf(start), IsFinalized: true},
		{ID: "w0", StartDate: start.AddDate(0, 0, -7), EndDate: week.EndOf(start.AddDate(0, 0, -7))},
	}}
	orders := &fakeOrders{items: map[string][]*order.Item{
		"w2": {{UserID: "u1", UserName: "An", FinalPrice: 30000}},
		"w1": {
			{UserID: "u1", UserName: "An", FinalPrice: 46666.67},
			{UserID: "u2", UserName: "Binh", FinalPrice: 46666.67},
			{UserID: "u3", UserName: "Chi", FinalPrice: 26666.67},
		},
	}}
	paidAt := start.AddDate(0, 0, 5)
	payments := fakePayments{
		"w2": {{UserID: "u1", WeekID: "w2", Paid: true, PaidAt: &paidAt}},
		"w1": {{UserID: "u1", WeekID: "w1", Paid: true, PaidAt: &paidAt}},
	}
	return weeks, orders, payments
}

func TestService_WeekTotals_CacheMatchesFreshComputation(t *testing.T) {
	ctx := context.Background()
	weeks, orders, payments := fixture()
	cache, _ := newRedisCache(t)

	cached := NewService(weeks, orders, payments, cache, zerolog.Nop())
	fresh := NewService(weeks, orders, payments, nil, zerolog.Nop())
	w1, _ := weeks.GetByID(ctx, "w1")

	first, err := cached.WeekTotals(ctx, w1)
	require.NoError(t, err)
	second, err := cached.WeekTotals(ctx, w1)
	require.NoError(t, err)
	assert.Equal(t, 1, orders.calls, "second read must come from the cache")

	direct, err := fresh.WeekTotals(ctx, w1)
	require.NoError(t, err)
	assert.Equal(t, direct, first)
	assert.Equal(t, direct, second)

	orders.items["w1"] = orders.items["w1"][:1]
	bumped := *w1
	bumped.OrdersVersion++
	after, err := cached.WeekTotals(ctx, &bumped)
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestService_WeekTotals_RenameWithVersionBump(t *testing.T) {
	ctx := context.Background()
	weeks, orders, payments := fixture()
	cache, _ := newRedisCache(t)

	cached := NewService(weeks, orders, payments, cache, zerolog.Nop())
	fresh := NewService(weeks, orders, payments, nil, zerolog.Nop())
	w1, _ := weeks.GetByID(ctx, "w1")

	_, err := cached.WeekTotals(ctx, w1)
	require.NoError(t, err)

	// A member rename bumps the versions of the weeks holding their lines.
	orders.items["w1"][0].UserName = "An Renamed"
	renamed := *w1
	renamed.OrdersVersion++

	got, err := cached.WeekTotals(ctx, &renamed)
	require.NoError(t, err)
	want, err := fresh.WeekTotals(ctx, &renamed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "An Renamed", got[0].UserName)
}

func TestService_UserTotal(t *testing.T) {
	ctx := context.Background()
	weeks, orders, payments := fixture()
	svc := NewService(weeks, orders, payments, nil, zerolog.Nop())
	w1, _ := weeks.GetByID(ctx, "w1")

	total, err := svc.UserTotal(ctx, w1, "u2")
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, 46666.67, total.TotalAmount)

	none, err := svc.UserTotal(ctx, w1, "u9")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestService_Status(t *testing.T) {
	ctx := context.Background()
	weeks, orders, payments := fixture()
	svc := NewService(weeks, orders, payments, nil, zerolog.Nop())

	w2, _ := weeks.GetByID(ctx, "w2")
	st, err := svc.Status(ctx, w2)
	require.NoError(t, err)
	assert.True(t, st.AllPaid)
	assert.True(t, st.HasUsers)

	w1, _ := weeks.GetByID(ctx, "w1")
	st, _ = svc.Status(ctx, w1)
	assert.False(t, st.AllPaid)

	w0, _ := weeks.GetByID(ctx, "w0")
	st, _ = svc.Status(ctx, w0)
	assert.False(t, st.AllPaid)
	assert.False(t, st.HasUsers)
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()
	weeks, orders, payments := fixture()
	svc := NewService(weeks, orders, payments, nil, zerolog.Nop())

	t.Run("anonymous callers only see weeks with unpaid members", func(t *testing.T) {
		board, err := svc.Dashboard(ctx, "w2", false)
		require.NoError(t, err)
		require.Len(t, board.Weeks, 1)
		assert.Equal(t, "w1", board.Weeks[0].ID)
		assert.Equal(t, "w1", board.Selected.ID, "a hidden week falls back to the newest visible")
		require.Len(t, board.Users, 3)
		assert.True(t, board.Users[0].Paid)
		assert.False(t, board.Users[1].Paid)
		assert.Equal(t, 120000.01, board.TotalOrdersAmount)
	})

	t.Run("admins see every week and can pick one", func(t *testing.T) {
		board, err := svc.Dashboard(ctx, "w0", true)
		require.NoError(t, err)
		assert.Len(t, board.Weeks, 3)
		assert.Equal(t, "w0", board.Selected.ID)
		assert.Empty(t, board.Users)
	})

	t.Run("nothing visible", func(t *testing.T) {
		empty := NewService(&fakeWeeks{}, orders, payments, nil, zerolog.Nop())
		board, err := empty.Dashboard(ctx, "", false)
		require.NoError(t, err)
		assert.Nil(t, board.Selected)
		assert.Empty(t, board.Weeks)
	})
}

type stubLinks struct{}

func (stubLinks) PaymentLink(_ context.Context, w *week.Week, _, userName string, _ float64, _ string) (string, error) {
	return "https://pay.example/" + w.ID + "/" + userName, nil
}

func TestHandler_DashboardAttachesLinksForUnpaid(t *testing.T) {
	weeks, orders, payments := fixture()
	h := NewHandler(NewService(weeks, orders, payments, nil, zerolog.Nop()), stubLinks{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/dashboard?weekId=w1", nil)
	req = req.WithContext(middleware.WithAdminID(req.Context(), "admin-1"))
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data DashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.IsAdmin)
	require.Len(t, body.Data.UserTotals, 3)
	assert.Empty(t, body.Data.UserTotals[0].PaymentURL)
	assert.Equal(t, "https://pay.example/w1/Binh", body.Data.UserTotals[1].PaymentURL)
}

func TestHandler_SummaryNotFound(t *testing.T) {
	weeks, orders, payments := fixture()
	h := NewHandler(NewService(weeks, orders, payments, nil, zerolog.Nop()), nil, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weeks/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
