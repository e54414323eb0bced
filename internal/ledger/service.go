package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// WeekSource reads weeks
type WeekSource interface {
	GetByID(ctx context.Context, id string) (*week.Week, error)
	List(ctx context.Context) ([]*week.WithCount, error)
}

// OrderSource reads a week's orders and lines
type OrderSource interface {
	ListByWeek(ctx context.Context, weekID string) ([]*order.Order, error)
	ListItemsByWeek(ctx context.Context, weekID string) ([]*order.Item, error)
}

// PaymentSource reads a week's payments
type PaymentSource interface {
	ListByWeek(ctx context.Context, weekID string) ([]*payment.Payment, error)
}

// Service computes week totals and payment completeness
type Service struct {
	weeks    WeekSource
	orders   OrderSource
	payments PaymentSource
	cache    Cache
	log      zerolog.Logger
}

// NewService creates a ledger service. cache may be nil.
func NewService(weeks WeekSource, orders OrderSource, payments PaymentSource, cache Cache, log zerolog.Logger) *Service {
	return &Service{weeks: weeks, orders: orders, payments: payments, cache: cache, log: log}
}

// WeekTotals returns the per-member totals of a week, served from the cache
// when an entry for the week's current orders-version exists
func (s *Service) WeekTotals(ctx context.Context, w *week.Week) ([]UserTotal, error) {
	if s.cache != nil {
		totals, ok, err := s.cache.Get(ctx, w.ID, w.OrdersVersion)
		if err != nil {
			s.log.Warn().Err(err).Str("week_id", w.ID).Msg("ledger cache read failed")
		} else if ok {
			return totals, nil
		}
	}

	items, err := s.orders.ListItemsByWeek(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	totals := AggregateUserTotals(chargesOf(items))

	if s.cache != nil {
		if err := s.cache.Set(ctx, w.ID, w.OrdersVersion, totals); err != nil {
			s.log.Warn().Err(err).Str("week_id", w.ID).Msg("ledger cache write failed")
		}
	}
	return totals, nil
}

// UserTotal returns what userID owes for w, or nil when they have no charges
func (s *Service) UserTotal(ctx context.Context, w *week.Week, userID string) (*UserTotal, error) {
	totals, err := s.WeekTotals(ctx, w)
	if err != nil {
		return nil, err
	}
	return Find(totals, userID), nil
}

// Status derives allPaid and hasUsers for a week
func (s *Service) Status(ctx context.Context, w *week.Week) (week.Status, error) {
	totals, paid, err := s.totalsWithPayments(ctx, w)
	if err != nil {
		return week.Status{}, err
	}
	return week.Status{
		AllPaid:  AllPaid(totals, paidFunc(paid)),
		HasUsers: len(totals) > 0,
	}, nil
}

// Summary returns the member totals of a week with their payment state
func (s *Service) Summary(ctx context.Context, weekID string) (*Summary, error) {
	w, err := s.weeks.GetByID(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, week.ErrWeekNotFound
	}

	totals, paid, err := s.totalsWithPayments(ctx, w)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Week:     w,
		Users:    withPayments(totals, paid),
		AllPaid:  AllPaid(totals, paidFunc(paid)),
		HasUsers: len(totals) > 0,
	}, nil
}

// Dashboard assembles the landing page. Admins see every week; anonymous
// callers only see weeks where somebody still owes money. The requested week
// is selected when visible, otherwise the newest one.
func (s *Service) Dashboard(ctx context.Context, weekID string, admin bool) (*Dashboard, error) {
	all, err := s.weeks.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*week.Week, 0, len(all))
	for _, wc := range all {
		w := wc.Week
		if !admin {
			totals, paid, err := s.totalsWithPayments(ctx, &w)
			if err != nil {
				return nil, err
			}
			if !AnyUnpaid(totals, paidFunc(paid)) {
				continue
			}
		}
		visible = append(visible, &w)
	}

	board := &Dashboard{IsAdmin: admin, Weeks: visible}
	if len(visible) == 0 {
		return board, nil
	}

	selected := visible[0]
	for _, w := range visible {
		if w.ID == weekID {
			selected = w
			break
		}
	}
	board.Selected = selected

	orders, err := s.orders.ListByWeek(ctx, selected.ID)
	if err != nil {
		return nil, err
	}
	board.Orders = orders

	var sum float64
	for _, o := range orders {
		sum += o.FinalAmount
	}
	board.TotalOrdersAmount = money.Round2(sum)

	totals, paid, err := s.totalsWithPayments(ctx, selected)
	if err != nil {
		return nil, err
	}
	board.Users = withPayments(totals, paid)
	return board, nil
}

func (s *Service) totalsWithPayments(ctx context.Context, w *week.Week) ([]UserTotal, map[string]*payment.Payment, error) {
	totals, err := s.WeekTotals(ctx, w)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.payments.ListByWeek(ctx, w.ID)
	if err != nil {
		return nil, nil, err
	}
	return totals, payment.PaidSet(payments), nil
}

func chargesOf(items []*order.Item) []Charge {
	charges := make([]Charge, len(items))
	for i, it := range items {
		charges[i] = Charge{UserID: it.UserID, UserName: it.UserName, FinalPrice: it.FinalPrice}
	}
	return charges
}

func paidFunc(paid map[string]*payment.Payment) func(string) bool {
	return func(userID string) bool {
		p, ok := paid[userID]
		return ok && p.Paid
	}
}

func withPayments(totals []UserTotal, paid map[string]*payment.Payment) []UserStatus {
	out := make([]UserStatus, len(totals))
	for i, t := range totals {
		out[i] = UserStatus{UserTotal: t}
		if p, ok := paid[t.UserID]; ok && p.Paid {
			out[i].Paid = true
			out[i].PaidAt = p.PaidAt
		}
	}
	return out
}

// Summary is a week's totals with payment state
type Summary struct {
	Week     *week.Week
	Users    []UserStatus
	AllPaid  bool
	HasUsers bool
}

// UserStatus is a member total with its payment flag
type UserStatus struct {
	UserTotal
	Paid   bool
	PaidAt *time.Time
}

// Dashboard is the landing page model
type Dashboard struct {
	IsAdmin           bool
	Weeks             []*week.Week
	Selected          *week.Week
	Users             []UserStatus
	Orders            []*order.Order
	TotalOrdersAmount float64
}
