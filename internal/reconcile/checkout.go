package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NALLOO/AnTruaNao-V2/internal/obs"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/vnpay"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/money"
)

// FinalizedWeeks lists the weeks open for payment
type FinalizedWeeks interface {
	ListFinalized(ctx context.Context) ([]*week.Week, error)
}

// PaymentReader reads a member's payment for a week
type PaymentReader interface {
	Get(ctx context.Context, userID, weekID string) (*payment.Payment, error)
}

// DueWeek is a finalized week a member still has to pay for
type DueWeek struct {
	Week       *week.Week
	UserID     string
	UserName   string
	Amount     float64
	PaymentURL string
}

// ReturnResult is the gateway return redirect decoded for display
type ReturnResult struct {
	IsSuccess         bool
	SignatureValid    *bool
	UserName          string
	WeekDate          string
	Amount            float64
	TransactionNo     string
	TxnRef            string
	ResponseCode      string
	TransactionStatus string
}

// Checkout builds the member-facing payment page and gateway links
type Checkout struct {
	users    UserFinder
	weeks    FinalizedWeeks
	totals   TotalsSource
	payments PaymentReader
	client   *vnpay.Client
	loc      *time.Location
	metrics  *obs.Metrics
	log      zerolog.Logger
	tracer   trace.Tracer
}

// NewCheckout creates a checkout. metrics may be nil.
func NewCheckout(users UserFinder, weeks FinalizedWeeks, totals TotalsSource, payments PaymentReader, client *vnpay.Client, loc *time.Location, metrics *obs.Metrics, log zerolog.Logger) *Checkout {
	if loc == nil {
		loc = time.UTC
	}
	return &Checkout{
		users:    users,
		weeks:    weeks,
		totals:   totals,
		payments: payments,
		client:   client,
		loc:      loc,
		metrics:  metrics,
		log:      log,
		tracer:   otel.Tracer("github.com/NALLOO/AnTruaNao-V2/internal/reconcile"),
	}
}

// DueWeeks lists the finalized weeks, newest first, where name owes money
// and has not paid. A missing gateway config leaves PaymentURL empty.
func (c *Checkout) DueWeeks(ctx context.Context, name, clientIP string) ([]DueWeek, error) {
	due := make([]DueWeek, 0)

	name = strings.TrimSpace(name)
	if name == "" {
		return due, nil
	}

	u, err := c.users.FindByNameInsensitive(ctx, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return due, nil
	}

	weeks, err := c.weeks.ListFinalized(ctx)
	if err != nil {
		return nil, err
	}

	for _, w := range weeks {
		total, err := c.totals.UserTotal(ctx, w, u.ID)
		if err != nil {
			return nil, err
		}
		if total == nil {
			continue
		}

		p, err := c.payments.Get(ctx, u.ID, w.ID)
		if err != nil {
			return nil, err
		}
		if p != nil && p.Paid {
			continue
		}

		item := DueWeek{Week: w, UserID: u.ID, UserName: u.Name, Amount: total.TotalAmount}
		link, err := c.PaymentLink(ctx, w, u.ID, u.Name, total.TotalAmount, clientIP)
		if err != nil {
			c.log.Error().Err(err).Str("user_id", u.ID).Str("week_id", w.ID).Msg("failed to build payment link")
		} else {
			item.PaymentURL = link
		}
		due = append(due, item)
	}

	return due, nil
}

// PaymentLink builds the signed gateway URL for a member's week balance
func (c *Checkout) PaymentLink(ctx context.Context, w *week.Week, userID, userName string, amount float64, clientIP string) (string, error) {
	_, span := c.tracer.Start(ctx, "reconcile.PaymentLink", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("week.id", w.ID),
	))
	defer span.End()

	if c.client == nil {
		c.metrics.ObservePaymentLink("missing_config")
		return "", vnpay.ErrMissingConfig
	}

	link, err := c.client.PaymentURL(vnpay.PaymentRequest{
		UserID:    userID,
		WeekID:    w.ID,
		Amount:    amount,
		OrderInfo: FormatMemo(userName, w.StartDate.In(c.loc)),
		ClientIP:  clientIP,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment link failed")
		if errors.Is(err, vnpay.ErrMissingConfig) {
			c.metrics.ObservePaymentLink("missing_config")
		} else {
			c.metrics.ObservePaymentLink("error")
		}
		return "", err
	}

	c.metrics.ObservePaymentLink("ok")
	return link, nil
}

// Return decodes the gateway return redirect. It never changes state; the
// webhook is the only path that marks payments.
func (c *Checkout) Return(params map[string]string) ReturnResult {
	n := ParseNotification(params)
	res := ReturnResult{
		IsSuccess:         n.Succeeded(),
		TransactionNo:     n.TransactionNo,
		TxnRef:            n.TxnRef,
		ResponseCode:      n.ResponseCode,
		TransactionStatus: n.TransactionStatus,
	}

	if amount, err := n.Amount(); err == nil {
		res.Amount = amount
	}
	if memo, err := ParseMemo(n.OrderInfo); err == nil {
		res.UserName = memo.Name
		res.WeekDate = week.FormatDate(memo.Date(c.loc))
	}
	if c.client != nil && params[vnpay.FieldSecureHash] != "" {
		valid := c.client.Verify(params) == nil
		res.SignatureValid = &valid
	}

	return res
}

// FormattedAmount renders the due amount for display
func (d DueWeek) FormattedAmount() string {
	return money.FormatVND(d.Amount)
}
