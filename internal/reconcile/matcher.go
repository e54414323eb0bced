package reconcile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NALLOO/AnTruaNao-V2/internal/ledger"
	"github.com/NALLOO/AnTruaNao-V2/internal/notification"
	"github.com/NALLOO/AnTruaNao-V2/internal/obs"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
)

// Tolerance is the largest accepted gap between the paid amount and the
// member's week total, absorbing split rounding drift.
const Tolerance = 100

// Common errors
var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrInvalidOrderInfo  = errors.New("invalid order info format")
	ErrInvalidDate       = errors.New("invalid date format")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrUserNotFound      = errors.New("user not found")
	ErrWeekNotFound      = errors.New("week not found")
	ErrNoCharges         = errors.New("user has no orders in this week")
	ErrAmountMismatch    = errors.New("amount mismatch")
)

// AmountMismatchError carries both sides of a failed amount check
type AmountMismatchError struct {
	Expected float64
	Received float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("%s. Expected: %s, Received: %s", ErrAmountMismatch, formatAmount(e.Expected), formatAmount(e.Received))
}

func (e *AmountMismatchError) Unwrap() error { return ErrAmountMismatch }

// UserFinder resolves a memo name to a member
type UserFinder interface {
	FindByNameInsensitive(ctx context.Context, name string) (*user.User, error)
}

// WeekFinder resolves a memo date to a finalized week
type WeekFinder interface {
	FindFinalizedOn(ctx context.Context, day time.Time) (*week.Week, error)
}

// TotalsSource computes what a member owes for a week
type TotalsSource interface {
	UserTotal(ctx context.Context, w *week.Week, userID string) (*ledger.UserTotal, error)
}

// PaymentMarker flips a member's week to paid
type PaymentMarker interface {
	MarkPaid(ctx context.Context, userID, weekID string) (*payment.Payment, error)
}

// Verifier checks the gateway signature of a parameter map
type Verifier interface {
	Verify(params map[string]string) error
}

// Recorder appends processed notifications to the audit log
type Recorder interface {
	Record(ctx context.Context, e notification.Entry) (*notification.Notification, error)
}

// Result describes an applied notification
type Result struct {
	UserID   string
	UserName string
	WeekID   string
	Amount   float64
	Payment  *payment.Payment
}

// Matcher turns gateway notifications into paid flags
type Matcher struct {
	users    UserFinder
	weeks    WeekFinder
	totals   TotalsSource
	payments PaymentMarker
	loc      *time.Location
	log      zerolog.Logger

	verifier Verifier
	recorder Recorder
	metrics  *obs.Metrics
	tracer   trace.Tracer
}

// NewMatcher creates a matcher. Signature checks, the audit log and metrics
// are off until set with the With* methods.
func NewMatcher(users UserFinder, weeks WeekFinder, totals TotalsSource, payments PaymentMarker, loc *time.Location, log zerolog.Logger) *Matcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Matcher{
		users:    users,
		weeks:    weeks,
		totals:   totals,
		payments: payments,
		loc:      loc,
		log:      log,
		tracer:   otel.Tracer("github.com/NALLOO/AnTruaNao-V2/internal/reconcile"),
	}
}

// WithVerifier enables signature verification
func (m *Matcher) WithVerifier(v Verifier) *Matcher {
	m.verifier = v
	return m
}

// WithRecorder enables the notification audit log
func (m *Matcher) WithRecorder(r Recorder) *Matcher {
	m.recorder = r
	return m
}

// WithMetrics enables outcome counters
func (m *Matcher) WithMetrics(metrics *obs.Metrics) *Matcher {
	m.metrics = metrics
	return m
}

// Reconcile applies one notification. It is transport agnostic: callers pass
// the flat field map however it arrived. Applying the same notification twice
// leaves a single paid row.
func (m *Matcher) Reconcile(ctx context.Context, params map[string]string) (*Result, error) {
	ctx, span := m.tracer.Start(ctx, "reconcile.Reconcile")
	defer span.End()

	n := ParseNotification(params)
	span.SetAttributes(attribute.String("vnpay.txn_ref", n.TxnRef))

	res, err := m.reconcile(ctx, n)
	m.finish(ctx, span, n, res, err)
	return res, err
}

func (m *Matcher) reconcile(ctx context.Context, n Notification) (*Result, error) {
	if m.verifier != nil {
		if err := m.verifier.Verify(n.Params); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	if !n.Succeeded() {
		return nil, ErrTransactionFailed
	}

	memo, err := ParseMemo(n.OrderInfo)
	if err != nil {
		return nil, err
	}

	amount, err := n.Amount()
	if err != nil {
		return nil, err
	}

	u, err := m.users.FindByNameInsensitive(ctx, memo.Name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	w, err := m.weeks.FindFinalizedOn(ctx, memo.Date(m.loc))
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWeekNotFound
	}

	total, err := m.totals.UserTotal(ctx, w, u.ID)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return nil, ErrNoCharges
	}

	if math.Abs(amount-total.TotalAmount) > Tolerance {
		return nil, &AmountMismatchError{Expected: total.TotalAmount, Received: amount}
	}

	p, err := m.payments.MarkPaid(ctx, u.ID, w.ID)
	if err != nil {
		return nil, err
	}

	return &Result{UserID: u.ID, UserName: u.Name, WeekID: w.ID, Amount: amount, Payment: p}, nil
}

func (m *Matcher) finish(ctx context.Context, span trace.Span, n Notification, res *Result, err error) {
	outcome := Outcome(err)
	m.metrics.ObserveReconciliation(outcome)
	span.SetAttributes(attribute.String("reconcile.outcome", outcome))

	entry := notification.Entry{Payload: n.Params}
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("user.id", res.UserID), attribute.String("week.id", res.WeekID))
		m.log.Info().
			Str("txn_ref", n.TxnRef).
			Str("user_id", res.UserID).
			Str("week_id", res.WeekID).
			Float64("amount", res.Amount).
			Msg("payment reconciled")

		amount := res.Amount
		entry.Outcome = notification.OutcomeApplied
		entry.UserID = res.UserID
		entry.WeekID = res.WeekID
		entry.Amount = &amount
	case IsRejection(err):
		span.SetStatus(codes.Error, outcome)
		m.log.Warn().
			Str("txn_ref", n.TxnRef).
			Str("memo", n.OrderInfo).
			Str("reason", err.Error()).
			Msg("payment notification rejected")

		entry.Outcome = notification.OutcomeRejected
		entry.Reason = err.Error()
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
		m.log.Error().Err(err).Str("txn_ref", n.TxnRef).Msg("failed to reconcile payment notification")

		entry.Outcome = notification.OutcomeRejected
		entry.Reason = "internal error"
	}

	if m.recorder == nil {
		return
	}
	if _, err := m.recorder.Record(ctx, entry); err != nil {
		m.log.Error().Err(err).Str("txn_ref", n.TxnRef).Msg("failed to record payment notification")
	}
}

// IsRejection reports whether err is a normal negative answer to the gateway
// rather than a server fault
func IsRejection(err error) bool {
	return err != nil && Outcome(err) != "error"
}

// Outcome returns the metric label for a reconciliation result
func Outcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrTransactionFailed):
		return "transaction_failed"
	case errors.Is(err, ErrInvalidOrderInfo):
		return "invalid_order_info"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrWeekNotFound):
		return "week_not_found"
	case errors.Is(err, ErrNoCharges):
		return "no_charges"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	default:
		return "error"
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
