package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NALLOO/AnTruaNao-V2/internal/ledger"
	"github.com/NALLOO/AnTruaNao-V2/internal/notification"
	"github.com/NALLOO/AnTruaNao-V2/internal/obs"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/vnpay"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
)

const secret = "SECRETKEY"

var hcm = mustLoad("Asia/Ho_Chi_Minh")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type fakeUsers map[string]*user.User

func (f fakeUsers) FindByNameInsensitive(_ context.Context, name string) (*user.User, error) {
	for _, u := range f {
		if strings.EqualFold(u.Name, strings.TrimSpace(name)) {
			return u, nil
		}
	}
	return nil, nil
}

type fakeWeeks []*week.Week

func (f fakeWeeks) FindFinalizedOn(_ context.Context, day time.Time) (*week.Week, error) {
	day = day.In(hcm)
	for _, w := range f {
		s := w.StartDate.In(hcm)
		if w.IsFinalized && s.Year() == day.Year() && s.YearDay() == day.YearDay() {
			return w, nil
		}
	}
	return nil, nil
}

func (f fakeWeeks) ListFinalized(context.Context) ([]*week.Week, error) {
	var out []*week.Week
	for _, w := range f {
		if w.IsFinalized {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeTotals maps weekID -> userID -> total
type fakeTotals map[string]map[string]float64

func (f fakeTotals) UserTotal(_ context.Context, w *week.Week, userID string) (*ledger.UserTotal, error) {
	total, ok := f[w.ID][userID]
	if !ok {
		return nil, nil
	}
	return &ledger.UserTotal{UserID: userID, TotalAmount: total}, nil
}

type fakePayments struct {
	mu   sync.Mutex
	rows map[string]*payment.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{rows: map[string]*payment.Payment{}}
}

func (f *fakePayments) MarkPaid(_ context.Context, userID, weekID string) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	p := &payment.Payment{ID: userID + "/" + weekID, UserID: userID, WeekID: weekID, Paid: true, PaidAt: &now}
	f.rows[userID+"/"+weekID] = p
	return p, nil
}

func (f *fakePayments) Get(_ context.Context, userID, weekID string) (*payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[userID+"/"+weekID], nil
}

type fakeRecorder struct {
	entries []notification.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e notification.Entry) (*notification.Notification, error) {
	f.entries = append(f.entries, e)
	return &notification.Notification{Outcome: e.Outcome}, nil
}

type fixture struct {
	users    fakeUsers
	weeks    fakeWeeks
	totals   fakeTotals
	payments *fakePayments
	recorder *fakeRecorder
}

func newFixture() *fixture {
	return &fixture{
		users: fakeUsers{
			"u1": {ID: "u1", Name: "John"},
			"u2": {ID: "u2", Name: "Binh"},
		},
		weeks: fakeWeeks{
			{ID: "w1", StartDate: time.Date(2026, 1, 12, 0, 0, 0, 0, hcm), EndDate: week.EndOf(time.Date(2026, 1, 12, 0, 0, 0, 0, hcm)), IsFinalized: true},
			{ID: "w2", StartDate: time.Date(2026, 1, 19, 0, 0, 0, 0, hcm), EndDate: week.EndOf(time.Date(2026, 1, 19, 0, 0, 0, 0, hcm))},
			{ID: "w0", StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, hcm), EndDate: week.EndOf(time.Date(2026, 1, 5, 0, 0, 0, 0, hcm)), IsFinalized: true},
		},
		totals: fakeTotals{
			"w1": {"u1": 46666.67},
			"w2": {"u1": 30000},
			"w0": {"u1": 25000, "u2": 10000},
		},
		payments: newFakePayments(),
		recorder: &fakeRecorder{},
	}
}

func (f *fixture) matcher() *Matcher {
	return NewMatcher(f.users, f.weeks, f.totals, f.payments, hcm, zerolog.Nop()).WithRecorder(f.recorder)
}

func notice(memo, amountMinor string) map[string]string {
	return map[string]string{
		FieldAmount:            amountMinor,
		FieldTransactionStatus: "00",
		FieldResponseCode:      "00",
		FieldOrderInfo:         memo,
		FieldTxnRef:            "REF1",
		FieldTransactionNo:     "14000001",
	}
}

func signed(params map[string]string) map[string]string {
	params[vnpay.FieldSecureHash] = vnpay.Sign(secret, vnpay.SigningData(params))
	return params
}

func TestParseMemo(t *testing.T) {
	tests := []struct {
		name    string
		memo    string
		want    Memo
		wantErr error
	}{
		{name: "plain", memo: "john tien com 12/01/2026", want: Memo{Name: "john", Day: 12, Month: 1, Year: 2026}},
		{name: "marker case ignored", memo: "  Nguyen Van A TIEN Com 5/1/2026 ", want: Memo{Name: "Nguyen Van A", Day: 5, Month: 1, Year: 2026}},
		{name: "no marker", memo: "john 12/01/2026", wantErr: ErrInvalidOrderInfo},
		{name: "no name", memo: "tien com 12/01/2026", wantErr: ErrInvalidOrderInfo},
		{name: "dash date", memo: "john tien com 12-01-2026", wantErr: ErrInvalidDate},
		{name: "missing year", memo: "john tien com 12/01", wantErr: ErrInvalidDate},
		{name: "trailing text", memo: "john tien com 12/01/2026 thanks", wantErr: ErrInvalidDate},
		{name: "not a calendar day", memo: "john tien com 31/02/2026", wantErr: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemo(tt.memo)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMemo_ParsesBack(t *testing.T) {
	start := time.Date(2026, 1, 12, 0, 0, 0, 0, hcm)
	memo := FormatMemo(" John ", start)
	assert.Equal(t, "John tien com 12/01/2026", memo)

	m, err := ParseMemo(memo)
	require.NoError(t, err)
	assert.Equal(t, "John", m.Name)
	assert.True(t, m.Date(hcm).Equal(start))
}

func TestMatcher_AppliesMatchingPayment(t *testing.T) {
	f := newFixture()
	m := f.matcher()

	res, err := m.Reconcile(context.Background(), notice("john tien com 12/01/2026", "4666667"))
	require.NoError(t, err)
	assert.Equal(t, "u1", res.UserID)
	assert.Equal(t, "w1", res.WeekID)
	assert.InDelta(t, 46666.67, res.Amount, 0.001)

	p, _ := f.payments.Get(context.Background(), "u1", "w1")
	require.NotNil(t, p)
	assert.True(t, p.Paid)
	assert.NotNil(t, p.PaidAt)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, notification.OutcomeApplied, f.recorder.entries[0].Outcome)
	assert.Equal(t, "w1", f.recorder.entries[0].WeekID)
}

func TestMatcher_RedeliveryKeepsOnePaidRow(t *testing.T) {
	f := newFixture()
	m := f.matcher()
	params := notice("John tien com 12/01/2026", "4666667")

	_, err := m.Reconcile(context.Background(), params)
	require.NoError(t, err)
	_, err = m.Reconcile(context.Background(), params)
	require.NoError(t, err)

	assert.Len(t, f.payments.rows, 1)
	assert.Len(t, f.recorder.entries, 2)
}

func TestMatcher_ToleratesRoundingDrift(t *testing.T) {
	f := newFixture()
	_, err := f.matcher().Reconcile(context.Background(), notice("john tien com 12/01/2026", "4676600"))
	require.NoError(t, err)
}

func TestMatcher_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "exactly 100 over", amount: "4676667"},
		{name: "exactly 100 under", amount: "4656667"},
		{name: "100.01 over", amount: "4676668", wantErr: ErrAmountMismatch},
		{name: "100.01 under", amount: "4656666", wantErr: ErrAmountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.matcher().Reconcile(context.Background(), notice("john tien com 12/01/2026", tt.amount))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.payments.rows)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.payments.rows, 1)
		})
	}
}

func TestMatcher_AmountMismatch(t *testing.T) {
	f := newFixture()

	_, err := f.matcher().Reconcile(context.Background(), notice("john tien com 12/01/2026", "5000000"))
	require.ErrorIs(t, err, ErrAmountMismatch)

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 46666.67, mismatch.Expected)
	assert.Equal(t, 50000.0, mismatch.Received)
	assert.Contains(t, err.Error(), "Expected: 46666.67, Received: 50000")

	assert.Empty(t, f.payments.rows)
	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, notification.OutcomeRejected, f.recorder.entries[0].Outcome)
}

func TestMatcher_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		wantErr error
	}{
		{
			name: "failed transaction",
			params: func() map[string]string {
				p := notice("john tien com 12/01/2026", "4666667")
				p[FieldResponseCode] = "24"
				return p
			}(),
			wantErr: ErrTransactionFailed,
		},
		{name: "malformed memo", params: notice("john 12/01/2026", "4666667"), wantErr: ErrInvalidOrderInfo},
		{name: "bad date", params: notice("john tien com 12/13/2026", "4666667"), wantErr: ErrInvalidDate},
		{name: "non numeric amount", params: notice("john tien com 12/01/2026", "abc"), wantErr: ErrInvalidAmount},
		{name: "unknown member", params: notice("mai tien com 12/01/2026", "4666667"), wantErr: ErrUserNotFound},
		{name: "week not finalized", params: notice("john tien com 19/01/2026", "3000000"), wantErr: ErrWeekNotFound},
		{name: "no week that day", params: notice("john tien com 13/01/2026", "4666667"), wantErr: ErrWeekNotFound},
		{name: "no charges", params: notice("binh tien com 12/01/2026", "1000000"), wantErr: ErrNoCharges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.matcher().Reconcile(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsRejection(err))
			assert.Empty(t, f.payments.rows)
		})
	}
}

func TestMatcher_Signature(t *testing.T) {
	client := vnpay.NewClient(vnpay.Config{TmnCode: "ANTRUA01", HashSecret: secret, PayURL: "https://pay.example", ReturnURL: "https://app.example/return"})

	t.Run("valid signature", func(t *testing.T) {
		f := newFixture()
		m := f.matcher().WithVerifier(client)
		_, err := m.Reconcile(context.Background(), signed(notice("john tien com 12/01/2026", "4666667")))
		require.NoError(t, err)
	})

	t.Run("tampered amount", func(t *testing.T) {
		f := newFixture()
		m := f.matcher().WithVerifier(client)
		params := signed(notice("john tien com 12/01/2026", "4666667"))
		params[FieldAmount] = "100"

		_, err := m.Reconcile(context.Background(), params)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Empty(t, f.payments.rows)
	})

	t.Run("unsigned", func(t *testing.T) {
		f := newFixture()
		m := f.matcher().WithVerifier(client)
		_, err := m.Reconcile(context.Background(), notice("john tien com 12/01/2026", "4666667"))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestMatcher_CountsOutcomes(t *testing.T) {
	f := newFixture()
	metrics := obs.NewMetrics("test", prometheus.NewRegistry())
	m := f.matcher().WithMetrics(metrics)

	_, _ = m.Reconcile(context.Background(), notice("john tien com 12/01/2026", "4666667"))
	_, _ = m.Reconcile(context.Background(), notice("mai tien com 12/01/2026", "4666667"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reconciliations.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reconciliations.WithLabelValues("user_not_found")))
}

func newHandler(f *fixture, client *vnpay.Client) *Handler {
	m := f.matcher()
	if client != nil {
		m.WithVerifier(client)
	}
	checkout := NewCheckout(f.users, f.weeks, f.totals, f.payments, client, hcm, nil, zerolog.Nop())
	return NewHandler(m, checkout, zerolog.Nop())
}

func TestHandler_WebhookTransports(t *testing.T) {
	client := vnpay.NewClient(vnpay.Config{TmnCode: "ANTRUA01", HashSecret: secret, PayURL: "https://pay.example", ReturnURL: "https://app.example/return"})
	params := signed(notice("john tien com 12/01/2026", "4666667"))

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	jsonBody, err := json.Marshal(params)
	require.NoError(t, err)

	requests := map[string]func() *http.Request{
		"GET query": func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/webhook?"+form.Encode(), nil)
		},
		"POST form": func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req
		},
		"POST json": func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(jsonBody)))
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
			return req
		},
	}

	for name, build := range requests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			rec := httptest.NewRecorder()
			newHandler(f, client).Routes().ServeHTTP(rec, build())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body struct {
				Success bool            `json:"success"`
				Data    WebhookResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, "Payment updated successfully", body.Data.Message)
			assert.Equal(t, "u1", body.Data.UserID)
			assert.Equal(t, "w1", body.Data.WeekID)
			assert.Len(t, f.payments.rows, 1)
		})
	}
}

func TestHandler_WebhookErrors(t *testing.T) {
	client := vnpay.NewClient(vnpay.Config{TmnCode: "ANTRUA01", HashSecret: secret, PayURL: "https://pay.example", ReturnURL: "https://app.example/return"})

	tests := []struct {
		name     string
		params   map[string]string
		wantCode int
		wantErr  string
	}{
		{name: "bad signature", params: notice("john tien com 12/01/2026", "4666667"), wantCode: http.StatusUnauthorized, wantErr: "INVALID_SIGNATURE"},
		{name: "mismatch", params: signed(notice("john tien com 12/01/2026", "100000")), wantCode: http.StatusBadRequest, wantErr: "AMOUNT_MISMATCH"},
		{name: "unknown member", params: signed(notice("mai tien com 12/01/2026", "4666667")), wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "failed transaction", params: signed(map[string]string{FieldTransactionStatus: "02", FieldResponseCode: "24"}), wantCode: http.StatusBadRequest, wantErr: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			for k, v := range tt.params {
				q.Set(k, v)
			}
			rec := httptest.NewRecorder()
			newHandler(newFixture(), client).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?"+q.Encode(), nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
		})
	}
}

func TestCheckout_DueWeeks(t *testing.T) {
	client := vnpay.NewClient(vnpay.Config{TmnCode: "ANTRUA01", HashSecret: secret, PayURL: "https://pay.example/vpcpay.html", ReturnURL: "https://app.example/return"})

	t.Run("unpaid finalized weeks with links", func(t *testing.T) {
		f := newFixture()
		_, _ = f.payments.MarkPaid(context.Background(), "u1", "w0")
		c := NewCheckout(f.users, f.weeks, f.totals, f.payments, client, hcm, nil, zerolog.Nop())

		due, err := c.DueWeeks(context.Background(), "JOHN", "10.0.0.1")
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "w1", due[0].Week.ID)
		assert.Equal(t, 46666.67, due[0].Amount)

		link, err := url.Parse(due[0].PaymentURL)
		require.NoError(t, err)
		q := link.Query()
		assert.Equal(t, "4666667", q.Get("vnp_Amount"))
		assert.Equal(t, "John tien com 12/01/2026", q.Get("vnp_OrderInfo"))
		assert.Equal(t, "10.0.0.1", q.Get("vnp_IpAddr"))
		assert.NotEmpty(t, q.Get(vnpay.FieldSecureHash))
	})

	t.Run("missing config keeps the item without a link", func(t *testing.T) {
		f := newFixture()
		c := NewCheckout(f.users, f.weeks, f.totals, f.payments, vnpay.NewClient(vnpay.Config{}), hcm, nil, zerolog.Nop())

		due, err := c.DueWeeks(context.Background(), "john", "")
		require.NoError(t, err)
		require.Len(t, due, 2)
		for _, d := range due {
			assert.Empty(t, d.PaymentURL)
		}
	})

	t.Run("blank or unknown name", func(t *testing.T) {
		f := newFixture()
		c := NewCheckout(f.users, f.weeks, f.totals, f.payments, client, hcm, nil, zerolog.Nop())

		due, err := c.DueWeeks(context.Background(), "  ", "")
		require.NoError(t, err)
		assert.Empty(t, due)

		due, err = c.DueWeeks(context.Background(), "mai", "")
		require.NoError(t, err)
		assert.Empty(t, due)
	})
}

func TestHandler_PayAndReturn(t *testing.T) {
	client := vnpay.NewClient(vnpay.Config{TmnCode: "ANTRUA01", HashSecret: secret, PayURL: "https://pay.example", ReturnURL: "https://app.example/return"})
	h := newHandler(newFixture(), client)

	rec := httptest.NewRecorder()
	h.Pay(rec, httptest.NewRequest(http.MethodGet, "/pay?name=john", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var pay struct {
		Data PayPageResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pay))
	assert.Len(t, pay.Data.Weeks, 2)

	q := url.Values{}
	for k, v := range signed(notice("john tien com 12/01/2026", "4666667")) {
		q.Set(k, v)
	}
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/return?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ret struct {
		Data ReturnResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	assert.True(t, ret.Data.IsSuccess)
	require.NotNil(t, ret.Data.SignatureValid)
	assert.True(t, *ret.Data.SignatureValid)
	assert.Equal(t, "john", ret.Data.UserName)
	assert.Equal(t, "12/01/2026", ret.Data.WeekDate)
	assert.Equal(t, 46666.67, ret.Data.Amount)
	assert.Equal(t, "14000001", ret.Data.TransactionNo)
}
