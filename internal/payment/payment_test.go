package payment

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "user_id", "week_id", "paid", "paid_at", "created_at", "updated_at"}

func newService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(NewRepository(db)), mock
}

func TestService_SetStatus(t *testing.T) {
	now := time.Date(2026, 1, 17, 8, 0, 0, 0, time.UTC)

	t.Run("paid stamps paidAt", func(t *testing.T) {
		svc, mock := newService(t)
		svc.now = func() time.Time { return now }

		mock.ExpectQuery(`INSERT INTO payments .* ON CONFLICT \(user_id, week_id\)`).
			WithArgs(sqlmock.AnyArg(), "u1", "w1", true, now).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", "w1", true, now, now, now))

		p, err := svc.SetStatus(context.Background(), &UpdatePaymentRequest{UserID: "u1", WeekID: "w1", Paid: true})
		require.NoError(t, err)
		assert.True(t, p.Paid)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unpaid clears paidAt", func(t *testing.T) {
		svc, mock := newService(t)

		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs(sqlmock.AnyArg(), "u1", "w1", false, nil).
			WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", "w1", false, nil, now, now))

		p, err := svc.SetStatus(context.Background(), &UpdatePaymentRequest{UserID: "u1", WeekID: "w1"})
		require.NoError(t, err)
		assert.Nil(t, p.PaidAt)
	})

	t.Run("missing ids", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.SetStatus(context.Background(), &UpdatePaymentRequest{UserID: "u1"})
		assert.ErrorIs(t, err, ErrMissingIDs)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc, mock := newService(t)
		mock.ExpectQuery(`INSERT INTO payments`).WillReturnError(&pq.Error{Code: "23503"})

		_, err := svc.SetStatus(context.Background(), &UpdatePaymentRequest{UserID: "u1", WeekID: "nope", Paid: true})
		assert.ErrorIs(t, err, ErrUnknownReference)
	})
}

func TestRepository_Get_Missing(t *testing.T) {
	svc, mock := newService(t)
	mock.ExpectQuery(`FROM payments WHERE user_id = \$1 AND week_id = \$2`).WillReturnError(sql.ErrNoRows)

	p, err := svc.Get(context.Background(), "u1", "w1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPaidSet(t *testing.T) {
	set := PaidSet([]*Payment{{UserID: "u1", Paid: true}, {UserID: "u2"}})
	assert.True(t, set["u1"].Paid)
	assert.False(t, set["u2"].Paid)
	assert.Nil(t, set["u3"])
}

func TestHandler_Update(t *testing.T) {
	svc, mock := newService(t)
	h := NewHandler(svc, zerolog.Nop())
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", "w1", true, now, now, now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"user_id":"u1","week_id":"w1","paid":true}`))
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paid":true`)
}
