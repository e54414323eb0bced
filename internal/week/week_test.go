package week

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hcm, _ = time.LoadLocation("Asia/Ho_Chi_Minh")
	cols   = []string{"id", "start_date", "end_date", "name", "is_finalized", "finalized_at", "orders_version", "created_at", "updated_at"}
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func weekRow(id string, start time.Time, finalized bool, finalizedAt any) *sqlmock.Rows {
	return sqlmock.NewRows(cols).AddRow(id, start, EndOf(start), nil, finalized, finalizedAt, int64(0), start, start)
}

func monday() time.Time { return time.Date(2026, 1, 12, 0, 0, 0, 0, hcm) }

func TestValidateStart(t *testing.T) {
	require.NoError(t, ValidateStart(monday()))

	err := ValidateStart(time.Date(2026, 1, 13, 0, 0, 0, 0, hcm))
	require.ErrorIs(t, err, ErrNotMonday)
	assert.Contains(t, err.Error(), "Thứ ba")

	err = ValidateStart(time.Date(2026, 1, 18, 0, 0, 0, 0, hcm))
	assert.Contains(t, err.Error(), "Chủ nhật")
}

func TestEndOf(t *testing.T) {
	end := EndOf(monday())
	assert.Equal(t, time.Friday, end.Weekday())
	assert.Equal(t, "16/01/2026", FormatDate(end))
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 999*time.Millisecond, time.Duration(end.Nanosecond()))
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(time.Date(2026, 1, 12, 15, 30, 0, 0, hcm))
	assert.True(t, from.Equal(monday()))
	assert.True(t, to.After(from))
	assert.Equal(t, 12, to.Day())
}

func TestParseStartDate(t *testing.T) {
	d, err := ParseStartDate("2026-01-12", hcm)
	require.NoError(t, err)
	assert.True(t, d.Equal(monday()))

	_, err = ParseStartDate("", hcm)
	assert.ErrorIs(t, err, ErrStartDateRequired)

	_, err = ParseStartDate("12/01/2026", hcm)
	assert.ErrorIs(t, err, ErrInvalidStartDate)
}

func TestService_Create(t *testing.T) {
	t.Run("rejects a Tuesday before touching the store", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		_, err := svc.Create(context.Background(), &CreateWeekRequest{StartDate: "2026-01-13"})
		require.ErrorIs(t, err, ErrNotMonday)
		assert.Contains(t, err.Error(), "Thứ ba")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects overlapping weeks", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectQuery(`WHERE start_date <= \$2 AND end_date >= \$1`).
			WithArgs(monday(), EndOf(monday())).
			WillReturnRows(weekRow("w0", monday(), false, nil))

		_, err := svc.Create(context.Background(), &CreateWeekRequest{StartDate: "2026-01-12"})
		require.ErrorIs(t, err, ErrWeekOverlap)
		assert.Contains(t, err.Error(), "12/01/2026 - 16/01/2026")
	})

	t.Run("creates with trimmed name", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectQuery(`WHERE start_date <= \$2 AND end_date >= \$1`).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO weeks`).
			WithArgs(sqlmock.AnyArg(), monday(), EndOf(monday()), "Tuan 3").
			WillReturnRows(weekRow("w1", monday(), false, nil))

		name := "  Tuan 3 "
		w, err := svc.Create(context.Background(), &CreateWeekRequest{StartDate: "2026-01-12", Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "w1", w.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_Finalize(t *testing.T) {
	t.Run("first finalize sets finalizedAt", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)
		at := time.Date(2026, 1, 16, 17, 0, 0, 0, hcm)
		svc.now = func() time.Time { return at }

		mock.ExpectQuery(`UPDATE weeks\s+SET is_finalized = TRUE`).WithArgs("w1", at).
			WillReturnRows(weekRow("w1", monday(), true, at))

		w, err := svc.Finalize(context.Background(), "w1")
		require.NoError(t, err)
		assert.True(t, w.IsFinalized)
		require.NotNil(t, w.FinalizedAt)
		assert.True(t, w.FinalizedAt.Equal(at))
	})

	t.Run("already finalized returns the week unchanged", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)
		first := time.Date(2026, 1, 16, 17, 0, 0, 0, hcm)

		mock.ExpectQuery(`UPDATE weeks`).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT .* FROM weeks WHERE id = \$1`).WithArgs("w1").
			WillReturnRows(weekRow("w1", monday(), true, first))

		w, err := svc.Finalize(context.Background(), "w1")
		require.NoError(t, err)
		assert.True(t, w.FinalizedAt.Equal(first))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown week", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectQuery(`UPDATE weeks`).WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT .* FROM weeks WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

		_, err := svc.Finalize(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrWeekNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	countRows := func(n int) *sqlmock.Rows { return sqlmock.NewRows([]string{"count"}).AddRow(n) }

	t.Run("blocked by orders", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM weeks WHERE id = \$1 FOR UPDATE`).WithArgs("w1").
			WillReturnRows(weekRow("w1", monday(), false, nil))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE week_id = \$1`).WithArgs("w1").
			WillReturnRows(countRows(3))
		mock.ExpectRollback()

		err := svc.Delete(context.Background(), "w1")
		require.ErrorIs(t, err, ErrWeekHasOrders)
		assert.Contains(t, err.Error(), "3 orders")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blocked by payments", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM weeks WHERE id = \$1 FOR UPDATE`).WithArgs("w1").
			WillReturnRows(weekRow("w1", monday(), false, nil))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE week_id = \$1`).WithArgs("w1").
			WillReturnRows(countRows(0))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments WHERE week_id = \$1`).WithArgs("w1").
			WillReturnRows(countRows(1))
		mock.ExpectRollback()

		err := svc.Delete(context.Background(), "w1")
		require.ErrorIs(t, err, ErrWeekHasPayments)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown week", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := svc.Delete(context.Background(), "nope")
		require.ErrorIs(t, err, ErrWeekNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty week is deleted in one transaction", func(t *testing.T) {
		db, mock := newMock(t)
		svc := NewService(NewRepository(db, hcm), hcm)

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs("w1").
			WillReturnRows(weekRow("w1", monday(), false, nil))
		mock.ExpectQuery(`FROM orders`).WithArgs("w1").WillReturnRows(countRows(0))
		mock.ExpectQuery(`FROM payments`).WithArgs("w1").WillReturnRows(countRows(0))
		mock.ExpectExec(`DELETE FROM weeks WHERE id = \$1`).WithArgs("w1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.Delete(context.Background(), "w1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_FindFinalizedOn(t *testing.T) {
	db, mock := newMock(t)
	svc := NewService(NewRepository(db, hcm), hcm)

	from, to := DayWindow(monday())
	mock.ExpectQuery(`WHERE is_finalized = TRUE AND start_date >= \$1 AND start_date <= \$2`).
		WithArgs(from, to).
		WillReturnRows(weekRow("w1", monday(), true, monday()))

	w, err := svc.FindFinalizedOn(context.Background(), monday().Add(10*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "w1", w.ID)
}

type fixedStatus Status

func (f fixedStatus) Status(context.Context, *Week) (Status, error) { return Status(f), nil }

func TestHandler_List(t *testing.T) {
	db, mock := newMock(t)
	h := NewHandler(NewService(NewRepository(db, hcm), hcm), fixedStatus{AllPaid: true, HasUsers: true}, zerolog.Nop())

	mock.ExpectQuery(`LEFT JOIN orders o ON o.week_id = w.id`).WillReturnRows(
		sqlmock.NewRows(append(cols, "count")).
			AddRow("w1", monday(), EndOf(monday()), nil, false, nil, int64(2), monday(), monday(), 4),
	)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []WeekResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "12/01/2026", body.Data[0].StartDate)
	assert.Equal(t, 4, *body.Data[0].OrderCount)
	assert.True(t, *body.Data[0].AllPaid)
}

func TestHandler_CreateRejectsTuesday(t *testing.T) {
	db, _ := newMock(t)
	h := NewHandler(NewService(NewRepository(db, hcm), hcm), fixedStatus{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"start_date":"2026-01-13"}`))
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thứ ba")
}
