package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-backoffice/internal/model"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() *CategoryRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, func() *CategoryRepo { return NewCategoryRepo(db) }
}

func TestCategoryDeleteAndReassignMovesItemsThenDeletes(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM room_service_categories WHERE code = ?")).
		WithArgs("brunch").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM room_service_categories WHERE code = ?")).
		WithArgs("general").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_service_items SET category_code = ? WHERE category_code = ?")).
		WithArgs("general", "brunch").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM room_service_categories WHERE id = ?")).
		WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	moved, err := repo().DeleteAndReassign(context.Background(), "brunch", "general")
	require.NoError(t, err)
	require.Equal(t, int64(3), moved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteAndReassignUnknownTargetRollsBack(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM room_service_categories").
		WithArgs("brunch").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery("SELECT id FROM room_service_categories").
		WithArgs("nowhere").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo().DeleteAndReassign(context.Background(), "brunch", "nowhere")
	require.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteAndReassignUnknownCode(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM room_service_categories").
		WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo().DeleteAndReassign(context.Background(), "ghost", "general")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCreateDuplicate(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec("INSERT INTO room_service_categories").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'brunch'"})

	err := repo().Create(context.Background(), &model.Category{Code: "brunch", Name: "Brunch", Translations: map[string]string{"fr": "Brunch"}})
	require.True(t, IsDuplicate(err))
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCategoryCreateSetsID(t *testing.T) {
	mock, repo := newMock(t)

	start, end := "07:00", "11:00"
	mock.ExpectExec("INSERT INTO room_service_categories").
		WithArgs("brunch", "Brunch", `{"en":"Brunch","fr":"Brunch"}`, "07:00", "11:00", 3, true).
		WillReturnResult(sqlmock.NewResult(12, 1))

	c := &model.Category{Code: "brunch", Name: "Brunch", Translations: map[string]string{"fr": "Brunch", "en": "Brunch"},
		TimeStart: &start, TimeEnd: &end, Position: 3, IsActive: true}
	require.NoError(t, repo().Create(context.Background(), c))
	require.Equal(t, uint64(12), c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryListScansTranslationsAndTimes(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "code", "name", "translations", "time_start", "time_end", "position", "is_active", "created_at", "updated_at", "count"}).
		AddRow(1, "general", "Général", nil, nil, nil, 1, true, now, now, 5).
		AddRow(2, "breakfast", "Petit-déjeuner", `{"fr":"Petit-déjeuner","en":"Breakfast"}`, "07:00:00", "10:30:00", 2, false, now, now, 0)
	mock.ExpectQuery("FROM room_service_categories c").WillReturnRows(rows)

	list, err := repo().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.Equal(t, "Général", list[0].Translations["fr"])
	require.Nil(t, list[0].TimeStart)
	require.Equal(t, 5, list[0].ItemCount)

	require.Equal(t, "Breakfast", list[1].Translations["en"])
	require.Equal(t, "07:00", *list[1].TimeStart)
	require.Equal(t, "10:30", *list[1].TimeEnd)
	require.False(t, list[1].IsActive)
}

func TestCategoryToggleUnknown(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectExec("UPDATE room_service_categories SET is_active = NOT is_active").
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo().ToggleActive(context.Background(), "ghost"), ErrNotFound)
}

func TestClassify(t *testing.T) {
	require.True(t, IsMissingTable(classify(&mysql.MySQLError{Number: 1146})))
	require.False(t, IsMissingTable(errors.New("boom")))
	require.NoError(t, classify(nil))
}
