package repository

import (
	"context"
	"course_platform/internal/model"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPurchaseRepository_FindBySessionID(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "user_id", "course_id", "session_id", "amount", "status"}).
					AddRow(1, 2, 3, "cs_1", 49.99, "pending")
				mock.ExpectQuery("SELECT \\* FROM `course_purchases` WHERE session_id = \\?").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM `course_purchases` WHERE session_id = \\?").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantErr: gorm.ErrRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupMockDB(t)
			defer cleanup()
			tt.setupMock(mock)

			purchase, err := NewPurchaseRepository(db).FindBySessionID(context.Background(), "cs_1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, purchase)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "cs_1", purchase.SessionID)
				assert.Equal(t, model.PurchasePending, purchase.Status)
				assert.Equal(t, 49.99, purchase.Amount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPurchaseRepository_HasCompleted(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `course_purchases` WHERE \\(user_id = \\? AND course_id = \\? AND status = \\?\\)").
		WithArgs(2, 3, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := NewPurchaseRepository(db).HasCompleted(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_FindCompletedByCourses_Empty(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	purchases, err := NewPurchaseRepository(db).FindCompletedByCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, purchases)
	// 空集合不访问数据库
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepository_CreateDuplicateSession(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO `course_purchases`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'cs_1' for key 'idx_course_purchases_session_id'"))

	err := NewPurchaseRepository(db).Create(context.Background(), &model.CoursePurchase{
		UserID: 1, CourseID: 1, SessionID: "cs_1", Status: model.PurchasePending,
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
