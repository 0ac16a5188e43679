package service

import (
	"context"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"course_platform/pkg/logger"
	"course_platform/pkg/monitoring"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reconcileLockTTL = 30 * time.Second

// Locker is an optional cross-process mutex. Acquire reports ok=false when
// the lock is already held.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

type EnrollmentStore interface {
	AddEnrolledCourse(ctx context.Context, userID, courseID uint) error
}

// EnrollmentService applies completed-payment events to the purchase ledger,
// the user's enrolled courses and the course catalog.
type EnrollmentService struct {
	Purchases PurchaseStore
	Users     EnrollmentStore
	Courses   CourseStore
	Lectures  LectureStore
	Locker    Locker
}

func NewEnrollmentService(purchases PurchaseStore, users EnrollmentStore, courses CourseStore, lectures LectureStore, locker Locker) *EnrollmentService {
	return &EnrollmentService{
		Purchases: purchases,
		Users:     users,
		Courses:   courses,
		Lectures:  lectures,
		Locker:    locker,
	}
}

// HandlePaymentEvent dispatches a verified provider event. Only completed
// checkout sessions change state; handled reports whether the event type was
// one we act on.
func (s *EnrollmentService) HandlePaymentEvent(ctx context.Context, event *model.PaymentEvent) (handled bool, err error) {
	if event == nil || event.Type != EventCheckoutSessionCompleted {
		return false, nil
	}
	_, err = s.ReconcileCompletedPayment(ctx, event.SessionID, event.UserID, event.CourseID, event.AmountTotal)
	return true, err
}

// ReconcileCompletedPayment is idempotent on sessionID. A missing ledger row
// is created directly as completed; an existing one is completed with the
// provider-reported amount. Enrollment on both sides uses set-union inserts,
// so redelivery never duplicates membership or revenue.
func (s *EnrollmentService) ReconcileCompletedPayment(ctx context.Context, sessionID string, userID, courseID uint, amount float64) (*model.CoursePurchase, error) {
	if sessionID == "" || userID == 0 || courseID == 0 {
		return nil, util.NewValidationError("session id, user id and course id are required")
	}

	if s.Locker != nil {
		release, ok, err := s.Locker.Acquire(ctx, "reconcile:"+sessionID, reconcileLockTTL)
		switch {
		case err != nil:
			// 锁服务不可用时继续处理，唯一索引仍然保证台账不重复
			logger.Log.Warn("reconcile lock unavailable", zap.String("session_id", sessionID), zap.Error(err))
		case !ok:
			return nil, util.NewConflictError("reconciliation already in progress", nil)
		default:
			defer release()
		}
	}

	purchase, path, err := s.completePurchase(ctx, sessionID, userID, courseID, amount)
	if err != nil {
		return nil, err
	}

	if err := s.Users.AddEnrolledCourse(ctx, purchase.UserID, purchase.CourseID); err != nil {
		return nil, err
	}
	if err := s.Courses.AddEnrolledStudent(ctx, purchase.CourseID, purchase.UserID); err != nil {
		return nil, err
	}

	// 该课程全部讲座对所有用户开放预览
	if err := s.Lectures.SetPreviewFreeByCourse(ctx, purchase.CourseID); err != nil {
		return nil, err
	}

	if path != "" {
		monitoring.PurchasesCompleted.WithLabelValues(path).Inc()
	}
	logger.Log.Info("payment reconciled",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", purchase.UserID),
		zap.Uint("course_id", purchase.CourseID),
		zap.Float64("amount", purchase.Amount))

	return purchase, nil
}

// completePurchase returns the completed ledger row and the path that
// completed it ("" when it was already completed).
func (s *EnrollmentService) completePurchase(ctx context.Context, sessionID string, userID, courseID uint, amount float64) (*model.CoursePurchase, string, error) {
	purchase, err := s.Purchases.FindBySessionID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		purchase = &model.CoursePurchase{
			UserID:    userID,
			CourseID:  courseID,
			SessionID: sessionID,
			Price:     amount,
			Amount:    amount,
			Status:    model.PurchaseCompleted,
		}
		err = s.Purchases.Create(ctx, purchase)
		if err == nil {
			return purchase, "fallback", nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", err
		}
		// 并发投递已先行创建，重新读取后按更新路径处理
		purchase, err = s.Purchases.FindBySessionID(ctx, sessionID)
	}
	if err != nil {
		return nil, "", err
	}

	wasCompleted := purchase.Status == model.PurchaseCompleted
	if wasCompleted && purchase.Amount == amount {
		return purchase, "", nil
	}

	purchase.Status = model.PurchaseCompleted
	purchase.Amount = amount
	if err := s.Purchases.Update(ctx, purchase); err != nil {
		return nil, "", err
	}

	if wasCompleted {
		return purchase, "", nil
	}
	return purchase, "pending", nil
}
