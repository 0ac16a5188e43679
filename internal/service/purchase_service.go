package service

import (
	"context"
	"course_platform/internal/config"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"course_platform/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type PurchaseStore interface {
	Create(ctx context.Context, purchase *model.CoursePurchase) error
	Update(ctx context.Context, purchase *model.CoursePurchase) error
	FindBySessionID(ctx context.Context, sessionID string) (*model.CoursePurchase, error)
	HasCompleted(ctx context.Context, userID, courseID uint) (bool, error)
	FindCompletedByCourses(ctx context.Context, courseIDs []uint) ([]model.CoursePurchase, error)
	FindAllCompleted(ctx context.Context) ([]model.CoursePurchase, error)
}

// PurchaseService 购买台账：发起结账、查询购买状态
type PurchaseService struct {
	Courses   CourseStore
	Purchases PurchaseStore
	Payments  PaymentProvider
	Cfg       *config.PaymentConfig
}

func NewPurchaseService(courses CourseStore, purchases PurchaseStore, payments PaymentProvider, cfg *config.PaymentConfig) *PurchaseService {
	return &PurchaseService{
		Courses:   courses,
		Purchases: purchases,
		Payments:  payments,
		Cfg:       cfg,
	}
}

// InitiateCheckout opens a provider session and records a pending purchase
// keyed by the session id. The two writes share no transaction: when the
// purchase save fails the session still exists and the webhook fallback
// creates the row on completion.
func (s *PurchaseService) InitiateCheckout(ctx context.Context, userID, courseID uint) (*model.CheckoutSession, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course not found")
	}

	clientURL := strings.TrimRight(s.Cfg.ClientURL, "/")
	session, err := s.Payments.CreateCheckoutSession(ctx, CheckoutRequest{
		ProductName: course.Title,
		ImageURL:    course.Thumbnail,
		UnitAmount:  course.Price,
		SuccessURL:  fmt.Sprintf("%s/course-progress/%d", clientURL, course.ID),
		CancelURL:   fmt.Sprintf("%s/course-details/%d", clientURL, course.ID),
		UserID:      userID,
		CourseID:    course.ID,
	})
	if err != nil {
		if util.KindOf(err) != "" {
			return nil, err
		}
		return nil, util.NewUpstreamError("Checkout session error.", err)
	}

	purchase := &model.CoursePurchase{
		UserID:    userID,
		CourseID:  course.ID,
		SessionID: session.SessionID,
		Price:     course.Price,
		Amount:    course.Price,
		Status:    model.PurchasePending,
	}
	if err := s.Purchases.Create(ctx, purchase); err != nil {
		logger.Log.Error("checkout session created without ledger row",
			zap.String("session_id", session.SessionID),
			zap.Uint("user_id", userID),
			zap.Uint("course_id", course.ID),
			zap.Error(err))
		return nil, err
	}

	return session, nil
}

func (s *PurchaseService) GetCourseDetailsWithPurchaseStatus(ctx context.Context, userID, courseID uint) (*model.CourseWithPurchaseStatus, error) {
	course, err := s.Courses.FindDetails(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "course not found.")
	}

	purchased, err := s.Purchases.HasCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &model.CourseWithPurchaseStatus{Course: course, Purchased: purchased}, nil
}

func (s *PurchaseService) ListCompletedPurchases(ctx context.Context) ([]model.CoursePurchase, error) {
	purchases, err := s.Purchases.FindAllCompleted(ctx)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []model.CoursePurchase{}
	}
	return purchases, nil
}
