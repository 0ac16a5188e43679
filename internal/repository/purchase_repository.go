package repository

import (
	"context"
	"course_platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *model.CoursePurchase) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(purchase).Error
}

func (r *PurchaseRepository) Update(ctx context.Context, purchase *model.CoursePurchase) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(purchase).Error
}

func (r *PurchaseRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.CoursePurchase, error) {
	var purchase model.CoursePurchase
	err := r.DB.WithContext(ctx).Where("session_id = ?", sessionID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// HasCompleted 用户是否已完成该课程的购买
func (r *PurchaseRepository) HasCompleted(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CoursePurchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}

func (r *PurchaseRepository) FindCompletedByCourses(ctx context.Context, courseIDs []uint) ([]model.CoursePurchase, error) {
	var purchases []model.CoursePurchase
	if len(courseIDs) == 0 {
		return purchases, nil
	}
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ? AND status = ?", courseIDs, model.PurchaseCompleted).
		Order("created_at ASC").
		Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) FindAllCompleted(ctx context.Context) ([]model.CoursePurchase, error) {
	var purchases []model.CoursePurchase
	err := r.DB.WithContext(ctx).
		Preload("Course").
		Where("status = ?", model.PurchaseCompleted).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}
