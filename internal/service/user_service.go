package service

import (
	"context"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"strings"
)

// UserService 用户资料与已报名课程
type UserService struct {
	Users  UserStore
	Assets AssetStore
}

func NewUserService(users UserStore, assets AssetStore) *UserService {
	return &UserService{
		Users:  users,
		Assets: assets,
	}
}

// GetProfile 获取用户信息及已报名课程
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.Users.FindWithEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "Profile not found")
	}
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []model.Course{}
	}
	return user, nil
}

// UpdateProfile replaces the name and the profile photo. The old photo is
// released only after the user row is saved.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name string, photo *FileUpload) (*model.User, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 3 {
		return nil, util.NewValidationError("Name must be at least 3 characters")
	}
	if photo == nil {
		return nil, util.ErrFileRequired
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	url, key, err := uploadImage(ctx, s.Assets, util.PrefixAvatars, photo)
	if err != nil {
		return nil, err
	}

	oldAssetID := user.PhotoAssetID
	user.Name = name
	user.PhotoURL = url
	user.PhotoAssetID = key

	if err := s.Users.Update(ctx, user); err != nil {
		releaseAsset(ctx, s.Assets, key)
		return nil, err
	}

	releaseAsset(ctx, s.Assets, oldAssetID)
	return user, nil
}

func (s *UserService) AddEnrolledCourse(ctx context.Context, userID, courseID uint) error {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return notFoundOr(err, "User not found")
	}
	return s.Users.AddEnrolledCourse(ctx, userID, courseID)
}
