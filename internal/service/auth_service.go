package service

import (
	"context"
	"course_platform/internal/config"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindWithEnrolledCourses(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	AddEnrolledCourse(ctx context.Context, userID, courseID uint) error
}

type AuthService struct {
	Users UserStore
	Cfg   *config.JWTConfig
}

func NewAuthService(users UserStore, cfg *config.JWTConfig) *AuthService {
	return &AuthService{
		Users: users,
		Cfg:   cfg,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string, role model.UserRole) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, util.NewValidationError("All fields are required.")
	}
	if !emailPattern.MatchString(email) {
		return nil, util.NewValidationError("Invalid email address.")
	}
	if role != model.Instructor {
		role = model.Student
	}

	_, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.NewConflictError("User already exist with this email.", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.NewConflictError("User already exist with this email.", err)
		}
		return nil, err
	}
	return user, nil
}

// Login returns a signed token and the authenticated user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, util.NewValidationError("All fields are required.")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, util.ErrInvalidCredentials
	} else if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.Secret, s.Cfg.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
