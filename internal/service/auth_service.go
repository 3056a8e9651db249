package service

import (
	"learnly_backend/internal/config"
	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
	Config      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, ProfileRepo: profileRepo, Config: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Language string `json:"language"`
}

// Register 注册学生账号并初始化画像
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.Student,
		Language: language,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	if _, err := s.ProfileRepo.FindOrCreate(user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login 校验凭证并签发JWT
func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, util.ErrUnauthorized
	}
	if user.Disabled {
		return nil, util.ErrPermissionDenied
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrUnauthorized
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	_ = s.UserRepo.UpdateLastLogin(user.ID)

	return &LoginResponse{Token: token, User: user}, nil
}
