package service

import (
	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"
)

type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.ProfileRepository
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository) *UserService {
	return &UserService{UserRepo: userRepo, ProfileRepo: profileRepo}
}

type ProfileResponse struct {
	User    *model.User           `json:"user"`
	Profile *model.StudentProfile `json:"profile"`
}

func (s *UserService) Profile(userID uint) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResponse{User: user, Profile: profile}, nil
}

type UpdateProfileRequest struct {
	Name              string `json:"name"`
	Language          string `json:"language"`
	PreferredLanguage string `json:"preferredLanguage"`
	LearningStyle     string `json:"learningStyle"`
	CurrentLevel      string `json:"currentLevel"`
}

// UpdateProfile 按字段增量更新，learningStyle 只接受三个合法值
func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if req.LearningStyle != "" && !model.ValidLearningStyle(req.LearningStyle) {
		return nil, util.ErrInvalidInput
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	if err := s.UserRepo.Save(user); err != nil {
		return nil, err
	}

	if req.PreferredLanguage != "" {
		profile.PreferredLanguage = req.PreferredLanguage
	}
	if req.LearningStyle != "" {
		profile.LearningStyle = model.LearningStyle(req.LearningStyle)
	}
	if req.CurrentLevel != "" {
		profile.CurrentLevel = req.CurrentLevel
	}
	if err := s.ProfileRepo.Save(profile); err != nil {
		return nil, err
	}

	return &ProfileResponse{User: user, Profile: profile}, nil
}
