package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(userID uint) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

// FindOrCreate 没有画像时建一条默认画像
func (r *ProfileRepository) FindOrCreate(userID uint) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = model.StudentProfile{
			UserID:        userID,
			CurrentLevel:  "Beginner",
			LearningStyle: model.StyleText,
		}
		err = r.DB.Create(&profile).Error
	}
	return &profile, err
}

func (r *ProfileRepository) Save(profile *model.StudentProfile) error {
	return r.DB.Save(profile).Error
}
