package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.CourseEnrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) Save(enrollment *model.CourseEnrollment) error {
	return r.DB.Save(enrollment).Error
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindByUser(userID uint) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	err := r.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) FindByCourse(courseID uint) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	err := r.DB.Where("course_id = ?", courseID).Order("created_at DESC").Find(&enrollments).Error
	return enrollments, err
}
