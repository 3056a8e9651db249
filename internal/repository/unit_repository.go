package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type UnitRepository struct {
	DB *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{DB: db}
}

func (r *UnitRepository) Create(unit *model.CourseUnit) error {
	return r.DB.Create(unit).Error
}

func (r *UnitRepository) BulkCreate(units []model.CourseUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.DB.Create(&units).Error
}

func (r *UnitRepository) FindByID(id uint) (*model.CourseUnit, error) {
	var unit model.CourseUnit
	err := r.DB.First(&unit, id).Error
	return &unit, err
}

func (r *UnitRepository) FindByCourse(courseID uint) ([]model.CourseUnit, error) {
	var units []model.CourseUnit
	err := r.DB.Where("course_id = ?", courseID).Order("`order` ASC").Find(&units).Error
	return units, err
}

func (r *UnitRepository) FindByCourseAndOrder(courseID uint, order int) (*model.CourseUnit, error) {
	var unit model.CourseUnit
	err := r.DB.Where("course_id = ? AND `order` = ?", courseID, order).First(&unit).Error
	return &unit, err
}

// MaxOrder 课程现有单元的最大序号，无单元时返回 0
func (r *UnitRepository) MaxOrder(courseID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.CourseUnit{}).
		Where("course_id = ?", courseID).
		Select("MAX(`order`)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}
