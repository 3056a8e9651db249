package service

import (
	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
	UnitRepo   *repository.UnitRepository
}

func NewCourseService(courseRepo *repository.CourseRepository, unitRepo *repository.UnitRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo, UnitRepo: unitRepo}
}

type CreateCourseRequest struct {
	Name              string `json:"name" binding:"required,min=2,max=255"`
	Subject           string `json:"subject" binding:"required,min=2,max=100"`
	Description       string `json:"description"`
	DurationMinutes   int    `json:"durationMinutes"`
	MinPassPercentage *int   `json:"minPassPercentage"`
	Units             []struct {
		Title       string `json:"title" binding:"required"`
		BaseContent string `json:"baseContent"`
	} `json:"units"`
}

// Create 建课，可附带初始单元（顺序按提交顺序从1编号）。
// 不带单元时由首个学生触发内容生成补齐
func (s *CourseService) Create(req CreateCourseRequest) (*model.Course, error) {
	minPass := 60
	if req.MinPassPercentage != nil {
		if *req.MinPassPercentage < 0 || *req.MinPassPercentage > 100 {
			return nil, util.ErrInvalidInput
		}
		minPass = *req.MinPassPercentage
	}

	course := &model.Course{
		Name:              req.Name,
		Subject:           req.Subject,
		Description:       req.Description,
		DurationMinutes:   req.DurationMinutes,
		MinPassPercentage: minPass,
		IsActive:          true,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	if len(req.Units) > 0 {
		units := make([]model.CourseUnit, 0, len(req.Units))
		for i, u := range req.Units {
			units = append(units, model.CourseUnit{
				CourseID:    course.ID,
				Order:       i + 1,
				Title:       u.Title,
				BaseContent: u.BaseContent,
			})
		}
		if err := s.UnitRepo.BulkCreate(units); err != nil {
			return nil, err
		}
		course.Units = units
	}

	return course, nil
}

func (s *CourseService) List() ([]model.Course, error) {
	return s.CourseRepo.FindAll()
}

func (s *CourseService) Get(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	units, err := s.UnitRepo.FindByCourse(id)
	if err != nil {
		return nil, err
	}
	course.Units = units
	return course, nil
}

func (s *CourseService) Delete(id uint) error {
	if _, err := s.CourseRepo.FindByID(id); err != nil {
		return util.ErrCourseNotFound
	}
	return s.CourseRepo.Delete(id)
}
