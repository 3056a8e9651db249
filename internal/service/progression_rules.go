package service

import (
	"learnly_backend/internal/model"
	"learnly_backend/internal/util"
	"math"
)

// 课程进度的纯规则函数，无副作用，便于单测

// chooseDifficulty 按能力分数选题目难度
func chooseDifficulty(score int) model.Difficulty {
	switch {
	case score >= 70:
		return model.DifficultyHard
	case score >= 40:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// chooseStyle 按最近测验成绩选讲解风格，差则强制练习型
func chooseStyle(profileStyle model.LearningStyle, lastQuizScore int) model.LearningStyle {
	switch {
	case lastQuizScore < 50:
		return model.StylePractice
	case lastQuizScore < 75:
		return model.StyleText
	case profileStyle != "":
		return profileStyle
	default:
		return model.StyleText
	}
}

// scoreToRecommendedStyle 摸底分数过低时强制练习型，否则沿用画像风格
func scoreToRecommendedStyle(score int, profileStyle model.LearningStyle) model.LearningStyle {
	if score < 40 {
		return model.StylePractice
	}
	if profileStyle != "" {
		return profileStyle
	}
	return model.StyleText
}

func scoreToLevel(score int) string {
	switch {
	case score >= 70:
		return "Advanced"
	case score >= 40:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// desiredUnitCount 课程目标单元数：时长每30分钟一个单元，限制在 [4,12]，未设置时长默认6
func desiredUnitCount(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 6
	}
	return util.ClampInt(int(math.Round(float64(durationMinutes)/30)), 4, 12)
}

// roundPct 百分比，四舍五入
func roundPct(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// quizScore 百分制得分
func quizScore(correct, answered int) int {
	return roundPct(correct, answered)
}

// competenceScore 能力分数回退链：摸底分数 > 画像最近能力分 > 0
func competenceScore(enrollment *model.CourseEnrollment, profile *model.StudentProfile) int {
	if enrollment != nil && enrollment.PlacementScore != nil {
		return *enrollment.PlacementScore
	}
	if profile != nil {
		return profile.LastCompetencyScore
	}
	return 0
}
