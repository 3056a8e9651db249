// 初始化演示数据脚本
//
// 创建管理员账号和一门带初始单元的演示课程，供本地联调使用。
// 重复执行是安全的：已存在的账号和课程不会重复创建。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"learnly_backend/internal/config"
	"learnly_backend/internal/model"
	"learnly_backend/pkg/database"
	"learnly_backend/pkg/logger"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	seedAdmin(db)
	seedDemoCourse(db)

	log.Println("演示数据初始化完成")
}

func seedAdmin(db *gorm.DB) {
	var existing model.User
	if err := db.Where("email = ?", "admin@learnly.local").First(&existing).Error; err == nil {
		log.Println("管理员账号已存在，跳过")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	admin := model.User{
		Name:     "Administrator",
		Email:    "admin@learnly.local",
		Password: string(hashed),
		Role:     model.Admin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("创建管理员失败: %v", err)
	}
	log.Println("已创建管理员 admin@learnly.local / admin123456")
}

func seedDemoCourse(db *gorm.DB) {
	var existing model.Course
	if err := db.Where("name = ?", "Go 语言入门").First(&existing).Error; err == nil {
		log.Println("演示课程已存在，跳过")
		return
	}

	course := model.Course{
		Name:              "Go 语言入门",
		Subject:           "Programming",
		Description:       "从零开始学习 Go 语言基础",
		DurationMinutes:   180,
		MinPassPercentage: 60,
		IsActive:          true,
	}
	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	units := []model.CourseUnit{
		{CourseID: course.ID, Order: 1, Title: "环境搭建与 Hello World", BaseContent: "安装 Go 工具链，编写第一个程序。"},
		{CourseID: course.ID, Order: 2, Title: "变量、类型与控制流", BaseContent: "基本类型、声明方式、if/for/switch。"},
		{CourseID: course.ID, Order: 3, Title: "函数与错误处理", BaseContent: "多返回值、error 约定、defer。"},
		{CourseID: course.ID, Order: 4, Title: "结构体与方法", BaseContent: "值接收者与指针接收者、组合。"},
		{CourseID: course.ID, Order: 5, Title: "切片与映射", BaseContent: "底层数组、扩容、常见陷阱。"},
		{CourseID: course.ID, Order: 6, Title: "并发基础", BaseContent: "goroutine、channel、select。"},
	}
	if err := db.Create(&units).Error; err != nil {
		log.Fatalf("创建课程单元失败: %v", err)
	}
	log.Printf("已创建演示课程（%d 个单元）", len(units))
}
