// @title Learnly 后端 API
// @version 1.0
// @description Learnly学习平台的后端服务器：课程推进与学习计划调度。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"learnly_backend/internal/app"
	"learnly_backend/internal/config"
	"learnly_backend/pkg/configwatcher"
	"learnly_backend/pkg/logger"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	// 配置热更新：JWT密钥等运行时读取的字段改动后无需重启
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if updated, ok := newCfg.(*config.Config); ok {
			updated.ForceMigrate = cfg.ForceMigrate
			updated.MigrateOnly = cfg.MigrateOnly
			*cfg = *updated
			log.Println("配置已热更新")
		}
	})

	application.Run()
}
