package database

import (
	"fmt"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func buildDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.Charset, cfg.ParseTime)
}

// InitDB 连接 MySQL。release 模式下默认跳过 AutoMigrate（线上结构变更
// 走 -migrate 参数显式触发），其他模式每次启动自动迁移。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(buildDSN(&cfg.Database)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Questionnaire{},
		&model.Question{},
		&model.Dimension{},
		&model.Response{},
		&model.DimensionEvaluation{},
		&model.VisitLog{},
		&model.AnswerDraft{},
	)
	if err != nil {
		return err
	}
	return seedDimensions(db)
}

// seedDimensions 维度目录为空时写入固定的 7 个评测维度。
// 维度集视为不可变配置，标注端不提供增删接口。
func seedDimensions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Dimension{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	dims := []model.Dimension{
		{Code: "clarity", Label: "清晰度", Description: "界面信息是否一目了然", OrderIndex: 1, Enabled: true},
		{Code: "aesthetics", Label: "美观度", Description: "视觉风格与排版质量", OrderIndex: 2, Enabled: true},
		{Code: "usability", Label: "易用性", Description: "完成任务的顺畅程度", OrderIndex: 3, Enabled: true},
		{Code: "consistency", Label: "一致性", Description: "控件与交互模式是否统一", OrderIndex: 4, Enabled: true},
		{Code: "accessibility", Label: "可访问性", Description: "对比度、字号与辅助能力", OrderIndex: 5, Enabled: true},
		{Code: "responsiveness", Label: "响应性", Description: "交互反馈与加载表现", OrderIndex: 6, Enabled: true},
		{Code: "information_density", Label: "信息密度", Description: "单屏信息量是否恰当", OrderIndex: 7, Enabled: true},
	}
	return db.Create(&dims).Error
}
