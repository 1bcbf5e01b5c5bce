// 演示数据初始化脚本
//
// 创建一个管理员账号、一个标注者账号和一份已上线的示例问卷（含一道陷阱题），
// 方便本地联调前端。重复执行是安全的：已存在的账号和问卷不会重复创建。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"log"
	"os"
	"time"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/pkg/database"
	"pairjudge_backend/pkg/logger"

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

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	admin := seedUser(db, "管理员", "admin@example.com", "admin123", model.Admin)
	seedUser(db, "示例标注者", "annotator@example.com", "annotator123", model.Annotator)
	seedQuestionnaire(db, admin.ID)

	log.Println("完成！")
}

func seedUser(db *gorm.DB, name, email, password string, role model.UserRole) *model.User {
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("账号已存在，跳过: %s", email)
		return &existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	user := model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("创建账号失败: %v", err)
	}
	log.Printf("已创建账号: %s / %s", email, password)
	return &user
}

func seedQuestionnaire(db *gorm.DB, createdBy uint) {
	var count int64
	db.Model(&model.Questionnaire{}).Where("title = ?", "示例问卷：界面对比").Count(&count)
	if count > 0 {
		log.Println("示例问卷已存在，跳过")
		return
	}

	q := model.Questionnaire{
		Title:       "示例问卷：界面对比",
		Description: "请逐题打开两个链接、仔细浏览后作出评价。",
		Status:      model.QuestionnaireActive,
		CreatedBy:   createdBy,
	}
	if err := db.Create(&q).Error; err != nil {
		log.Fatalf("创建问卷失败: %v", err)
	}

	questions := []model.Question{
		{
			QuestionnaireID: q.ID,
			Title:           "落地页对比",
			LinkAURL:        "https://example.com/demo/landing-a",
			LinkBURL:        "https://example.com/demo/landing-b",
			OrderIndex:      1,
		},
		{
			QuestionnaireID: q.ID,
			Title:           "带校验码的仪表盘对比",
			LinkAURL:        "https://example.com/demo/dashboard-a",
			LinkBURL:        "https://example.com/demo/dashboard-b",
			LinkACode:       "DASH-A-7391",
			LinkBCode:       "DASH-B-2048",
			OrderIndex:      2,
		},
		{
			QuestionnaireID:    q.ID,
			Title:              "表单布局对比",
			LinkAURL:           "https://example.com/demo/form-good",
			LinkBURL:           "https://example.com/demo/form-broken",
			IsTrap:             true,
			TrapExpectedWinner: "a",
			OrderIndex:         3,
		},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			log.Fatalf("创建题目失败: %v", err)
		}
	}

	log.Printf("已创建示例问卷（%d 道题，其中 1 道陷阱题）", len(questions))
}
