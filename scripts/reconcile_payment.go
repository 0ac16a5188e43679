// 手动补单脚本
//
// 支付方回调重投次数耗尽后，用已完成会话的信息手动执行一次对账与报名。
// 对账按会话 ID 幂等，重复执行不会产生重复记录。
//
// 用法: go run scripts/reconcile_payment.go -session cs_xxx -user 1 -course 2 -amount 49.99

package main

import (
	"context"
	"course_platform/internal/config"
	"course_platform/internal/repository"
	"course_platform/internal/service"
	"course_platform/pkg/database"
	"course_platform/pkg/logger"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	sessionID := flag.String("session", "", "支付会话 ID")
	userID := flag.Uint("user", 0, "用户 ID")
	courseID := flag.Uint("course", 0, "课程 ID")
	amount := flag.Float64("amount", 0, "支付方确认的实付金额")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var locker service.Locker
	if cfg.Redis.Host != "" {
		if rdb, err := database.InitRedis(&cfg.Redis); err == nil {
			defer rdb.Close()
			locker = repository.NewLockRepository(rdb)
		}
	}

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollment := service.NewEnrollmentService(
		repository.NewPurchaseRepository(db),
		users,
		courses,
		repository.NewLectureRepository(db),
		locker,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purchase, err := enrollment.ReconcileCompletedPayment(ctx, *sessionID, uint(*userID), uint(*courseID), *amount)
	if err != nil {
		log.Fatalf("对账失败: %v", err)
	}
	log.Printf("完成！购买记录 %d 状态 %s 金额 %.2f", purchase.ID, purchase.Status, purchase.Amount)
}
