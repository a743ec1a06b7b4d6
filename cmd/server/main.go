package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"edusync/backend/config"
	"edusync/backend/internal/api/handler"
	"edusync/backend/internal/api/router"
	"edusync/backend/internal/dto"
	"edusync/backend/internal/job"
	"edusync/backend/internal/repository"
	"edusync/backend/internal/service"
	"edusync/backend/pkg/database"
	"edusync/backend/pkg/jwt"
	applogger "edusync/backend/pkg/logger"
	"edusync/backend/pkg/metrics"
	"edusync/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("EDUSYNC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logger.Fatal("无效的时区配置", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移（postgres: golang-migrate；sqlite: AutoMigrate）
	if err := database.Migrate(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	if cfg.Database.Seed {
		if err := database.Seed(db, cfg.Database.Driver, logger); err != nil {
			logger.Fatal("写入演示数据失败", zap.Error(err))
		}
	}
	if err := database.EnsureAdmin(db, &cfg.Auth.BootstrapAdmin, logger); err != nil {
		logger.Fatal("初始化管理员失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, cfg.Schedule.LockTTL, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，降级为进程内排课锁，Token 黑名单与限流不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 初始化 JWT 管理器 / 指标 / 校验规则
	jwtMgr := jwt.NewManager(&cfg.Auth)
	metrics.Register()
	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	deps := service.Deps{
		Repo:        repo,
		JWT:         jwtMgr,
		LockTimeout: cfg.Schedule.LockTimeout,
		Location:    loc,
		Logger:      logger,
	}
	if rdb != nil {
		deps.Locker = rdb
		deps.Blacklist = rdb
	}
	svc := service.NewService(deps)
	h := handler.NewHandler(cfg, svc)

	// 7. 冲突巡检任务
	var auditor *job.Auditor
	if cfg.Audit.Enabled {
		auditor = job.NewAuditor(repo.ClassSchedule, logger)
		if err := auditor.Start(cfg.Audit.Spec); err != nil {
			logger.Fatal("启动冲突巡检失败", zap.Error(err))
		}
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if auditor != nil {
		auditor.Stop()
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
