// Command admin 运维命令行：数据库迁移与成员档案初始化
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"matehost-scheduler/backend/config"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/service"
	"matehost-scheduler/backend/pkg/database"
	"matehost-scheduler/backend/pkg/events"
	"matehost-scheduler/backend/pkg/jwt"
	applogger "matehost-scheduler/backend/pkg/logger"
	"matehost-scheduler/backend/pkg/redis"
	"matehost-scheduler/backend/pkg/validation"
)

// App 命令共享的依赖
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	rdb      *redis.Client
	svc      *service.Service
	validate *validator.Validate
	logger   *zap.Logger
	ctx      context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "admin",
		Short:         "Matehost 排班系统运维工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Name() != "migrate")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// initApp 加载配置并连接数据库；withServices 为 false 时只做迁移
func initApp(withServices bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}

	app = &App{cfg: cfg, db: db, logger: logger, ctx: context.Background()}
	if !withServices {
		return nil
	}

	// 校验与 HTTP 接口共用同一套 binding 规则
	v := validator.New()
	v.SetTagName("binding")
	if err := validation.RegisterOn(v); err != nil {
		return err
	}
	app.validate = v

	// Redis 可用时把变更广播给运行中的服务实例
	var broker events.Broker
	if cfg.Redis.Enabled {
		if rdb, err := redis.NewClient(&cfg.Redis, logger); err != nil {
			logger.Warn("Redis 不可用，运行中的服务不会收到变更通知", zap.Error(err))
		} else {
			app.rdb, broker = rdb, rdb
		}
	}

	repo := repository.NewRepository(db)
	app.svc = service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, events.NewHub(broker, logger), logger)
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	if sqlDB, err := app.db.DB(); err == nil {
		sqlDB.Close()
	}
	if app.rdb != nil {
		app.rdb.Close()
	}
	app.logger.Sync()
}
