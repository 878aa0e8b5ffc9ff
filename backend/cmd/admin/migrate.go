package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"matehost-scheduler/backend/pkg/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（PostgreSQL 执行迁移脚本，SQLite 自动建表）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(app.db, app.cfg.Database.Driver, app.logger); err != nil {
				return err
			}
			fmt.Println("迁移完成")
			return nil
		},
	}
}
