package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/pkg/validation"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "成员档案管理",
	}
	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userSetRoleCmd())
	cmd.AddCommand(userImportCmd())
	return cmd
}

// userCreateCmd 创建首个管理员等初始化场景
func userCreateCmd() *cobra.Command {
	var req dto.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建成员档案",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.validate.Struct(&req); err != nil {
				return fmt.Errorf("参数校验失败: %s", validation.Describe(err))
			}
			user, err := app.svc.User.Provision(app.ctx, &req)
			if err != nil {
				return err
			}
			fmt.Printf("已创建 %s (%s, %s)\n", user.Username, user.Email, user.RoleLabel)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "用户名")
	cmd.Flags().StringVar(&req.Email, "email", "", "登录邮箱")
	cmd.Flags().StringVar(&req.Password, "password", "", "初始密码（8-64 位）")
	cmd.Flags().StringVar(&req.Role, "role", string(model.RoleMateHost), "角色: matehost | assistant | administrator")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func userSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <username> <role>",
		Short: "修改成员角色",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("未知角色 %q", args[1])
			}
			user, err := app.svc.User.SetRole(app.ctx, args[0], role)
			if err != nil {
				return err
			}
			fmt.Printf("%s 的角色已改为 %s\n", user.Username, user.RoleLabel)
			return nil
		},
	}
}

func userImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "从 YAML 文件批量导入成员",
		Long: `文件格式:
  users:
    - username: alice
      email: alice@example.com
      role: assistant      # 可省略，默认 matehost
      password: ...        # 可省略，自动生成临时密码`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("打开导入文件失败: %w", err)
			}
			defer f.Close()

			rows, err := app.svc.User.ParseImportFile(f)
			if err != nil {
				return err
			}
			result, err := app.svc.User.ImportUsers(app.ctx, rows)
			if err != nil {
				return err
			}

			fmt.Printf("共 %d 行，成功 %d，失败 %d\n", result.Total, result.Success, result.Failed)
			for _, e := range result.Errors {
				fmt.Printf("  第 %d 行: %s\n", e.Row, e.Reason)
			}
			if len(result.Credentials) > 0 {
				fmt.Println("临时密码（仅显示一次）:")
				for _, c := range result.Credentials {
					fmt.Printf("  %s\t%s\n", c.Username, c.TempPassword)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML 文件路径")
	cmd.MarkFlagRequired("file")
	return cmd
}
