package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"matehost-scheduler/backend/config"
	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/pkg/jwt"
)

// ── Mock TokenStore ──

type mockTokenStore struct {
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}
}

func setupTestAuthService(tokens TokenStore) (AuthService, *mocks, *jwt.Manager) {
	cfg := testAuthConfig()
	m := newMocks()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, m.repo, jwtMgr, tokens, zap.NewNop())
	return svc, m, jwtMgr
}

func createTestUser(m *mocks, username, password string, role model.Role) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := m.users.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, m, jwtMgr := setupTestAuthService(nil)
	createTestUser(m, "ana", "password123", model.RoleAssistant)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Ana@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("AccessToken / RefreshToken 不应为空")
	}
	if result.User.Username != "ana" || !result.User.CanManage {
		t.Errorf("用户信息错误: %+v", result.User)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 应可解析: %v", err)
	}
	if claims.Username != "ana" || claims.Role != string(model.RoleAssistant) {
		t.Errorf("Claims 错误: %+v", claims)
	}
}

func TestLogin_NoEnumeration(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	createTestUser(m, "ana", "password123", model.RoleMateHost)

	_, errWrong := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	_, errMissing := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})

	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际: %v", errWrong)
	}
	if !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Errorf("账号不存在期望 ErrInvalidCredentials，实际: %v", errMissing)
	}
}

// ── 刷新测试 ──

func TestRefresh_RotatesAndRevokesOld(t *testing.T) {
	store := newMockTokenStore()
	svc, m, jwtMgr := setupTestAuthService(store)
	createTestUser(m, "ana", "password123", model.RoleMateHost)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "password123", RememberMe: true})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	claims, _ := jwtMgr.ParseToken(refreshed.RefreshToken)
	if claims == nil || !claims.RememberMe {
		t.Error("新的 RefreshToken 应保留 remember_me")
	}

	_, err = svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("旧 RefreshToken 再次使用期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	svc, m, jwtMgr := setupTestAuthService(nil)
	user := createTestUser(m, "ana", "password123", model.RoleMateHost)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "password123"})

	stored := m.users.users[user.UserID]
	stored.Role = model.RoleAdministrator
	m.users.users[user.UserID] = stored

	refreshed, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	claims, _ := jwtMgr.ParseToken(refreshed.AccessToken)
	if claims.Role != string(model.RoleAdministrator) {
		t.Errorf("期望新角色 administrator，实际=%s", claims.Role)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	createTestUser(m, "ana", "password123", model.RoleMateHost)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "password123"})

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

// ── 登出测试 ──

func TestLogout_BlacklistsBothTokens(t *testing.T) {
	store := newMockTokenStore()
	svc, m, jwtMgr := setupTestAuthService(store)
	createTestUser(m, "ana", "password123", model.RoleMateHost)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "password123"})

	access, _ := jwtMgr.ParseToken(login.AccessToken)
	if err := svc.Logout(context.Background(), access, login.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(store.revoked) != 2 {
		t.Errorf("期望 2 个令牌进入黑名单，实际=%d", len(store.revoked))
	}
	if ttl := store.revoked[access.ID]; ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("AccessToken 黑名单 TTL 应为剩余有效期，实际=%v", ttl)
	}
}

func TestLogout_WithoutRedis(t *testing.T) {
	svc, m, jwtMgr := setupTestAuthService(nil)
	createTestUser(m, "ana", "password123", model.RoleMateHost)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "password123"})

	access, _ := jwtMgr.ParseToken(login.AccessToken)
	if err := svc.Logout(context.Background(), access, ""); err != nil {
		t.Errorf("未配置 Redis 时 Logout 不应报错: %v", err)
	}
}

// ── 修改密码测试 ──

func TestChangePassword(t *testing.T) {
	svc, m, _ := setupTestAuthService(nil)
	user := createTestUser(m, "ana", "password123", model.RoleMateHost)

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpassword1"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}

	err = svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ana@example.com", Password: "newpassword1"}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
}
