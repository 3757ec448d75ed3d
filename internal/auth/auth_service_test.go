package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/edustack/campusaudit/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.AdminUser{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewAuthService(NewAdminUserRepository(db), "test-secret", "campusaudit-test")
}

func TestLoginAndVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "root", "hunter22", []string{RoleSuperAdmin, RoleStaff}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	result, err := svc.Login(ctx, "root", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.SessionID == "" {
		t.Fatal("expected token and session id")
	}

	claims, err := svc.Verify(result.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "root" {
		t.Errorf("subject: %q", claims.Subject)
	}
	if !claims.HasRole(RoleSuperAdmin) || !claims.HasRole(RoleStaff) {
		t.Errorf("roles claim incomplete: %v", claims.Roles)
	}
	if claims.HasRole("AUDITOR") {
		t.Error("unexpected role granted")
	}
	if claims.SessionID != result.SessionID {
		t.Error("session id claim mismatch")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "root", "hunter22", []string{RoleSuperAdmin}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, err := svc.Login(ctx, "root", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "root", "hunter22", []string{RoleSuperAdmin}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	result, err := svc.Login(ctx, "root", "hunter22")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Verify(result.Token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: got %v", err)
	}
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v", err)
	}
	foreign := NewAuthService(svc.users, "other-secret", "campusaudit-test")
	if _, err := foreign.Verify(result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign-signed token: got %v", err)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "root", "hunter22", []string{RoleStaff}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if _, err := svc.CreateUser(ctx, "root", "other", []string{RoleStaff}); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v", err)
	}
}
