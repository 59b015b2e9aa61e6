package app

import (
	"fmt"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/auth"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

const minPasswordLength = 6

// AuthResult is a signed-in user plus their session token.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// SignInAnonymously creates a throwaway user so visitors can try the
// product before registering.
func (a *App) SignInAnonymously(name string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "访客"
	}
	user := domain.User{
		ID:          util.NewID(),
		Name:        name,
		IsAnonymous: true,
		CreatedAt:   a.now(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return AuthResult{}, fmt.Errorf("save user: %w", err)
	}
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (a *App) SignUpWithEmail(email, password, name string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return AuthResult{}, validationf("请输入有效的邮箱地址")
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, validationf("密码至少需要 %d 个字符", minPasswordLength)
	}
	if name == "" {
		return AuthResult{}, validationf("请输入姓名")
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return AuthResult{}, validationf("该邮箱已被注册")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    a.now(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return AuthResult{}, fmt.Errorf("save user: %w", err)
	}
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (a *App) SignInWithEmail(email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return AuthResult{}, validationf("邮箱或密码不正确")
	}
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (a *App) SignOut(token string) error {
	return a.tokens.Revoke(token)
}

// UserFromToken resolves the bearer token to a user. A missing or revoked
// token yields ok=false, not an error.
func (a *App) UserFromToken(token string) (domain.User, bool, error) {
	userID, ok, err := a.tokens.UserID(token)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	return a.store.GetUserByID(userID)
}
