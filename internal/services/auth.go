package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storeadmin/internal/apperr"
	"storeadmin/internal/models"
)

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	AdminSecret string
}

type AuthService struct {
	admins      AdminStore
	adminSecret string
	cost        int
	Now         func() time.Time
}

func NewAuthService(admins AdminStore, adminSecret string) *AuthService {
	return &AuthService{
		admins:      admins,
		adminSecret: adminSecret,
		cost:        bcrypt.DefaultCost,
		Now:         time.Now,
	}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register creates an account. The account is an admin only when the
// supplied secret matches the configured one; an empty configured secret
// never grants admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.Admin, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return models.Admin{}, apperr.Validation("", "All fields are required")
	}

	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		log.Println("[AUTH] [ERROR] register email exists:", email)
		return models.Admin{}, apperr.ErrEmailTaken
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		log.Println("[AUTH] [ERROR] register lookup failed:", err)
		return models.Admin{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return models.Admin{}, fmt.Errorf("password hash failed: %w", err)
	}

	now := s.Now()
	admin := models.Admin{
		Name:      name,
		Email:     email,
		Password:  string(hash),
		IsAdmin:   s.grantsAdmin(input.AdminSecret),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.admins.Insert(ctx, admin)
	if err != nil {
		log.Println("[AUTH] [ERROR] register insert failed:", err)
		return models.Admin{}, err
	}
	log.Printf("[AUTH] [INFO] registered %s (admin=%t)", email, created.IsAdmin)
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (models.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return models.Admin{}, apperr.Validation("", "Email and password are required")
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Println("[AUTH] [ERROR] login unknown email")
		return models.Admin{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		log.Println("[AUTH] [ERROR] login lookup failed:", err)
		return models.Admin{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return models.Admin{}, apperr.ErrInvalidCredentials
	}

	log.Println("[AUTH] [INFO] login succeeded:", admin.Email)
	return admin, nil
}

func (s *AuthService) grantsAdmin(supplied string) bool {
	if s.adminSecret == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.adminSecret)) == 1
}
