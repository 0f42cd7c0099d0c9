package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"tradesim/src/models"
	"tradesim/src/repositories"
	"tradesim/src/schemas"
	"tradesim/src/utils"
)

var ErrInvalidRegistration = errors.New("name, email and password are required")

type UserServiceI interface {
	Register(ctx context.Context, req schemas.RegisterRequest) (*schemas.UserResponse, error)
	Login(ctx context.Context, req schemas.LoginRequest) (*schemas.UserResponse, error)
	GetUser(ctx context.Context, userID uint) (*schemas.UserResponse, error)
}

// UserService handles registration and login. The password credential is
// opaque to the accounting core; cash is granted once here and afterwards
// only the trade path may change it.
type UserService struct {
	store       repositories.UserStore
	ledger      repositories.Ledger
	initialCash decimal.Decimal
}

func NewUserService(store repositories.UserStore, ledger repositories.Ledger, initialCash decimal.Decimal) *UserService {
	return &UserService{
		store:       store,
		ledger:      ledger,
		initialCash: initialCash,
	}
}

func userResponse(user *models.User) *schemas.UserResponse {
	return &schemas.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Cash:  user.Cash,
	}
}

func (s *UserService) Register(ctx context.Context, req schemas.RegisterRequest) (*schemas.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, ErrInvalidRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Cash:         s.initialCash,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithField("user", user.ID).Info("user registered")

	return userResponse(&user), nil
}

func (s *UserService) Login(ctx context.Context, req schemas.LoginRequest) (*schemas.UserResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return userResponse(user), nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*schemas.UserResponse, error) {
	user, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return userResponse(user), nil
}
