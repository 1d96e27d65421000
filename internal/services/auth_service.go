package services

import (
	"context"
	"fmt"

	"beecommerce/internal/auth"
	"beecommerce/internal/domain"
	"beecommerce/internal/repos"
	"beecommerce/internal/validate"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	DB     *sqlx.DB
	Users  *repos.UserRepo
	Tokens *auth.Tokens
}

func NewAuthService(db *sqlx.DB, tokens *auth.Tokens) *AuthService {
	return &AuthService{DB: db, Users: repos.NewUserRepo(db), Tokens: tokens}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleUser)
}

func (s *AuthService) create(ctx context.Context, in RegisterInput, role string) (*domain.User, error) {
	username, ok := validate.Username(in.Username)
	if !ok {
		return nil, fmt.Errorf("%w: username must be 3-150 letters, digits or @.+-_", ErrInvalidInput)
	}
	email := ""
	if in.Email != "" {
		if email, ok = validate.Email(in.Email); !ok {
			return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
		}
	}
	if !validate.Password(in.Password) {
		return nil, fmt.Errorf("%w: password must be 8-64 characters with upper, lower, digit and symbol", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: uuid.NewString(), Username: username, Email: email, Hash: string(hash), Role: role}
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		users := repos.NewUserRepo(tx)
		exists, err := users.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return users.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the admin account, or promotes an existing user of
// that name. The password of an existing user is left alone.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.Users.ByUsername(ctx, username)
	switch {
	case err == nil:
		if u.Role != domain.RoleAdmin {
			if err := s.Users.SetRole(ctx, u.ID, domain.RoleAdmin); err != nil {
				return nil, err
			}
			u.Role = domain.RoleAdmin
		}
		return u, nil
	case repos.IsNotFound(err):
		return s.create(ctx, RegisterInput{Username: username, Password: password}, domain.RoleAdmin)
	default:
		return nil, err
	}
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Pair, *domain.User, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		if repos.IsNotFound(err) {
			return auth.Pair{}, nil, ErrBadCreds
		}
		return auth.Pair{}, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return auth.Pair{}, nil, ErrBadCreds
	}
	if err := s.Users.TouchLogin(ctx, u.ID); err != nil {
		return auth.Pair{}, nil, err
	}
	pair, err := s.Tokens.Issue(u.ID, u.Role)
	return pair, u, err
}

// Refresh rotates a refresh token: the presented one is blacklisted and a
// new pair is issued. Replaying a rotated token fails.
func (s *AuthService) Refresh(ctx context.Context, raw string) (auth.Pair, error) {
	c, err := s.Tokens.Parse(raw, auth.TypeRefresh)
	if err != nil {
		return auth.Pair{}, err
	}
	var pair auth.Pair
	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		u, err := repos.NewUserRepo(tx).ByID(ctx, c.UserID)
		if err != nil {
			return notFoundAs(err, auth.ErrInvalidToken)
		}
		fresh, err := repos.NewTokenRepo(tx).Revoke(ctx, c.ID, c.ExpiresAt.Time)
		if err != nil {
			return err
		}
		if !fresh {
			return auth.ErrInvalidToken
		}
		pair, err = s.Tokens.Issue(u.ID, u.Role)
		return err
	})
	return pair, err
}

// Verify accepts any live token; refresh tokens must not be blacklisted.
func (s *AuthService) Verify(ctx context.Context, raw string) (*auth.Claims, error) {
	c, err := s.Tokens.Parse(raw, "")
	if err != nil {
		return nil, err
	}
	if c.TokenType == auth.TypeRefresh {
		revoked, err := repos.NewTokenRepo(s.DB).Revoked(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, auth.ErrInvalidToken
		}
	}
	return c, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrNotFound)
	}
	return u, nil
}
