// Package services contains the business logic behind the HTTP handlers.
// This file implements AuthService: signup with store provisioning,
// credential verification and session issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/storekeeper/internal/auth"
	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories"
	"github.com/vaughan-dsouza/storekeeper/internal/validation"
)

// LoginResult is a verified user plus the session token minted for it.
type LoginResult struct {
	User      models.PublicUser
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	db         dbx.DBTX
	tx         dbx.TxFunc
	repos      repositories.Manager
	issuer     *auth.Issuer
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService wires the service. db may be nil for backends that ignore
// it; tx must run its callback as one unit of work.
func NewAuthService(db dbx.DBTX, tx dbx.TxFunc, repos repositories.Manager, issuer *auth.Issuer, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		db:         db,
		tx:         tx,
		repos:      repos,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

// Signup creates a store and its owner in one transaction. A taken email
// yields common.ErrConflict, invalid input a *validation.FieldError.
func (s *AuthService) Signup(ctx context.Context, in validation.SignupInput) (*models.PublicUser, error) {
	if err := validation.ValidateSignup(&in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	storeName := in.StoreName
	if storeName == "" {
		storeName = defaultStoreName(in.Name)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Email:    in.Email,
		Password: sql.NullString{String: string(hash), Valid: true},
		Name:     in.Name,
		Role:     models.RoleOwner,
	}
	if err := s.provision(ctx, user, storeName); err != nil {
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// VerifyCredentials returns the public projection of the user owning email
// and password. Every mismatch yields common.ErrUnauthorized, and a
// missing account still costs one bcrypt comparison.
func (s *AuthService) VerifyCredentials(ctx context.Context, in validation.LoginInput) (*models.PublicUser, error) {
	if err := validation.ValidateLogin(&in); err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(in.Password))
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	if !user.Password.Valid || user.Password.String == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(in.Password))
		return nil, common.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte(in.Password)); err != nil {
		return nil, common.ErrUnauthorized
	}

	pub := user.Public()
	return &pub, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, in validation.LoginInput) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(*user)
}

// SignInExternal signs in a user vouched for by an identity provider,
// creating the account and its store on first sight.
func (s *AuthService) SignInExternal(ctx context.Context, p auth.Profile) (*LoginResult, error) {
	email := validation.NormalizeEmail(p.Email)
	if email == "" {
		return nil, common.ErrUnauthorized
	}

	users := s.repos.Users(s.db)
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return s.issue(user.Public())
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user = &models.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  models.RoleOwner,
	}
	err = s.provision(ctx, user, defaultStoreName(name))
	if errors.Is(err, common.ErrConflict) {
		// lost a race with a concurrent first sign-in
		user, err = users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	return s.issue(user.Public())
}

func (s *AuthService) provision(ctx context.Context, user *models.User, storeName string) error {
	return s.tx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		store, err := s.repos.Stores(tx).Create(ctx, &models.Store{ID: uuid.NewString(), Name: storeName})
		if err != nil {
			return err
		}
		user.StoreID = store.ID

		_, err = s.repos.Users(tx).Create(ctx, user)
		return err
	})
}

func (s *AuthService) issue(u models.PublicUser) (*LoginResult, error) {
	token, exp, err := s.issuer.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storekeeper-timing-guard"), s.bcryptCost)
	})
	return s.dummyHash
}

func defaultStoreName(owner string) string {
	return owner + "'s Store"
}
