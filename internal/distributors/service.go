package distributors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/internal/users"
	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/mailer"
	"github.com/coverline/coverline-backend/pkg/security"
)

const tempPasswordLength = 24

// Service exposes company-facing distributor management.
type Service interface {
	Onboard(ctx context.Context, companyID uuid.UUID, input CreateDistributorInput) (*DistributorDTO, error)
	ResendInvite(ctx context.Context, companyID, distributorID uuid.UUID) error
	Update(ctx context.Context, companyID, distributorID uuid.UUID, input UpdateDistributorInput) (*DistributorDTO, error)
	Get(ctx context.Context, companyID, distributorID uuid.UUID) (*DistributorDTO, error)
	List(ctx context.Context, companyID uuid.UUID, limit int, cursor string) (*DistributorListResult, error)
}

type resetTokenStore interface {
	StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	RevokeResetToken(ctx context.Context, token string) error
}

// ServiceParams packages the dependencies for the distributor flows.
type ServiceParams struct {
	DB             *db.Client
	Repo           *Repository
	PasswordConfig config.PasswordConfig
	ResetConfig    config.PasswordResetConfig
	Tokens         resetTokenStore
	Mailer         mailer.Mailer
	Logger         *logger.Logger
	ResetURLBase   string
}

type service struct {
	db           *db.Client
	repo         *Repository
	passwordCfg  config.PasswordConfig
	resetCfg     config.PasswordResetConfig
	tokens       resetTokenStore
	mail         mailer.Mailer
	logg         *logger.Logger
	resetURLBase string
}

// NewService builds a distributor service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("distributor repository required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("reset token store required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	return &service{
		db:           params.DB,
		repo:         params.Repo,
		passwordCfg:  params.PasswordConfig,
		resetCfg:     params.ResetConfig,
		tokens:       params.Tokens,
		mail:         params.Mailer,
		logg:         params.Logger,
		resetURLBase: strings.TrimRight(params.ResetURLBase, "/"),
	}, nil
}

// Onboard creates the auth user and distributor profile in one transaction,
// then invites the distributor to set a password. A failed invite email does
// not undo the committed records; the reset token is revoked and the company
// can resend the invite.
func (s *service) Onboard(ctx context.Context, companyID uuid.UUID, input CreateDistributorInput) (*DistributorDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	passwordHash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	var created *models.Distributor
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		distributorRepo := NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			Name:         name,
			Role:         enums.UserRoleDistributor,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create distributor user")
		}

		created, err = distributorRepo.Create(ctx, &models.Distributor{
			ID:        user.ID,
			CompanyID: companyID,
			Name:      name,
			Email:     email,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create distributor profile")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.sendInvite(ctx, created.ID, created.Name, created.Email)

	return toDTO(created), nil
}

// ResendInvite issues a fresh password setup email for an onboarded
// distributor.
func (s *service) ResendInvite(ctx context.Context, companyID, distributorID uuid.UUID) error {
	distributor, err := s.loadOwned(ctx, companyID, distributorID)
	if err != nil {
		return err
	}
	s.sendInvite(ctx, distributor.ID, distributor.Name, distributor.Email)
	return nil
}

// Update mutates a distributor profile owned by the acting company.
func (s *service) Update(ctx context.Context, companyID, distributorID uuid.UUID, input UpdateDistributorInput) (*DistributorDTO, error) {
	distributor, err := s.loadOwned(ctx, companyID, distributorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		distributor.Name = name
	}

	updated, err := s.repo.Update(ctx, distributor)
	if err != nil {
		return nil, err
	}
	return toDTO(updated), nil
}

// Get loads a distributor owned by the acting company.
func (s *service) Get(ctx context.Context, companyID, distributorID uuid.UUID) (*DistributorDTO, error) {
	distributor, err := s.loadOwned(ctx, companyID, distributorID)
	if err != nil {
		return nil, err
	}
	return toDTO(distributor), nil
}

// List pages through the company's distributor roster.
func (s *service) List(ctx context.Context, companyID uuid.UUID, limit int, cursor string) (*DistributorListResult, error) {
	input := ListDistributorsInput{CompanyID: companyID}
	input.Pagination.Limit = limit
	input.Pagination.Cursor = cursor
	return s.repo.List(ctx, input)
}

func (s *service) loadOwned(ctx context.Context, companyID, distributorID uuid.UUID) (*models.Distributor, error) {
	distributor, err := s.repo.FindByID(ctx, distributorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distributor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load distributor")
	}
	if distributor.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distributor not found")
	}
	return distributor, nil
}

// sendInvite runs after commit. Failures are compensated by revoking the
// token so no orphaned reset credential stays live in Redis.
func (s *service) sendInvite(ctx context.Context, userID uuid.UUID, name, email string) {
	token, err := security.GenerateResetToken()
	if err != nil {
		s.warn(ctx, email, "distributor.invite.token_failed", err)
		return
	}
	if err := s.tokens.StoreResetToken(ctx, token, userID.String(), s.resetCfg.TokenTTL); err != nil {
		s.warn(ctx, email, "distributor.invite.store_failed", err)
		return
	}

	msg := mailer.Message{
		To:      email,
		ToName:  name,
		Subject: "Set up your Coverline account",
		PlainText: fmt.Sprintf(
			"Hello %s,\n\nAn account has been created for you. Set your password within %s using the link below:\n\n%s/reset-password?token=%s\n",
			name, s.resetCfg.TokenTTL, s.resetURLBase, token,
		),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		combined := multierr.Append(err, s.tokens.RevokeResetToken(ctx, token))
		s.warn(ctx, email, "distributor.invite.send_failed", combined)
	}
}

func (s *service) warn(ctx context.Context, email, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"email": email,
		"error": err.Error(),
	})
	s.logg.Warn(ctx, msg)
}
