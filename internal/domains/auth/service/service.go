package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/otel"
	adminModel "roombook/internal/domains/admin/model"
	adminDto "roombook/internal/domains/admin/model/dto"
	adminRepo "roombook/internal/domains/admin/repository"
	"roombook/internal/domains/auth/model/dto"
	"roombook/shared"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/password"

	"github.com/rs/zerolog/log"
)

const msgInvalidCredentials = "invalid credentials"

type Auth interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	Me(ctx context.Context) (adminDto.AdminResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type serviceImpl struct {
	adminRepo  adminRepo.Admin
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(adminRepo adminRepo.Admin, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		adminRepo:  adminRepo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.EndWith(&err)

	admin, err := s.adminRepo.Get(ctx, adminRepo.ByUsername(req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to get admin")

		return res, fmt.Errorf("failed to get admin: %w", err)
	}

	if admin.ID == constant.Empty {
		log.Warn().Str("username", req.Username).Msg("login attempt with unknown username")
		password.Burn(req.Password)

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	if err := password.Verify(req.Password, admin.PasswordHash); err != nil {
		log.Warn().Str("username", req.Username).Msg("login attempt with wrong password")

		return res, failure.Unauthorized(msgInvalidCredentials)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, admin.ID, admin.Username, admin.Name)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)
	res.Admin.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.EndWith(&err)

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) current(ctx context.Context) (adminModel.Admin, error) {
	adminID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if adminID == constant.Empty {
		return adminModel.Admin{}, failure.Unauthorized("missing session")
	}

	admin, err := s.adminRepo.Get(ctx, shared.FilterByID(adminID, adminModel.FieldID, adminModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get admin")

		return admin, fmt.Errorf("failed to get admin: %w", err)
	}

	if admin.ID == constant.Empty {
		return admin, failure.NotFound("admin not found")
	}

	return admin, nil
}

func (s *serviceImpl) Me(ctx context.Context) (res adminDto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.EndWith(&err)

	admin, err := s.current(ctx)
	if err != nil {
		return res, err
	}

	res.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.EndWith(&err)

	admin, err := s.current(ctx)
	if err != nil {
		return err
	}

	if err := password.Verify(req.CurrentPassword, admin.PasswordHash); err != nil {
		return failure.Validation("current password is incorrect", map[string]string{"current_password": "current password is incorrect"})
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatedFields := shared.TransformFields(dto.UpdatePasswordRequest{PasswordHash: hashedPassword}, admin.Username)
	filter := shared.FilterByID(admin.ID, adminModel.FieldID, adminModel.TableName)

	if err = s.adminRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
