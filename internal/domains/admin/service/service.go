package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/admin/model"
	"roombook/internal/domains/admin/model/dto"
	"roombook/internal/domains/admin/repository"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/password"

	"github.com/rs/zerolog/log"
)

const msgUsernameTaken = "username is already taken"

type Admin interface {
	Create(ctx context.Context, req dto.CreateAdminRequest) (dto.AdminResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAdminsResponse, error)
}

type serviceImpl struct {
	repo repository.Admin
	cfg  *config.Config
	otel otel.Otel
}

func New(repo repository.Admin, cfg *config.Config, otel otel.Otel) Admin {
	return &serviceImpl{
		repo: repo,
		cfg:  cfg,
		otel: otel,
	}
}

func usernameTaken() error {
	return failure.ConflictWithFields(msgUsernameTaken, map[string]string{model.FieldUsername: msgUsernameTaken})
}

// Create adds another administrator. Two concurrent requests for one username both pass the
// existence check, so the unique index has the final word.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAdminRequest) (res dto.AdminResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.Create")
	defer scope.EndWith(&err)

	creator, _ := ctx.Value(constant.ContextKeyUsername).(string)

	exists, err := s.repo.Exist(ctx, repository.ByUsername(req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if admin exists")

		return res, fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if exists {
		return res, usernameTaken()
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := req.ToModel(hashedPassword, creator)

	if err = s.repo.Insert(ctx, admin); err != nil {
		if postgres.IsUniqueViolation(err) {
			return res, usernameTaken()
		}

		log.Error().Err(err).Msg("failed to create admin")

		return res, fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info().Str("username", admin.Username).Str("created_by", creator).Msg("admin created")

	res.FromModel(admin)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAdminsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".admin.GetAll")
	defer scope.EndWith(&err)

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count admins")

		return res, fmt.Errorf("failed to count admins: %w", err)
	}

	admins, err := s.repo.GetAll(ctx, req, filter, model.FieldID, model.FieldUsername, model.FieldName)
	if err != nil {
		log.Error().Err(err).Msg("failed to get admins")

		return res, fmt.Errorf("failed to get admins: %w", err)
	}

	res.FromModels(admins, total, req.Limit)

	return res, nil
}
