package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"roombook/config"
	"roombook/infras/otel"
	"roombook/infras/s3"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/repository"
	"roombook/shared"
	dataURL "roombook/shared/base64"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/imageproc"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo   repository.Room
	cfg    *config.Config
	cache  cache.Cache
	otel   otel.Otel
	s3     s3.S3
	images *imageproc.Processor
}

func New(repo repository.Room, cfg *config.Config, cache cache.Cache, otel otel.Otel, s3 s3.S3, images *imageproc.Processor) Room {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		otel:   otel,
		s3:     s3,
		images: images,
	}
}

// ActiveFilter narrows filter to rooms that have not been removed.
func ActiveFilter(filter gDto.FilterGroup) gDto.FilterGroup {
	active := gDto.Filter{Field: model.FieldIsActive, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName}

	if len(filter.Filters) == 0 {
		return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{active}}
	}

	return gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd, Filters: []any{active, filter}}
}

func activeByID(id string) gDto.FilterGroup {
	return ActiveFilter(shared.FilterByID(id, model.FieldID, model.TableName))
}

func actor(ctx context.Context) string {
	username, _ := ctx.Value(constant.ContextKeyUsername).(string)

	return username
}

// storeImage turns the submitted image into the reference kept on the room. Plain URLs
// are kept as they are. Data URLs are resized, then uploaded when object storage is
// enabled or kept inline otherwise. The returned object key is empty when nothing was uploaded.
func (s *serviceImpl) storeImage(ctx context.Context, image string) (ref, objectKey string, err error) {
	if image == constant.Empty || !dataURL.IsDataURL(image) {
		return image, constant.Empty, nil
	}

	data, contentType, err := dataURL.Decode(image)
	if err != nil {
		return "", "", failure.Validation("image must be a valid base64 data URL", map[string]string{model.FieldImage: err.Error()})
	}

	resized, err := s.images.Fit(data, contentType)
	if err != nil {
		if errors.Is(err, imageproc.ErrTooLarge) || errors.Is(err, imageproc.ErrUnsupported) {
			return "", "", failure.Validation(err.Error(), map[string]string{model.FieldImage: err.Error()})
		}

		return "", "", failure.Validation("image could not be read", map[string]string{model.FieldImage: err.Error()})
	}

	if !s.cfg.External.S3.Enable {
		return "data:" + constant.ContentTypeJPEG + ";base64," + base64.StdEncoding.EncodeToString(resized), constant.Empty, nil
	}

	fileName := uuid.NewString() + ".jpg"

	url, err := s.s3.Upload(ctx, s.cfg.External.S3.Directory, fileName, constant.ContentTypeJPEG, resized)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room image")

		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}

	return url, s.s3.ObjectKeyFromURL(url), nil
}

// dropImage removes an uploaded object. Failures only leave an orphan behind.
func (s *serviceImpl) dropImage(ctx context.Context, objectKey string) {
	if objectKey == constant.Empty || !s.cfg.External.S3.Enable {
		return
	}

	if err := s.s3.Delete(ctx, objectKey); err != nil {
		log.Error().Err(err).Str("object_key", objectKey).Msg("failed to delete room image")
	}
}

// invalidate drops the cached room views. An existing room (id set) may have been renamed
// or removed, so the booking views carrying its name go too.
func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if id != constant.Empty {
		if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room from cache")
		}

		shared.InvalidateCaches(ctx, s.cache, constant.CachePrefixBooking)
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllRoom)
	shared.InvalidateCaches(ctx, s.cache, cacheCountRoom)
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.EndWith(&err)

	imageRef, objectKey, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return res, err
	}

	room := req.ToModel(actor(ctx), imageRef)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")
		s.dropImage(ctx, objectKey)

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(room)

	go func() {
		s.invalidate(context.WithoutCancel(ctx), constant.Empty)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.EndWith(&err)

	filter = ActiveFilter(filter)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.EndWith(&err)

	filter = ActiveFilter(filter)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, activeByID(id))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found")
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.EndWith(&err)

	if req.Empty() {
		return failure.BadRequestFromString("update request cannot be empty")
	}

	filter := activeByID(id)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return fmt.Errorf("failed to get room: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("room not found")
	}

	imageRef, objectKey, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return err
	}

	updatedFields := shared.TransformFields(req, actor(ctx))
	if imageRef != constant.Empty {
		updatedFields[model.FieldImage] = imageRef
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update room")
		s.dropImage(ctx, objectKey)

		return fmt.Errorf("failed to update room: %w", err)
	}

	if objectKey != constant.Empty && current.Image != constant.Empty {
		s.dropImage(ctx, s.s3.ObjectKeyFromURL(current.Image))
	}

	go func() {
		s.invalidate(context.WithoutCancel(ctx), id)
	}()

	return nil
}

// Delete deactivates the room. Bookings keep pointing at it.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.EndWith(&err)

	filter := activeByID(id)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if !exist {
		return failure.NotFound("room not found")
	}

	mod := map[string]any{
		model.FieldIsActive:      false,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor(ctx),
	}

	if err := s.repo.Update(ctx, mod, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	go func() {
		s.invalidate(context.WithoutCancel(ctx), id)
	}()

	return nil
}
