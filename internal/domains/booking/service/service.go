package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/infras/metrics"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/repository"
	"roombook/internal/domains/booking/schedule"
	"roombook/internal/domains/booking/validation"
	roomModel "roombook/internal/domains/room/model"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/i18n"
	"roombook/shared/timezone"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking      = constant.CachePrefixBooking + "get"
	cacheGetAllBooking   = constant.CachePrefixBooking + "gets"
	cacheCountBooking    = constant.CachePrefixBooking + "count"
	cacheCalendarBooking = constant.CachePrefixBooking + "calendar"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CreateApproved(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Validate(ctx context.Context, req dto.CreateBookingRequest) (dto.ValidateBookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Calendar(ctx context.Context, month, roomID string) (dto.CalendarResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (dto.BookingResponse, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	tx        postgres.Transactor
	validator *validation.Validator
	publisher event.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
	cache     cache.Cache
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	tx postgres.Transactor,
	validator *validation.Validator,
	publisher event.Publisher,
	metrics *metrics.Metrics,
	cfg *config.Config,
	cache cache.Cache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		tx:        tx,
		validator: validator,
		publisher: publisher,
		metrics:   metrics,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

// txConflicts answers conflict queries from inside the booking transaction.
type txConflicts struct {
	repo repository.Booking
	tx   *sqlx.Tx
}

func (c txConflicts) HasConflict(ctx context.Context, candidate schedule.Slot) (bool, error) {
	rows, err := c.repo.ListSlotsTx(ctx, c.tx, candidate.RoomID, candidate.Date)
	if err != nil {
		return false, err
	}

	return schedule.Conflicts(candidate, toSlots(rows)), nil
}

// readConflicts answers conflict queries from the read pool, for dry runs.
type readConflicts struct {
	repo repository.Booking
}

func (c readConflicts) HasConflict(ctx context.Context, candidate schedule.Slot) (bool, error) {
	rows, err := c.repo.ListRange(ctx, candidate.Date, candidate.Date.AddDate(0, 0, 1), candidate.RoomID)
	if err != nil {
		return false, err
	}

	slots := make(schedule.Bookings, len(rows))
	for i, row := range rows {
		slots[i] = row.Slot()
	}

	return slots.HasConflict(ctx, candidate)
}

func toSlots(rows []model.Slot) []schedule.Slot {
	slots := make([]schedule.Slot, len(rows))
	for i, row := range rows {
		slots[i] = row.ToSchedule()
	}

	return slots
}

func activeRoomFilter(id string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: roomModel.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: roomModel.TableName},
			gDto.Filter{Field: roomModel.FieldIsActive, Value: true, Operator: gDto.FilterOperatorEq, Table: roomModel.TableName},
		},
	}
}

func actor(ctx context.Context) string {
	if username, ok := ctx.Value(constant.ContextKeyUsername).(string); ok && username != "" {
		return username
	}

	return constant.ContextGuest
}

// failureFromErrors turns a failed validation into the error returned to the caller.
func (s *serviceImpl) failureFromErrors(lang i18n.Lang, errs validation.Errors) error {
	fields := errs.Localize(lang, s.validator.MinDuration())

	if errs.Conflict() {
		return failure.ConflictWithFields(i18n.T(lang, i18n.KeyConflict), fields)
	}

	return failure.Validation(i18n.T(lang, i18n.KeyInvalid), fields)
}

func conflictFailure(lang i18n.Lang) error {
	msg := i18n.T(lang, i18n.KeyConflict)

	return failure.ConflictWithFields(msg, map[string]string{validation.FieldStartTime: msg})
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.EndWith(&err)

	return s.create(ctx, req, model.StatusPending)
}

func (s *serviceImpl) CreateApproved(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateApproved")
	defer scope.EndWith(&err)

	return s.create(ctx, req, model.StatusApproved)
}

// create checks the room, validates and inserts in one serializable transaction.
func (s *serviceImpl) create(ctx context.Context, req dto.CreateBookingRequest, status string) (res dto.BookingResponse, err error) {
	req = req.Trimmed()
	lang := i18n.FromContext(ctx)

	var booking model.Booking

	err = s.tx.DoSerializable(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		roomOK := true

		if req.RoomID != "" {
			active, err := s.roomRepo.ExistTx(ctx, tx, activeRoomFilter(req.RoomID))
			if err != nil {
				return fmt.Errorf("failed to check room: %w", err)
			}

			roomOK = active
		}

		errs, err := s.validator.Validate(ctx, req, txConflicts{repo: s.repo, tx: tx})
		if err != nil {
			return err
		}

		if !roomOK {
			errs[validation.FieldRoomID] = validation.ReasonRoomUnavailable
		}

		if !errs.Valid() {
			return s.failureFromErrors(lang, errs)
		}

		slot, err := req.Slot()
		if err != nil {
			return fmt.Errorf("failed to build slot: %w", err)
		}

		booking = dto.NewBooking(req, slot, status, actor(ctx))

		return s.repo.InsertTx(ctx, tx, booking)
	})

	switch {
	case err == nil:
	case postgres.IsExclusionViolation(err), postgres.IsSerializationFailure(err):
		log.Warn().Err(err).Str("room_id", req.RoomID).Msg("booking lost a concurrent race")
		s.metrics.BookingSubmitted(metrics.OutcomeConflict)

		return res, conflictFailure(lang)
	case failure.IsConflict(err):
		s.metrics.BookingSubmitted(metrics.OutcomeConflict)

		return res, err
	case failure.GetCode(err) < 500:
		s.metrics.BookingSubmitted(metrics.OutcomeInvalid)

		return res, err
	default:
		log.Error().Err(err).Msg("failed to create booking")
		s.metrics.BookingSubmitted(metrics.OutcomeFailed)

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.BookingSubmitted(metrics.OutcomeCreated)

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c)
		s.publish(c, event.TypeCreated, res)
	}()

	return res, nil
}

func (s *serviceImpl) Validate(ctx context.Context, req dto.CreateBookingRequest) (res dto.ValidateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Validate")
	defer scope.EndWith(&err)

	errs, err := s.validator.Validate(ctx, req, readConflicts{repo: s.repo})
	if err != nil {
		log.Error().Err(err).Msg("failed to validate booking")

		return res, fmt.Errorf("failed to validate booking: %w", err)
	}

	res.Valid = errs.Valid()
	res.Fields = errs.Localize(i18n.FromContext(ctx), s.validator.MinDuration())

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found")
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// Calendar returns the blocking bookings of month (YYYY-MM) grouped per date.
func (s *serviceImpl) Calendar(ctx context.Context, month, roomID string) (res dto.CalendarResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Calendar")
	defer scope.EndWith(&err)

	if month == constant.Empty {
		month = timezone.Now().Format(constant.MonthFormat)
	}

	from, err := time.Parse(constant.MonthFormat, month)
	if err != nil {
		return res, failure.Validation("month must be formatted as YYYY-MM", map[string]string{constant.RequestParamMonth: "YYYY-MM"})
	}

	cacheKey := shared.BuildCacheKey(cacheCalendarBooking, month, roomID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking calendar")

		return res, nil
	}

	models, err := s.repo.ListRange(ctx, from, from.AddDate(0, 1, 0), roomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking calendar")

		return res, fmt.Errorf("failed to get booking calendar: %w", err)
	}

	res.FromModels(month, models)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking calendar to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) UpdateStatus(ctx context.Context, id string, req dto.UpdateStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.EndWith(&err)

	lang := i18n.FromContext(ctx)

	if !model.ValidStatus(req.Status) {
		return res, failure.Validation(i18n.T(lang, i18n.KeyInvalid), map[string]string{model.FieldStatus: req.Status})
	}

	if req.Status == model.StatusRejected && strings.TrimSpace(req.RejectionReason) == constant.Empty {
		msg := i18n.T(lang, i18n.KeyRejectionReason)

		return res, failure.Validation(msg, map[string]string{model.FieldRejectionReason: msg})
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found")
	}

	if s.cfg.App.Booking.StrictTransitions && !model.CanTransition(booking.Status, req.Status) {
		msg := fmt.Sprintf(i18n.T(lang, i18n.KeyTransition), booking.Status, req.Status)

		return res, failure.Validation(msg, map[string]string{model.FieldStatus: msg})
	}

	now := timezone.Now()
	user := actor(ctx)

	mod := map[string]any{
		model.FieldStatus:          req.Status,
		model.FieldRejectionReason: req.Reason(),
		constant.FieldModifiedAt:   now,
		constant.FieldModifiedBy:   user,
	}

	if err := s.repo.Update(ctx, mod, filter); err != nil {
		if postgres.IsExclusionViolation(err) || postgres.IsSerializationFailure(err) {
			return res, conflictFailure(lang)
		}

		log.Error().Err(err).Msg("failed to update booking status")

		return res, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking.Status = req.Status
	booking.RejectionReason = req.Reason()
	booking.ModifiedAt = now
	booking.ModifiedBy = user

	res.FromModel(booking)

	s.metrics.StatusChanged(req.Status)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		s.invalidate(c)
		s.publish(c, event.TypeStatusChanged, res)
	}()

	return res, nil
}

func (s *serviceImpl) invalidate(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCalendarBooking)
}

func (s *serviceImpl) publish(ctx context.Context, typ event.Type, booking dto.BookingResponse) {
	evt := event.Event{
		Type:        typ,
		BookingID:   booking.ID,
		RoomID:      booking.RoomID,
		BookingDate: booking.BookingDate,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		Status:      booking.Status,
		OccurredAt:  timezone.Now(),
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}
