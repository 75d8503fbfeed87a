package admin

import (
	"net/http"
	"roombook/infras/otel"
	"roombook/internal/domains/admin/model"
	"roombook/internal/domains/admin/model/dto"
	"roombook/internal/domains/admin/service"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/validator"
	"roombook/transport/http/response"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Admin
	otel    otel.Otel
}

func New(service service.Admin, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/admins", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAdmin)
		routerGroup.Get("/", handler.GetAdmins)
	})
}

// CreateAdmin adds another administrator account.
// @Summary Create an administrator
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateAdminRequest true "Create Admin Request"
// @Success 201 {object} response.Data[dto.AdminResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admins [post]
// @Security BearerAuth
func (handler *Handler) CreateAdmin(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAdmin")
	defer scope.End()

	req := dto.CreateAdminRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create admin")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Admin " + res.Username + " created")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetAdmins lists administrator accounts.
// @Summary Get all administrators
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param search query string false "Search by username or name"
// @Success 200 {object} response.Data[dto.GetAdminsResponse]
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/admins [get]
// @Security BearerAuth
func (handler *Handler) GetAdmins(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAdmins")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	if queryParams.SortBy == "" {
		queryParams.SortBy = model.FieldUsername
		queryParams.SortDir = gDto.SortDirAsc
	}

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if search := strings.TrimSpace(request.URL.Query().Get(constant.RequestParamSearch)); search != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{Field: model.FieldUsername, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName},
				gDto.Filter{Field: model.FieldName, Operator: gDto.FilterOperatorLike, Value: search, Table: model.TableName},
			},
		})
	}

	admins, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get admins")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, admins)
}
