package dto

import (
	"roombook/internal/domains/admin/model"
	"roombook/shared"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
	"strings"

	"github.com/google/uuid"
)

// AdminResponse never carries the password hash.
type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (a *AdminResponse) FromModel(admin model.Admin) {
	a.ID = admin.ID
	a.Username = admin.Username
	a.Name = admin.Name
}

type CreateAdminRequest struct {
	Username        string `json:"username"         validate:"notblank,max=100"`
	Name            string `json:"name"             validate:"notblank,max=255"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (c *CreateAdminRequest) ToModel(passwordHash, user string) model.Admin {
	return model.Admin{
		ID:           uuid.NewString(),
		Username:     c.Username,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(c.Name),
		Metadata:     gModel.NewMetadata(user, timezone.Now()),
	}
}

type GetAdminsResponse struct {
	Admins    []AdminResponse `json:"admins"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetAdminsResponse) FromModels(models []model.Admin, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Admins = make([]AdminResponse, len(models))
	for i, mod := range models {
		r.Admins[i].FromModel(mod)
	}
}
