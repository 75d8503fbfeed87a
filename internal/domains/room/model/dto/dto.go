package dto

import (
	"roombook/internal/domains/room/model"
	"roombook/shared"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateRoomRequest accepts Image as a plain URL or as a base64 data URL.
type CreateRoomRequest struct {
	Name        string   `json:"name"        validate:"notblank,max=100"`
	Capacity    string   `json:"capacity"    validate:"omitempty,max=50"`
	Floor       string   `json:"floor"       validate:"omitempty,max=50"`
	Amenities   []string `json:"amenities"   validate:"omitempty,dive,notblank,max=50"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Image       string   `json:"image"       validate:"omitempty,imageref=image/jpeg image/jpg image/png image/gif image/bmp image/tiff"`
}

func (c *CreateRoomRequest) ToModel(user string, imageURL string) model.Room {
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return model.Room{
		ID:          uuid.NewString(),
		Name:        c.Name,
		Capacity:    c.Capacity,
		Floor:       c.Floor,
		Amenities:   pq.StringArray(amenities),
		Description: c.Description,
		Image:       imageURL,
		IsActive:    true,
		Metadata:    gModel.NewMetadata(user, timezone.Now()),
	}
}

// UpdateRoomRequest changes only the fields that are set.
type UpdateRoomRequest struct {
	Name        string         `db:"name"        json:"name"        validate:"omitempty,max=100"`
	Capacity    string         `db:"capacity"    json:"capacity"    validate:"omitempty,max=50"`
	Floor       string         `db:"floor"       json:"floor"       validate:"omitempty,max=50"`
	Amenities   pq.StringArray `db:"amenities"   json:"amenities"   validate:"omitempty,dive,notblank,max=50"`
	Description string         `db:"description" json:"description" validate:"omitempty,max=1000"`
	Image       string         `json:"image"     validate:"omitempty,imageref=image/jpeg image/jpg image/png image/gif image/bmp image/tiff"`
}

func (u *UpdateRoomRequest) Empty() bool {
	return u.Name == "" && u.Capacity == "" && u.Floor == "" && u.Amenities == nil && u.Description == "" && u.Image == ""
}

type RoomResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Capacity    string   `json:"capacity"`
	Floor       string   `json:"floor"`
	Amenities   []string `json:"amenities"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	IsActive    bool     `json:"is_active"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Capacity = model.Capacity
	r.Floor = model.Floor
	r.Amenities = []string(model.Amenities)
	r.Description = model.Description
	r.Image = model.Image
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)

	if r.Amenities == nil {
		r.Amenities = []string{}
	}
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
