package model

import (
	"roombook/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldName        = "name"
	FieldCapacity    = "capacity"
	FieldFloor       = "floor"
	FieldAmenities   = "amenities"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldIsActive    = "is_active"
)

type Room struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Capacity    string         `db:"capacity"`
	Floor       string         `db:"floor"`
	Amenities   pq.StringArray `db:"amenities"`
	Description string         `db:"description"`
	Image       string         `db:"image"`
	IsActive    bool           `db:"is_active"`
	model.Metadata
}
