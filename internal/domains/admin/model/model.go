package model

import "roombook/shared/model"

const (
	TableName  = "admins"
	EntityName = "admin"

	FieldID           = "id"
	FieldUsername     = "username"
	FieldPasswordHash = "password_hash"
	FieldName         = "name"
)

// Admin is an operator allowed to manage rooms and decide on bookings.
type Admin struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	model.Metadata
}
