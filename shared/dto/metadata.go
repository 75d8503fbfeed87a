package dto

import (
	"roombook/shared/constant"
	"roombook/shared/model"
	"roombook/shared/timezone"
)

// Metadata is the audit trail shown with rooms and bookings. Instants are rendered in the
// app timezone with their offset, so a booking decided at 09:00 local reads as 09:00.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedAt string `json:"modified_at"`
	ModifiedBy string `json:"modified_by"`
	Edited     bool   `json:"edited"`
}

func (m *Metadata) FromModel(meta model.Metadata) {
	*m = Metadata{
		CreatedAt:  timezone.Format(meta.CreatedAt, constant.DateFormat),
		CreatedBy:  meta.CreatedBy,
		ModifiedAt: timezone.Format(meta.ModifiedAt, constant.DateFormat),
		ModifiedBy: meta.ModifiedBy,
		Edited:     meta.ModifiedAt.After(meta.CreatedAt),
	}
}
