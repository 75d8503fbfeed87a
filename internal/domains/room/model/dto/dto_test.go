package dto_test

import (
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCreateRoomRequest_ToModel(t *testing.T) {
	req := dto.CreateRoomRequest{Name: "Ruang Rapat A", Capacity: "10 orang", Floor: "2"}

	room := req.ToModel("admin", "https://cdn.example.com/rooms/a.jpg")

	assert.NotEmpty(t, room.ID)
	assert.True(t, room.IsActive)
	assert.Equal(t, pq.StringArray{}, room.Amenities)
	assert.Equal(t, "admin", room.CreatedBy)
	assert.Equal(t, "https://cdn.example.com/rooms/a.jpg", room.Image)
}

func TestUpdateRoomRequest_Empty(t *testing.T) {
	assert.True(t, (&dto.UpdateRoomRequest{}).Empty())
	assert.False(t, (&dto.UpdateRoomRequest{Amenities: pq.StringArray{}}).Empty())
	assert.False(t, (&dto.UpdateRoomRequest{Image: "x"}).Empty())
}

func TestRoomResponse_FromModel(t *testing.T) {
	var res dto.RoomResponse
	res.FromModel(model.Room{ID: "r1", Name: "A", Amenities: nil, IsActive: true})

	assert.Equal(t, []string{}, res.Amenities)
	assert.True(t, res.IsActive)
}
