package models

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "Available"
	RoomOccupied    RoomStatus = "Occupied"
	RoomMaintenance RoomStatus = "Maintenance"
)

var RoomStatuses = []RoomStatus{RoomAvailable, RoomOccupied, RoomMaintenance}

func ParseRoomStatus(raw string) (RoomStatus, bool) {
	key := normalizeStatus(raw)
	for _, s := range RoomStatuses {
		if normalizeStatus(string(s)) == key {
			return s, true
		}
	}
	return "", false
}

type Room struct {
	ID          int64      `json:"id"`
	BranchID    int64      `json:"branch_id" validate:"required,gt=0"`
	Number      string     `json:"room_number" validate:"required,max=16"`
	Type        string     `json:"room_type" validate:"required,max=64"`
	Rate        float64    `json:"rate" validate:"gt=0"`
	Capacity    int        `json:"capacity" validate:"min=1,max=12"`
	Floor       string     `json:"floor,omitempty"`
	Status      RoomStatus `json:"status"`
	Description string     `json:"description,omitempty" validate:"max=1000"`
}

type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=128"`
	City    string `json:"city" validate:"required,max=64"`
	Address string `json:"address" validate:"max=256"`
	Phone   string `json:"phone,omitempty" validate:"max=32"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}
