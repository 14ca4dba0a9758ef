package models

// ListQuery scopes a backend list call. Zero fields are omitted.
type ListQuery struct {
	BranchID  int64
	GuestID   int64
	BookingID int64
	Status    string
	Search    string
}
