package models

import "time"

type OccupancyRow struct {
	BranchID     int64   `json:"branch_id"`
	BranchName   string  `json:"branch_name"`
	Rooms        int     `json:"rooms"`
	RoomNights   int     `json:"room_nights"`
	BookedNights int     `json:"booked_nights"`
	Rate         float64 `json:"occupancy_rate"`
}

type RevenueRow struct {
	BranchID   int64   `json:"branch_id"`
	BranchName string  `json:"branch_name"`
	Cash       float64 `json:"cash"`
	Card       float64 `json:"card"`
	Online     float64 `json:"online"`
	Refunded   float64 `json:"refunded"`
	Net        float64 `json:"net"`
}

type ServiceUsageRow struct {
	ServiceID   int64   `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Report is a snapshot of branch performance for a date range.
type Report struct {
	From          time.Time         `json:"from"`
	To            time.Time         `json:"to"`
	GeneratedAt   time.Time         `json:"generated_at"`
	BranchID      int64             `json:"branch_id,omitempty"`
	Occupancy     []OccupancyRow    `json:"occupancy"`
	Revenue       []RevenueRow      `json:"revenue"`
	ServiceUsage  []ServiceUsageRow `json:"service_usage"`
	BookingStatus []StatusCount     `json:"booking_status"`
}

// Folio is the displayed account of a booking. The backend stays authoritative.
type Folio struct {
	BookingID      int64          `json:"booking_id"`
	Nights         int            `json:"nights"`
	RoomCharges    float64        `json:"room_charges"`
	ServiceCharges float64        `json:"service_charges"`
	TotalCharges   float64        `json:"total_charges"`
	Paid           float64        `json:"paid"`
	Refunded       float64        `json:"refunded"`
	BalanceDue     float64        `json:"balance_due"`
	Usages         []ServiceUsage `json:"usages"`
	Payments       []Payment      `json:"payments"`
}
