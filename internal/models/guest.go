package models

import "time"

type Guest struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name" validate:"required,max=64"`
	LastName    string    `json:"last_name" validate:"required,max=64"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone" validate:"required,min=6,max=20"`
	NationalID  string    `json:"national_id,omitempty" validate:"max=32"`
	Address     string    `json:"address,omitempty" validate:"max=256"`
	DateOfBirth string    `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g *Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}
