package domain

import "time"

// Profile holds the residency details a citizen fills in after registering.
// Keyed by the owning account's user_id; one profile per account.
type Profile struct {
	UserID          string    `json:"user_id" dynamodbav:"user_id"`
	FirstName       string    `json:"first_name" dynamodbav:"first_name"`
	MiddleName      string    `json:"middle_name,omitempty" dynamodbav:"middle_name"`
	LastName        string    `json:"last_name" dynamodbav:"last_name"`
	Suffix          string    `json:"suffix,omitempty" dynamodbav:"suffix"`
	Birthdate       string    `json:"birthdate,omitempty" dynamodbav:"birthdate"` // YYYY-MM-DD
	TypeOfResidency string    `json:"type_of_residency,omitempty" dynamodbav:"type_of_residency"`
	Address         string    `json:"address,omitempty" dynamodbav:"address"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

// UpsertProfileInput is the body of PUT /user-profile/{user_id}.
type UpsertProfileInput struct {
	FirstName       string `json:"first_name" validate:"required,max=50"`
	MiddleName      string `json:"middle_name" validate:"max=50"`
	LastName        string `json:"last_name" validate:"required,max=50"`
	Suffix          string `json:"suffix" validate:"max=50"`
	Birthdate       string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	TypeOfResidency string `json:"type_of_residency" validate:"max=50"`
	Address         string `json:"address"`
}
