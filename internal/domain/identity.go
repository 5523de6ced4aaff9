package domain

import "strings"

// UserCredential is the login record. UserDetailID is nil until a detail is
// attached and is cleared again before the detail is removed.
type UserCredential struct {
	Base
	Username     string `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Password     string `json:"-" gorm:"not null"`
	Active       bool   `json:"active"`
	UserDetailID *int64 `json:"userDetailId"`
}

func (UserCredential) TableName() string { return "identity.user_credentials" }

// UserDetail belongs to exactly one credential and never outlives it.
type UserDetail struct {
	Base
	UserID             int64   `json:"userId" gorm:"uniqueIndex;not null"`
	FirstName          string  `json:"firstName"`
	MiddleName         string  `json:"middleName"`
	LastName           string  `json:"lastName"`
	DateOfBirth        Date    `json:"dateOfBirth"`
	PrimaryContact     string  `json:"primaryContact"`
	SecondaryContact   string  `json:"secondaryContact"`
	AlternateEmail     string  `json:"alternateEmail"`
	Address            Address `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Postal             Address `json:"postal" gorm:"embedded;embeddedPrefix:postal_"`
	UseAddressAsPostal bool    `json:"useAddressAsPostal"`

	// Username is resolved from the owning credential on read.
	Username string `json:"username" gorm:"-"`
}

func (UserDetail) TableName() string { return "identity.user_details" }

// NormalizeUsername is the canonical stored form. Lookups compare against it
// so usernames match case-insensitively.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
