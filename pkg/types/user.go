package types

import "github.com/marcovilla/storefront-client/pkg/enums"

// User is the identity payload returned by login/ and profile/.
type User struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name,omitempty"`
	LastName    string         `json:"last_name,omitempty"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Role        enums.UserRole `json:"role,omitempty"`
	Addresses   []Address      `json:"addresses,omitempty"`
}

// Address is a saved shipping address attached to the profile.
type Address struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country"`
	Zipcode   string `json:"zipcode"`
	IsDefault bool   `json:"is_default"`
}
