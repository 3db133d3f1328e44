package event

import "time"

type CreateRequest struct {
	Title             string     `json:"title"`
	StartsAt          time.Time  `json:"starts_at"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	Capacity          int        `json:"capacity"`
	LocationName      *string    `json:"location_name,omitempty"`
	AddressMapsLink   *string    `json:"address_maps_link,omitempty"`
	LocationDirection *string    `json:"location_getting_there,omitempty"`
	ContactPhone      *string    `json:"contact_phone,omitempty"`
	ContactEmail      *string    `json:"contact_email,omitempty"`
	ContactURL        *string    `json:"contact_url,omitempty"`
}

// UpdateRequest applies partial updates; nil fields are left untouched.
type UpdateRequest struct {
	Title             *string    `json:"title,omitempty"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	Capacity          *int       `json:"capacity,omitempty"`
	LocationName      *string    `json:"location_name,omitempty"`
	AddressMapsLink   *string    `json:"address_maps_link,omitempty"`
	LocationDirection *string    `json:"location_getting_there,omitempty"`
	ContactPhone      *string    `json:"contact_phone,omitempty"`
	ContactEmail      *string    `json:"contact_email,omitempty"`
	ContactURL        *string    `json:"contact_url,omitempty"`
}

type SeedResponse struct {
	EventID  uint `json:"event_id"`
	Capacity int  `json:"capacity"`
	Existing int  `json:"existing"`
	Created  int  `json:"created"`
}

type TicketTypeCreateRequest struct {
	Name        string `json:"name"`
	Price       int    `json:"price"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

type TicketTypeUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Price       *int    `json:"price,omitempty"`
	MaxQuantity *int    `json:"max_quantity,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}
