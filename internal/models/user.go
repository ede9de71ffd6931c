package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is embedded in users and copied into orders as a snapshot.
type Address struct {
	Street      string `bson:"street" json:"street"`
	City        string `bson:"city" json:"city"`
	State       string `bson:"state" json:"state"`
	PostalCode  string `bson:"postalCode" json:"postalCode"`
	Country     string `bson:"country" json:"country"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
}

// User represents a storefront account. Order, cart and wishlist fields are
// non-owning back-references.
type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Email     string               `bson:"email" json:"email"`
	Password  string               `bson:"password,omitempty" json:"-"`
	Addresses []Address            `bson:"addresses" json:"addresses"`
	Orders    []primitive.ObjectID `bson:"yourOrders,omitempty" json:"yourOrders,omitempty"`
	Cart      *primitive.ObjectID  `bson:"cart,omitempty" json:"cart,omitempty"`
	Wishlist  *primitive.ObjectID  `bson:"wishlist,omitempty" json:"wishlist,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryAddress returns the first address, or nil when the user has none.
func (u User) PrimaryAddress() *Address {
	if len(u.Addresses) == 0 {
		return nil
	}
	address := u.Addresses[0]
	return &address
}

// UserSummary is the flattened row of the user directory.
type UserSummary struct {
	UserID     primitive.ObjectID `json:"userId"`
	Email      string             `json:"email"`
	Name       string             `json:"name"`
	Address    *Address           `json:"address,omitempty"`
	OrderCount int64              `json:"orderCount"`
}
