package domain

import (
	"errors"
	"time"
)

var ErrClientNotFound = errors.New("client not found")
var ErrClientExists = errors.New("client already exists")

// Client is a subscription customer record. Email is unique across clients.
type Client struct {
	ID                      string     `json:"_id"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	Phone                   string     `json:"phone"`
	Company                 string     `json:"company"`
	SubscriptionRenewalDate *time.Time `json:"subscriptionRenewalDate,omitempty"`
	SubscriptionAmount      *float64   `json:"subscriptionAmount,omitempty"`
	Notes                   string     `json:"notes,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}
