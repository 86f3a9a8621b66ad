package model

import "time"

// GeneratedMessage is the sales guidance produced for one customer.
type GeneratedMessage struct {
	ID          string
	RequestID   string
	CustomerID  string
	CampaignID  string
	Objective   string
	Channel     string
	Message     string
	TopFeatures []DriverRecord
	CreatedAt   time.Time
}
