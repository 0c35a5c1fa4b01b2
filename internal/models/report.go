package models

import "time"

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusReviewed ReportStatus = "reviewed"
)

type Report struct {
	ID           int64        `json:"id"`
	Reporter     string       `json:"reporter"`
	ReportedUser string       `json:"reportedUser"`
	Reason       string       `json:"reason"`
	Status       ReportStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type PremiumRequestStatus string

const (
	PremiumRequestPending  PremiumRequestStatus = "pending"
	PremiumRequestGranted  PremiumRequestStatus = "granted"
	PremiumRequestRejected PremiumRequestStatus = "rejected"
)

type PremiumRequest struct {
	ID        int64                `json:"id"`
	Username  string               `json:"username"`
	Status    PremiumRequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}
