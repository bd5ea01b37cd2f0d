package model

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryIllegal       Category = "illegal"
	CategoryOverflowing   Category = "overflowing"
	CategoryBlocked       Category = "blocked"
	CategoryMissed        Category = "missed"
	CategoryGeneral       Category = "general"
	CategoryBurning       Category = "burning"
	CategoryUncategorized Category = "uncategorized"
	CategoryOther         Category = "other"
)

// AllowedCategories lists every accepted report category, in the order
// surfaced in validation messages.
var AllowedCategories = []Category{
	CategoryIllegal, CategoryOverflowing, CategoryBlocked,
	CategoryMissed, CategoryGeneral, CategoryBurning,
	CategoryUncategorized, CategoryOther,
}

func (c Category) Valid() bool {
	for _, allowed := range AllowedCategories {
		if c == allowed {
			return true
		}
	}
	return false
}

type ReportStatus string

const (
	StatusPending    ReportStatus = "PENDING"
	StatusAssigned   ReportStatus = "ASSIGNED"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusCompleted  ReportStatus = "COMPLETED"
	StatusCancelled  ReportStatus = "CANCELLED"
)

var AllowedStatuses = []ReportStatus{
	StatusPending, StatusAssigned, StatusInProgress,
	StatusCompleted, StatusCancelled,
}

func (s ReportStatus) Valid() bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

var AllowedPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	for _, allowed := range AllowedPriorities {
		if p == allowed {
			return true
		}
	}
	return false
}

type NotificationPreference string

const (
	PreferEmail NotificationPreference = "EMAIL"
	PreferSMS   NotificationPreference = "SMS"
	PreferBoth  NotificationPreference = "BOTH"
)

func (p NotificationPreference) Valid() bool {
	switch p {
	case PreferEmail, PreferSMS, PreferBoth:
		return true
	}
	return false
}

// ContactDetails is snapshotted from the reporter when the report is
// created and never re-derived afterwards.
type ContactDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email"`
}

const MaxDescriptionLength = 500

type Report struct {
	ID                     uuid.UUID              `json:"id"`
	TrackingID             string                 `json:"tracking_id"`
	Category               Category               `json:"category"`
	State                  string                 `json:"state"`
	LGA                    string                 `json:"lga"`
	Address                string                 `json:"address"`
	Description            string                 `json:"description,omitempty"`
	Images                 []string               `json:"images"`
	ContactDetails         ContactDetails         `json:"contact_details"`
	Priority               Priority               `json:"priority"`
	Status                 ReportStatus           `json:"status"`
	CreatedBy              uuid.UUID              `json:"created_by"`
	AssignedTo             *uuid.UUID             `json:"assigned_to,omitempty"`
	NotificationPreference NotificationPreference `json:"notification_preference"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// Request/Response DTOs
type CreateReportRequest struct {
	Category               Category               `json:"category"`
	State                  string                 `json:"state"`
	LGA                    string                 `json:"lga"`
	Address                string                 `json:"address"`
	Description            string                 `json:"description"`
	Images                 []string               `json:"images"`
	NotificationPreference NotificationPreference `json:"notification_preference"`
}

type AssignRequest struct {
	Email    string   `json:"email"`
	Priority Priority `json:"priority"`
}

// AssignResult distinguishes a fresh assignment from the informational
// already-assigned outcome, which is not an error.
type AssignResult struct {
	Report          *Report `json:"report"`
	AlreadyAssigned bool    `json:"already_assigned"`
	AssigneeEmail   string  `json:"assignee_email"`
}

type UpdateStatusRequest struct {
	Status ReportStatus `json:"status"`
}

type ListFilter struct {
	Category Category
	Page     int
	Limit    int
}

type ReportListResponse struct {
	Reports      []Report `json:"reports"`
	CurrentPage  int      `json:"current_page"`
	TotalReports int      `json:"total_reports"`
	TotalPages   int      `json:"total_pages"`
	HasNextPage  bool     `json:"has_next_page"`
	HasPrevPage  bool     `json:"has_prev_page"`
}

type ReportStats struct {
	TotalActive      int     `json:"total_active"`
	ThisMonthReports int     `json:"this_month_reports"`
	LastMonthReports int     `json:"last_month_reports"`
	PercentChange    float64 `json:"percent_change"`
	Pending          int     `json:"pending"`
	InProgress       int     `json:"in_progress"`
}
