package api

import (
	"time"

	"github.com/JonMunkholm/ecole-console/internal/csvimport"
)

// User is the account returned at login.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"schoolId,omitempty"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// PlatformStats feeds the super-admin dashboard.
type PlatformStats struct {
	Schools             int   `json:"schools"`
	Students            int   `json:"students"`
	ActiveSubscriptions int   `json:"activeSubscriptions"`
	PendingContacts     int   `json:"pendingContacts"`
	MonthlyRevenueCents int64 `json:"monthlyRevenueCents"`
}

// SchoolStats feeds the school-admin dashboard.
type SchoolStats struct {
	Students           int        `json:"students"`
	Contents           int        `json:"contents"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	RenewsAt           *time.Time `json:"renewsAt,omitempty"`
}

// School is a tenant of the platform.
type School struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Student belongs to the school of the calling admin.
type Student struct {
	ID          string `json:"id,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Class       string `json:"class"`
	Email       string `json:"email,omitempty"`
	ParentPhone string `json:"parentPhone,omitempty"`
}

// Content is one catalog entry (book, document, resource).
type Content struct {
	ID          string `json:"id,omitempty"`
	No          string `json:"no,omitempty"`
	Titre       string `json:"titre,omitempty"`
	Auteur      string `json:"auteur,omitempty"`
	Description string `json:"description,omitempty"`
}

// ContentBatch is the bulk-insert payload. Absent record fields are
// omitted so the API applies its own defaults.
type ContentBatch struct {
	Content []csvimport.Record `json:"content"`
}

// BulkResult is the answer to a bulk insert.
type BulkResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Plan is a subscription offer.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
}

// Subscription ties a school to a plan.
type Subscription struct {
	ID               string    `json:"id"`
	SchoolID         string    `json:"schoolId"`
	SchoolName       string    `json:"schoolName,omitempty"`
	PlanName         string    `json:"planName"`
	Status           string    `json:"status"`
	AmountCents      int64     `json:"amountCents"`
	Currency         string    `json:"currency"`
	CurrentPeriodEnd time.Time `json:"currentPeriodEnd"`
}

// Invoice is one billing document of the calling school.
type Invoice struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	IssuedAt    time.Time  `json:"issuedAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}
