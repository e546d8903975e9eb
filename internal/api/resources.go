package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/ecole-console/internal/csvimport"
	"github.com/JonMunkholm/ecole-console/internal/logging"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return &out, nil
}

// PlatformStats returns the super-admin dashboard figures.
func (c *Client) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var out PlatformStats
	if err := c.get(ctx, "/stats/platform", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SchoolStats returns the dashboard figures of the caller's school.
func (c *Client) SchoolStats(ctx context.Context) (*SchoolStats, error) {
	var out SchoolStats
	if err := c.get(ctx, "/stats/school", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Schools

// ListSchools returns all schools, filtered by search when it is set.
func (c *Client) ListSchools(ctx context.Context, search string) ([]School, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"q": {search}}
	}
	var out []School
	if err := c.get(ctx, "/schools", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSchool fetches one school.
func (c *Client) GetSchool(ctx context.Context, id string) (*School, error) {
	var out School
	if err := c.get(ctx, itemPath("/schools", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSchool registers a new school.
func (c *Client) CreateSchool(ctx context.Context, s School) (*School, error) {
	var out School
	if err := c.post(ctx, "/schools", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSchool replaces a school's details.
func (c *Client) UpdateSchool(ctx context.Context, id string, s School) (*School, error) {
	var out School
	if err := c.put(ctx, itemPath("/schools", id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSchool removes a school.
func (c *Client) DeleteSchool(ctx context.Context, id string) error {
	return c.delete(ctx, itemPath("/schools", id))
}

// Students

// ListStudents returns the school's students, restricted to class when set.
func (c *Client) ListStudents(ctx context.Context, class string) ([]Student, error) {
	var q url.Values
	if class != "" {
		q = url.Values{"class": {class}}
	}
	var out []Student
	if err := c.get(ctx, "/students", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStudent fetches one student.
func (c *Client) GetStudent(ctx context.Context, id string) (*Student, error) {
	var out Student
	if err := c.get(ctx, itemPath("/students", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStudent enrolls a student.
func (c *Client) CreateStudent(ctx context.Context, s Student) (*Student, error) {
	var out Student
	if err := c.post(ctx, "/students", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStudent replaces a student's details.
func (c *Client) UpdateStudent(ctx context.Context, id string, s Student) (*Student, error) {
	var out Student
	if err := c.put(ctx, itemPath("/students", id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStudent removes a student.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.delete(ctx, itemPath("/students", id))
}

// Contents

// ListContents returns the school's content catalog.
func (c *Client) ListContents(ctx context.Context) ([]Content, error) {
	var out []Content
	if err := c.get(ctx, "/contents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetContent fetches one catalog entry.
func (c *Client) GetContent(ctx context.Context, id string) (*Content, error) {
	var out Content
	if err := c.get(ctx, itemPath("/contents", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateContent adds a single catalog entry.
func (c *Client) CreateContent(ctx context.Context, content Content) (*Content, error) {
	var out Content
	if err := c.post(ctx, "/contents", content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateContent replaces a catalog entry.
func (c *Client) UpdateContent(ctx context.Context, id string, content Content) (*Content, error) {
	var out Content
	if err := c.put(ctx, itemPath("/contents", id), content, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteContent removes a catalog entry.
func (c *Client) DeleteContent(ctx context.Context, id string) error {
	return c.delete(ctx, itemPath("/contents", id))
}

// BulkCreateContent submits a whole parsed batch in one call. A response
// with success=false is reported as an *Error carrying the API message.
// A committed batch whose count falls outside [0, len(records)] is kept,
// with Count clamped to that range.
func (c *Client) BulkCreateContent(ctx context.Context, records []csvimport.Record) (*BulkResult, error) {
	var out BulkResult
	if err := c.post(ctx, "/contents/bulk", ContentBatch{Content: records}, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &Error{StatusCode: http.StatusUnprocessableEntity, Message: out.Message}
	}
	if out.Count < 0 || out.Count > len(records) {
		logging.FromContext(ctx).Warn("bulk insert count out of range",
			"reported", out.Count,
			"batch", len(records),
		)
		out.Count = min(max(out.Count, 0), len(records))
	}
	return &out, nil
}

// Contacts

// ListContacts returns the messages left through the contact form.
func (c *Client) ListContacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	if err := c.get(ctx, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteContact removes a contact message.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.delete(ctx, itemPath("/contacts", id))
}

// Billing

// ListSubscriptions returns every school's subscription (super admin).
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var out []Subscription
	if err := c.get(ctx, "/subscriptions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentSubscription returns the caller's school subscription, or nil
// when the school has none.
func (c *Client) CurrentSubscription(ctx context.Context) (*Subscription, error) {
	var out Subscription
	err := c.get(ctx, "/subscriptions/current", nil, &out)
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPlans returns the subscription plans on offer.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := c.get(ctx, "/subscriptions/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListInvoices returns the invoices of the caller's school.
func (c *Client) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var out []Invoice
	if err := c.get(ctx, "/subscriptions/invoices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
