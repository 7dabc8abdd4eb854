package service

import (
	"context"

	"github.com/studio/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates a submission and stores it as a new unread contact.
	// Missing or empty fields yield a *ValidationError and nothing is stored.
	Submit(ctx context.Context, sub Submission) (*model.Contact, error)

	// List returns every stored contact in submission order.
	List(ctx context.Context) ([]*model.Contact, error)

	// MarkRead flags a contact as read. Unknown ids return repository.ErrNotFound.
	MarkRead(ctx context.Context, id int) (*model.Contact, error)
}

// Submission is the user-supplied part of a contact record.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}
