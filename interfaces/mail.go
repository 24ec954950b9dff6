package interfaces

import (
	"context"

	"github.com/customeros/fresh/internal/models"
)

// MailService is the raw mailbox capability: one bounded search and an archive action.
type MailService interface {
	// Search returns the most recent inbox message matching query, fully
	// fetched, or nil when nothing matches.
	Search(ctx context.Context, query models.Query) (*models.Message, error)
	Archive(ctx context.Context, message *models.Message) error
}

// Inbox polls a MailService until a confirmation email arrives.
type Inbox interface {
	FindWithRetry(ctx context.Context, query models.Query, policy models.RetryPolicy) (*models.Message, error)
	Archive(ctx context.Context, message *models.Message) error
}
