package gmail

import (
	"context"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/internal/tracing"
)

const (
	labelInbox  = "INBOX"
	labelUnread = "UNREAD"
)

// Service reads confirmation emails through the Gmail REST API.
type Service struct {
	api    *gmailapi.Service
	userID string
	log    logger.Logger
}

// NewService uses client for every request; it is expected to carry the
// OAuth bearer token. Extra options are for pointing at a test endpoint.
func NewService(ctx context.Context, client *http.Client, userID string, log logger.Logger, opts ...option.ClientOption) (*Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	api, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating gmail client")
	}
	if userID == "" {
		userID = "me"
	}
	return &Service{api: api, userID: userID, log: log}, nil
}

// Search returns the newest inbox message matching query.
func (s *Service) Search(ctx context.Context, query models.Query) (*models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailService.Search")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(log.String("query", query.String()))

	list, err := s.api.Users.Messages.List(s.userID).
		Q(query.String()).
		LabelIds(labelInbox).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport("gmail users.messages.list", err)
	}
	if len(list.Messages) == 0 {
		span.LogFields(log.Bool("result.found", false))
		return nil, nil
	}

	id := list.Messages[0].Id
	full, err := s.api.Users.Messages.Get(s.userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport("gmail users.messages.get", err)
	}
	span.LogFields(log.String("result.messageId", full.Id))
	s.log.Debugf("gmail message %s matched %s", full.Id, query.String())
	return convertMessage(full), nil
}

// Archive removes the INBOX and UNREAD labels. Repeating it is harmless.
func (s *Service) Archive(ctx context.Context, message *models.Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GmailService.Archive")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(log.String("messageId", message.ID))

	_, err := s.api.Users.Messages.Modify(s.userID, message.ID, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{labelInbox, labelUnread},
	}).Context(ctx).Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return er.Transport("gmail users.messages.modify", err)
	}
	return nil
}

func convertMessage(message *gmailapi.Message) *models.Message {
	return &models.Message{
		ID:       message.Id,
		ThreadID: message.ThreadId,
		Payload:  convertPart(message.Payload),
	}
}

func convertPart(part *gmailapi.MessagePart) *models.Part {
	if part == nil {
		return nil
	}
	out := &models.Part{MimeType: part.MimeType}
	if part.Body != nil {
		out.Data = part.Body.Data
	}
	for _, child := range part.Parts {
		out.Parts = append(out.Parts, convertPart(child))
	}
	return out
}
