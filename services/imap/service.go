package imap

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/fresh/config"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/logger"
	"github.com/customeros/fresh/internal/models"
	"github.com/customeros/fresh/internal/tracing"
)

// Service reads confirmation emails from a single IMAP mailbox.
type Service struct {
	config *config.ImapConfig
	log    logger.Logger

	mu     sync.Mutex
	client *client.Client
}

func NewService(cfg *config.ImapConfig, log logger.Logger) (*Service, error) {
	if cfg.Host == "" || cfg.Username == "" {
		return nil, errors.New("imap backend needs IMAP_HOST and IMAP_USERNAME")
	}
	return &Service{config: cfg, log: log}, nil
}

// Search returns the newest message in the inbox folder whose From and
// Subject headers contain the query terms. The message is not marked seen.
func (s *Service) Search(ctx context.Context, query models.Query) (*models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ImapService.Search")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(tracingLog.String("folder", s.config.Mailbox), tracingLog.String("query", query.String()))

	c, err := s.getClient(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport(s.address(), err)
	}

	if _, err := c.Select(s.config.Mailbox, true); err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport(s.address(), errors.Wrapf(err, "selecting %s", s.config.Mailbox))
	}

	uids, err := c.UidSearch(searchCriteria(query))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport(s.address(), errors.Wrap(err, "uid search"))
	}
	if len(uids) == 0 {
		span.LogFields(tracingLog.Bool("result.found", false))
		return nil, nil
	}

	uid := newestUID(uids)
	raw, err := s.fetchRaw(c, uid)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Transport(s.address(), err)
	}

	message, err := parseMessage(strconv.FormatUint(uint64(uid), 10), raw)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, er.Decode("message/rfc822", err)
	}
	span.LogFields(tracingLog.String("result.messageId", message.ID))
	return message, nil
}

// Archive marks the message seen and moves it to the archive folder.
// A message that was already moved is left alone.
func (s *Service) Archive(ctx context.Context, message *models.Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ImapService.Archive")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.LogFields(tracingLog.String("messageId", message.ID))

	uid, err := strconv.ParseUint(message.ID, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "imap message id %q", message.ID)
	}

	c, err := s.getClient(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return er.Transport(s.address(), err)
	}
	if _, err := c.Select(s.config.Mailbox, false); err != nil {
		tracing.TraceErr(span, err)
		return er.Transport(s.address(), errors.Wrapf(err, "selecting %s", s.config.Mailbox))
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	flags := []interface{}{imap.SeenFlag}
	if err := c.UidStore(seqSet, imap.FormatFlagsOp(imap.AddFlags, true), flags, nil); err != nil {
		tracing.TraceErr(span, err)
		return er.Transport(s.address(), errors.Wrap(err, "flagging message seen"))
	}
	if err := c.UidMove(seqSet, s.config.ArchiveMailbox); err != nil {
		tracing.TraceErr(span, err)
		return er.Transport(s.address(), errors.Wrapf(err, "moving message to %s", s.config.ArchiveMailbox))
	}
	return nil
}

func (s *Service) fetchRaw(c *client.Client, uid uint32) ([]byte, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, errors.Wrap(err, "reading message body")
		}
		raw = data
	}
	if err := <-done; err != nil {
		return nil, errors.Wrapf(err, "fetching uid %d", uid)
	}
	if raw == nil {
		return nil, errors.Errorf("uid %d has no body", uid)
	}
	return raw, nil
}

func (s *Service) address() string {
	return "imap://" + s.config.Host + ":" + strconv.Itoa(s.config.Port) + "/" + s.config.Mailbox
}

func searchCriteria(query models.Query) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if query.From != "" {
		criteria.Header.Add("From", query.From)
	}
	if query.Subject != "" {
		criteria.Header.Add("Subject", query.Subject)
	}
	return criteria
}

// newestUID relies on UIDs growing with delivery order.
func newestUID(uids []uint32) uint32 {
	newest := uids[0]
	for _, uid := range uids[1:] {
		if uid > newest {
			newest = uid
		}
	}
	return newest
}
