package models

// Message is one mailbox item as returned by a MailService backend.
type Message struct {
	ID       string
	ThreadID string
	Payload  *Part
}

// Part is a MIME part. Data holds the body base64 encoded, as the Gmail API
// delivers it; multipart containers usually carry no Data.
type Part struct {
	MimeType string
	Data     string
	Parts    []*Part
}

// FindPart returns the payload when it has the given MIME type, otherwise
// the first direct child that does. Grandchildren are not searched.
func (m *Message) FindPart(mimeType string) *Part {
	if m == nil || m.Payload == nil {
		return nil
	}
	if m.Payload.MimeType == mimeType {
		return m.Payload
	}
	for _, part := range m.Payload.Parts {
		if part != nil && part.MimeType == mimeType {
			return part
		}
	}
	return nil
}
