package markup

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	er "github.com/customeros/fresh/internal/errors"
)

const formContentType = "application/x-www-form-urlencoded"

// Field is one form key/value pair. Forms are encoded in slice order.
type Field struct {
	Key   string
	Value string
}

// Document is a parsed response body together with the URL it came from,
// so selector failures can name the page.
type Document struct {
	*goquery.Document
	URL    string
	Status int
	Header http.Header
}

// Get issues a GET and fails with a status error unless the response code
// equals expectedStatus.
func Get(ctx context.Context, client *http.Client, rawURL string, expectedStatus int) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, er.Transport(rawURL, err)
	}
	return do(client, req, expectedStatus)
}

func GetOK(ctx context.Context, client *http.Client, rawURL string) (*Document, error) {
	return Get(ctx, client, rawURL, http.StatusOK)
}

// SubmitForm POSTs fields form-encoded and checks the response status.
func SubmitForm(ctx context.Context, client *http.Client, rawURL string, fields []Field, expectedStatus int) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(EncodeForm(fields)))
	if err != nil {
		return nil, er.Transport(rawURL, err)
	}
	req.Header.Set("Content-Type", formContentType)
	return do(client, req, expectedStatus)
}

func PostOK(ctx context.Context, client *http.Client, rawURL string, fields []Field) (*Document, error) {
	return SubmitForm(ctx, client, rawURL, fields, http.StatusOK)
}

// EncodeForm applies standard form encoding while keeping field order,
// which url.Values would sort away.
func EncodeForm(fields []Field) string {
	var buf strings.Builder
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(field.Key))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(field.Value))
	}
	return buf.String()
}

func do(client *http.Client, req *http.Request, expectedStatus int) (*Document, error) {
	rawURL := req.URL.String()

	resp, err := client.Do(req)
	if err != nil {
		return nil, er.Transport(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return nil, er.Status(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, er.IO(rawURL, err)
	}

	doc := ParseHTML(rawURL, body)
	doc.Status = resp.StatusCode
	doc.Header = resp.Header
	return doc, nil
}

// ParseHTML never fails: malformed markup is repaired the way browsers do,
// and an unreadable body yields an empty document.
func ParseHTML(rawURL string, body []byte) *Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &Document{Document: doc, URL: rawURL}
}

func SelectFirst(doc *Document, selector string) (*goquery.Selection, error) {
	selection := doc.Find(selector).First()
	if selection.Length() == 0 {
		return nil, er.MissingElement(doc.URL, selector)
	}
	return selection, nil
}

func SelectAttribute(doc *Document, selector, attr string) (string, error) {
	selection, err := SelectFirst(doc, selector)
	if err != nil {
		return "", err
	}
	value, ok := selection.Attr(attr)
	if !ok {
		return "", er.MissingAttr(doc.URL, selector, attr)
	}
	return value, nil
}
