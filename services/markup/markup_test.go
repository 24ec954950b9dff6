package markup

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/customeros/fresh/internal/errors"
)

const forgotPage = `<html><body>
<form method="post" action="x">
<input type="hidden" name="fnid" value="abc123">
<input type="hidden" name="flag">
<input type="text" name="s">
</form>
<p>unclosed <b>markup`

func TestEncodeForm_KeepsOrder(t *testing.T) {
	encoded := EncodeForm([]Field{
		{Key: "utf8", Value: "✓"},
		{Key: "authenticity_token", Value: "a+b/c="},
		{Key: "email", Value: "alice smith@example.com"},
	})
	assert.Equal(t, "utf8=%E2%9C%93&authenticity_token=a%2Bb%2Fc%3D&email=alice+smith%40example.com", encoded)
}

func TestGet_StatusMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := GetOK(context.Background(), srv.Client(), srv.URL+"/forgot")
	require.Error(t, err)

	var accountErr *er.AccountError
	require.ErrorAs(t, err, &accountErr)
	assert.Equal(t, er.KindStatus, accountErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, accountErr.Status)
	assert.Equal(t, srv.URL+"/forgot", accountErr.URL)
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := GetOK(context.Background(), http.DefaultClient, srv.URL)
	assert.True(t, er.IsKind(err, er.KindTransport))
}

func TestSubmitForm(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	doc, err := SubmitForm(context.Background(), srv.Client(), srv.URL, []Field{{"b", "2"}, {"a", "1"}}, http.StatusCreated)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, doc.Status)
	assert.Equal(t, "b=2&a=1", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
}

func TestSelectAttribute(t *testing.T) {
	doc := ParseHTML("https://news.ycombinator.com/forgot", []byte(forgotPage))

	value, err := SelectAttribute(doc, `input[name="fnid"]`, "value")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)

	_, err = SelectAttribute(doc, `input[name="flag"]`, "value")
	assert.Equal(t, er.KindMissingAttr, er.KindOf(err))

	_, err = SelectAttribute(doc, `input[name="absent"]`, "value")
	assert.Equal(t, er.KindMissingElement, er.KindOf(err))
	assert.Contains(t, err.Error(), "https://news.ycombinator.com/forgot")
}

func TestParseHTML_ToleratesGarbage(t *testing.T) {
	doc := ParseHTML("u", []byte("<<<not html at all</div></div>"))
	require.NotNil(t, doc.Document)

	_, err := SelectFirst(doc, "form")
	assert.Equal(t, er.KindMissingElement, er.KindOf(err))
}
