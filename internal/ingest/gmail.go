package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/gmail/v1"
	googleapi "google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/chandrameenamohan/expense-tracker/internal/domain"
)

// GmailProvider implements ports.MailProvider against the Gmail API. The
// OAuth token lifecycle (loopback re-auth, token.json persistence) lives
// in internal/auth (Manager); GmailProvider is constructed with an
// already-authorized HTTP client.
type GmailProvider struct {
	svc *gmail.Service
}

// NewGmailProvider builds a provider from an OAuth2-authorized client
// (spec.md §6: read-only scope, list + per-message full-body fetch).
func NewGmailProvider(ctx context.Context, httpClient *http.Client) (*GmailProvider, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail provider: %w", err)
	}
	return &GmailProvider{svc: svc}, nil
}

// Search lists message ids matching query, one page per call.
func (p *GmailProvider) Search(ctx context.Context, query string, pageToken string) ([]string, string, error) {
	call := p.svc.Users.Messages.List("me").Q(query).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, "", wrapGmailErr(err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, resp.NextPageToken, nil
}

// Fetch retrieves full message bodies for the given ids.
func (p *GmailProvider) Fetch(ctx context.Context, ids []string) ([]domain.RawEmail, error) {
	emails := make([]domain.RawEmail, 0, len(ids))
	for _, id := range ids {
		msg, err := p.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, wrapGmailErr(err)
		}
		emails = append(emails, decodeMessage(msg))
	}
	return emails, nil
}

func wrapGmailErr(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusServiceUnavailable:
			return fmt.Errorf("%w: %s", ErrRateLimited, err)
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthRevoked, err)
		}
	}
	return err
}

// decodeMessage extracts headers and body per spec.md §4.4 step 4:
// prefer the first text/plain part, then the first text/html part.
func decodeMessage(msg *gmail.Message) domain.RawEmail {
	email := domain.RawEmail{
		MessageID: msg.Id,
		FetchedAt: time.Now().UTC(),
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				email.From = h.Value
			case "Subject":
				email.Subject = h.Value
			case "Date":
				if t, err := time.Parse(time.RFC1123Z, h.Value); err == nil {
					email.Date = t.UTC()
				}
			}
		}
		email.BodyText, email.BodyHTML = extractBodies(msg.Payload)
	}

	if email.Date.IsZero() {
		email.Date = time.UnixMilli(msg.InternalDate).UTC()
	}
	return email
}

// extractBodies walks the MIME part tree depth-first and returns the
// first text/plain and first text/html bodies found, base64url-decoded.
func extractBodies(part *gmail.MessagePart) (plain, html string) {
	var walk func(p *gmail.MessagePart)
	walk = func(p *gmail.MessagePart) {
		if p == nil {
			return
		}
		switch p.MimeType {
		case "text/plain":
			if plain == "" && p.Body != nil && p.Body.Data != "" {
				plain = decodeBase64URL(p.Body.Data)
			}
		case "text/html":
			if html == "" && p.Body != nil && p.Body.Data != "" {
				html = decodeBase64URL(p.Body.Data)
			}
		}
		for _, child := range p.Parts {
			walk(child)
		}
	}
	walk(part)
	return plain, html
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}
