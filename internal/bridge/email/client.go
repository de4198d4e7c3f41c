package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// Envelope holds the parsed envelope data plus a short text preview
// for one inbox message.
type Envelope struct {
	UID     uint32
	Subject string
	From    string
	Date    time.Time
	Preview string
}

// previewLimit caps how much body text a digest entry carries.
const previewLimit = 200

// IMAPClient wraps go-imap v2 for polling the registry/support inbox.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password, mailbox string, tls bool,
) *IMAPClient {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		mailbox:  mailbox,
	}
}

// connect establishes a connection, authenticates, and selects the
// configured mailbox. The caller must Logout the returned client.
func (c *IMAPClient) connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf(
			"IMAP authentication failed for %s: %w", c.username, err,
		)
	}

	if _, err := client.Select(c.mailbox, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", c.mailbox, err)
	}

	return client, nil
}

// FetchUnseen returns the unseen messages with UIDs above sinceUID,
// oldest first.
func (c *IMAPClient) FetchUnseen(
	ctx context.Context, sinceUID uint32,
) ([]Envelope, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	var uids []imap.UID
	for _, uid := range searchData.AllUIDs() {
		if uint32(uid) > sinceUID {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var envelopes []Envelope
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		env := envelopeFromBuffer(buf)
		if raw := buf.FindBodySection(bodySection); raw != nil {
			env.Preview = textPreview(raw)
		}
		envelopes = append(envelopes, env)
	}

	if err := fetchCmd.Close(); err != nil {
		return envelopes, fmt.Errorf("fetching unseen messages: %w", err)
	}

	return envelopes, nil
}

// envelopeFromBuffer extracts an Envelope from a FetchMessageBuffer.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.Subject = buf.Envelope.Subject
		env.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			if from.Name != "" {
				env.From = from.Name
			} else {
				env.From = from.Addr()
			}
		}
	}

	return env
}

// textPreview parses a raw RFC 2822 body with go-message and returns
// a truncated plain-text preview.
func textPreview(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return truncate(string(raw))
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if !strings.HasPrefix(contentType, "text/plain") {
			continue
		}

		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		return truncate(string(body))
	}

	return ""
}

// truncate trims whitespace and caps the preview length.
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > previewLimit {
		return s[:previewLimit] + "…"
	}
	return s
}
