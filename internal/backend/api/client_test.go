package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantex/comms-center/internal/backend"
	"github.com/verdantex/comms-center/internal/model"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	require.NoError(t, c.Ping(context.Background()))

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientUnauthorizedIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "stale-token")
	err := c.Ping(context.Background())

	require.Error(t, err)
	assert.True(t, backend.IsAuthError(err))
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 2, attempts)
}

func TestClientSurfacesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(errorResponse{
				Error: "priority must be one of low, normal, high, urgent",
			})
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority must be one of")
	assert.Contains(t, err.Error(), "422")
}

func TestFetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/projects/proj-solar/messages", r.URL.Path)
			assert.Equal(t, "user-ava", r.URL.Query().Get("counterparty"))
			json.NewEncoder(w).Encode(messagesResponse{
				Messages: []backend.WireMessage{
					{
						ID:        "m1",
						ProjectID: "proj-solar",
						SenderID:  "user-ava",
						Body:      "Site visit is booked.",
						Priority:  "normal",
						CreatedAt: "2026-08-20T10:00:00Z",
					},
				},
			})
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	feed, err := c.FetchMessages(context.Background(), model.ConversationScope{
		ProjectID:      "proj-solar",
		CounterpartyID: "user-ava",
	})

	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "m1", feed[0].ID)
	assert.Equal(t, "Site visit is booked.", feed[0].Body)
}

func TestFetchConversationsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users/user-self/conversations", r.URL.Path)
			json.NewEncoder(w).Encode(conversationsResponse{
				Conversations: []wireConversation{
					{
						ProjectID:        "proj-solar",
						ProjectTitle:     "Solar Farm Alpha",
						CounterpartyID:   "user-ava",
						CounterpartyName: "Ava Chen",
						LastMessage: backend.WireMessage{
							ID:        "m1",
							SenderID:  "user-ava",
							Body:      "Site visit is booked.",
							Priority:  "asap",
							CreatedAt: "not-a-timestamp",
						},
						UnreadCount:   2,
						TotalMessages: 14,
						Status:        "in_progress",
						Typing:        []string{"user-ava"},
					},
				},
			})
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	summaries, err := c.FetchConversations(context.Background(), "user-self")

	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "Solar Farm Alpha", s.ProjectTitle)
	assert.Equal(t, model.VerificationInProgress, s.Status)
	assert.Equal(t, []string{"user-ava"}, s.Typing)
	// Display-only fields degrade instead of failing the refresh.
	assert.Equal(t, model.PriorityNormal, s.LastMessage.Priority)
	assert.True(t, s.LastMessage.CreatedAt.IsZero())
	assert.Equal(t, "proj-solar", s.LastMessage.ProjectID)
}

func TestSendMessagePostsPayload(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/projects/proj-solar/messages", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.SendMessage(context.Background(), model.Message{
		ID:             "m-new",
		ProjectID:      "proj-solar",
		CounterpartyID: "user-ava",
		SenderID:       "user-self",
		SenderName:     "Sam Verifier",
		Subject:        "Question",
		Body:           "When is the next batch due?",
		Priority:       model.PriorityHigh,
	})

	require.NoError(t, err)
	assert.Equal(t, "m-new", got.ID)
	assert.Equal(t, "user-ava", got.CounterpartyID)
	assert.Equal(t, "high", got.Priority)
}

func TestPublishTyping(t *testing.T) {
	var got typingRequest
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/projects/proj-solar/typing", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.PublishTyping(
		context.Background(),
		model.ConversationScope{
			ProjectID:      "proj-solar",
			CounterpartyID: "user-ava",
		},
		"user-self",
	)

	require.NoError(t, err)
	assert.Equal(t, "user-self", got.UserID)
	assert.Equal(t, "user-ava", got.CounterpartyID)
}

func TestClearNotificationDeletes(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	require.NoError(t, c.ClearNotification(context.Background(), "n1"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/v1/notifications/n1", gotPath)
}

func TestMarkProjectMessagesRead(t *testing.T) {
	var got markProjectReadRequest
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/projects/proj-solar/messages/read", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.MarkProjectMessagesRead(
		context.Background(), "proj-solar", "user-self",
	)

	require.NoError(t, err)
	assert.Equal(t, "user-self", got.UserID)
}
