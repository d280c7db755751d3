package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sobot/internal/core/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func TestClientDeliversMessagesAndPostsInOrder(t *testing.T) {
	received := make(chan event, 16)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		err = conn.WriteJSON(event{
			Type: "message", ID: "42", Room: "room-1",
			UserID: 7, UserName: "bob", Text: "!!uptime", Time: 1700000000,
		})
		require.NoError(t, err)

		for {
			var ev event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			received <- ev
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"))
	require.NoError(t, err)

	messages := make(chan *domain.Message, 1)
	client.OnMessage(func(m *domain.Message) { messages <- m })

	go client.Run(ctx)

	select {
	case m := <-messages:
		assert.Equal(t, "42", m.ID)
		assert.Equal(t, "room-1", m.Room)
		assert.Equal(t, int64(7), m.UserID)
		assert.Equal(t, "bob", m.UserName)
		assert.Equal(t, "!!uptime", m.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message delivery")
	}

	assert.NoError(t, client.Join(ctx, "room-1"))

	firstID, err := client.Post(ctx, "room-1", "first")
	assert.NoError(t, err)
	assert.NotEmpty(t, firstID)

	secondID, err := client.Post(ctx, "room-1", "second")
	assert.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	var texts []string
	for i := 0; i < 3; i++ {
		select {
		case ev := <-received:
			if ev.Type == "post" {
				texts = append(texts, ev.Text)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for outbound frames")
		}
	}

	assert.Equal(t, []string{"first", "second"}, texts)
}
