package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chameleon/server/internal/kv"
	"github.com/chameleon/server/internal/repository"
	"github.com/chameleon/server/internal/services"
)

func newWSTestHandler(t *testing.T) (*WebSocketHandler, *services.GroupService) {
	t.Helper()
	store := kv.NewMemoryStore()

	groupRepo := repository.NewGroupRepository(store)
	userRepo := repository.NewUserRepository(store)
	groupService := services.NewGroupService(groupRepo, userRepo, nil)

	hub := services.NewWebSocketHub()
	return NewWebSocketHandler(hub, userRepo, groupService), groupService
}

func subscribeMsg(t *testing.T, topic string) []byte {
	t.Helper()
	data, err := json.Marshal(services.WSMessage{Type: services.WSTypeSubscribe, Payload: topic})
	require.NoError(t, err)
	return data
}

func queuedMessage(t *testing.T, client *services.WSClient) *services.WSMessage {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg services.WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		return nil
	}
}

func TestWebSocketSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("group topic requires membership", func(t *testing.T) {
		h, groups := newWSTestHandler(t)

		group, err := groups.CreateGroup(ctx, "user_1", "Dinner Club")
		require.NoError(t, err)
		topic := services.GroupTopic(group.ID)

		client := h.GetHub().NewClient("c1", "user_4", nil)
		h.handleMessage(ctx, client, websocket.TextMessage, subscribeMsg(t, topic))

		assert.False(t, client.Topics[topic])
		msg := queuedMessage(t, client)
		require.NotNil(t, msg)
		assert.Equal(t, services.WSTypeError, msg.Type)
	})

	t.Run("group member may subscribe", func(t *testing.T) {
		h, groups := newWSTestHandler(t)

		group, err := groups.CreateGroup(ctx, "user_1", "Dinner Club")
		require.NoError(t, err)
		_, err = groups.AddMember(ctx, group.ID, "user_2")
		require.NoError(t, err)
		topic := services.GroupTopic(group.ID)

		client := h.GetHub().NewClient("c1", "user_2", nil)
		h.handleMessage(ctx, client, websocket.TextMessage, subscribeMsg(t, topic))

		assert.True(t, client.Topics[topic])
		assert.Nil(t, queuedMessage(t, client))
	})

	t.Run("anonymous client cannot join group topics", func(t *testing.T) {
		h, groups := newWSTestHandler(t)

		group, err := groups.CreateGroup(ctx, "user_1", "Dinner Club")
		require.NoError(t, err)
		topic := services.GroupTopic(group.ID)

		client := h.GetHub().NewClient("c1", "", nil)
		h.handleMessage(ctx, client, websocket.TextMessage, subscribeMsg(t, topic))

		assert.False(t, client.Topics[topic])
	})

	t.Run("non-group topics stay open", func(t *testing.T) {
		h, _ := newWSTestHandler(t)

		client := h.GetHub().NewClient("c1", "user_4", nil)
		h.handleMessage(ctx, client, websocket.TextMessage, subscribeMsg(t, "announcements"))

		assert.True(t, client.Topics["announcements"])
	})

	t.Run("group broadcast reaches only subscribed members", func(t *testing.T) {
		h, groups := newWSTestHandler(t)
		hub := h.GetHub()
		go hub.Run()

		group, err := groups.CreateGroup(ctx, "user_1", "Dinner Club")
		require.NoError(t, err)
		_, err = groups.AddMember(ctx, group.ID, "user_2")
		require.NoError(t, err)
		topic := services.GroupTopic(group.ID)

		member := hub.NewClient("c1", "user_2", nil)
		outsider := hub.NewClient("c2", "user_4", nil)
		h.handleMessage(ctx, member, websocket.TextMessage, subscribeMsg(t, topic))
		h.handleMessage(ctx, outsider, websocket.TextMessage, subscribeMsg(t, topic))

		hub.BroadcastToTopic(topic, services.WSMessage{Type: services.WSTypeRecipeShared})

		select {
		case data := <-member.Send:
			var msg services.WSMessage
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, services.WSTypeRecipeShared, msg.Type)
		case <-time.After(time.Second):
			t.Fatal("member never received the group broadcast")
		}

		// Drain the denial reply; nothing else may follow for the outsider
		require.NotNil(t, queuedMessage(t, outsider))
		assert.Nil(t, queuedMessage(t, outsider))
	})
}

func TestWebSocketPing(t *testing.T) {
	ctx := context.Background()
	h, _ := newWSTestHandler(t)

	client := h.GetHub().NewClient("c1", "user_1", nil)
	data, err := json.Marshal(services.WSMessage{Type: services.WSTypePing})
	require.NoError(t, err)

	h.handleMessage(ctx, client, websocket.TextMessage, data)

	msg := queuedMessage(t, client)
	require.NotNil(t, msg)
	assert.Equal(t, services.WSTypePong, msg.Type)
}
