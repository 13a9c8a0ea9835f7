package chat

import (
	"testing"
	"time"

	chatmodel "LuxRelay/module/chat/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRelay_DeliveryCompleteness(t *testing.T) {
	req := require.New(t)
	srv, _, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{
		ReceiverID: "bob",
		Content:    "Interested in the Phantom?",
		Type:       chatmodel.MsgTypeText,
	})

	// sender gets exactly one echo
	sent := recvEvent(t, alice, EventMessageSent)
	req.Equal("Interested in the Phantom?", sent["content"])
	req.Equal("alice", sent["senderId"])
	sender, ok := sent["sender"].(map[string]any)
	req.True(ok)
	req.Equal("Alice", sender["nickname"])
	expectNoEvent(t, alice, EventMessageSent, 100*time.Millisecond)

	// receiver gets the live message and the lightweight notification
	received := recvEvent(t, bob, EventMessageReceived)
	req.Equal(sent["id"], received["id"])
	req.Equal(false, received["read"])
	notif := recvEvent(t, bob, EventNotificationNew)
	req.Equal("message", notif["type"])
	req.Equal("Alice", notif["from"])
	req.NotZero(notif["timestamp"])
	expectNoEvent(t, bob, EventMessageReceived, 100*time.Millisecond)
}

func TestRelay_OfflineReceiverDegradesToNotification(t *testing.T) {
	req := require.New(t)
	srv, msgs, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "bob", Content: "Hi"})
	sent := recvEvent(t, alice, EventMessageSent)

	// message persisted unread, nothing queued for later replay
	stored, err := msgs.GetByID(testCtx(), sent["id"].(string))
	req.NoError(err)
	req.False(stored.Read)
	req.Nil(stored.ReadAt)

	// a late join sees no replayed live delivery
	bob := connect(srv, "bob", "user")
	expectNoEvent(t, bob, EventMessageReceived, 150*time.Millisecond)
}

func TestRelay_SendValidation(t *testing.T) {
	req := require.New(t)
	srv, msgs, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "bob", Content: ""})
	data := recvEvent(t, alice, EventMessageError)
	req.NotEmpty(data["error"])

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "", Content: "hello"})
	data = recvEvent(t, alice, EventMessageError)
	req.NotEmpty(data["error"])

	// nothing persisted, nothing delivered
	req.Zero(msgs.Len())
	expectNoEvent(t, bob, EventMessageReceived, 100*time.Millisecond)
	expectNoEvent(t, bob, EventNotificationNew, 50*time.Millisecond)
}

func TestRelay_PersistFailureAbortsFlow(t *testing.T) {
	req := require.New(t)
	srv, msgs, _ := newTestServer(t)
	msgs.FailCreate = errors.New("mongo down")

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "bob", Content: "Hi"})

	data := recvEvent(t, alice, EventMessageError)
	req.NotEmpty(data["error"])
	expectNoEvent(t, alice, EventMessageSent, 100*time.Millisecond)
	expectNoEvent(t, bob, EventMessageReceived, 50*time.Millisecond)
	expectNoEvent(t, bob, EventNotificationNew, 50*time.Millisecond)
}

func TestRelay_ReadReceipt(t *testing.T) {
	req := require.New(t)
	srv, msgs, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "bob", Content: "Hi"})
	sent := recvEvent(t, alice, EventMessageSent)
	msgID := sent["id"].(string)

	srv.relay.HandleRead(testCtx(), bob, &ReadPayload{MessageID: msgID})

	receipt := recvEvent(t, alice, EventMessageReadAck)
	req.Equal(msgID, receipt["messageId"])

	stored, err := msgs.GetByID(testCtx(), msgID)
	req.NoError(err)
	req.True(stored.Read)
	req.NotNil(stored.ReadAt)
	req.False(stored.ReadAt.Before(stored.CreatedAt))
	firstReadAt := *stored.ReadAt

	// repeat read refreshes readAt but never unreads
	time.Sleep(5 * time.Millisecond)
	srv.relay.HandleRead(testCtx(), bob, &ReadPayload{MessageID: msgID})
	stored, err = msgs.GetByID(testCtx(), msgID)
	req.NoError(err)
	req.True(stored.Read)
	req.True(stored.ReadAt.After(firstReadAt))
}

func TestRelay_ReadByNonReceiverIsSilentNoop(t *testing.T) {
	req := require.New(t)
	srv, msgs, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")
	mallory := connect(srv, "marta", "user")

	srv.relay.HandleSend(testCtx(), alice, &SendPayload{ReceiverID: "bob", Content: "Hi"})
	sent := recvEvent(t, alice, EventMessageSent)
	msgID := sent["id"].(string)

	srv.relay.HandleRead(testCtx(), mallory, &ReadPayload{MessageID: msgID})
	srv.relay.HandleRead(testCtx(), bob, &ReadPayload{MessageID: "no-such-message"})

	stored, err := msgs.GetByID(testCtx(), msgID)
	req.NoError(err)
	req.False(stored.Read)
	expectNoEvent(t, alice, EventMessageReadAck, 100*time.Millisecond)
	expectNoEvent(t, mallory, EventMessageError, 50*time.Millisecond)
	expectNoEvent(t, bob, EventMessageError, 50*time.Millisecond)
}

func TestRelay_TypingForwardOrDrop(t *testing.T) {
	srv, _, _ := newTestServer(t)

	alice := connect(srv, "alice", "user")
	bob := connect(srv, "bob", "user")

	srv.relay.HandleTyping(testCtx(), alice, true, &TypingPayload{ReceiverID: "bob"})
	data := recvEvent(t, bob, EventTypingStarted)
	require.Equal(t, "alice", data["userId"])

	srv.relay.HandleTyping(testCtx(), alice, false, &TypingPayload{ReceiverID: "bob"})
	recvEvent(t, bob, EventTypingStopped)

	// offline receiver: dropped without error
	srv.relay.HandleTyping(testCtx(), alice, true, &TypingPayload{ReceiverID: "ghost"})
	expectNoEvent(t, alice, EventMessageError, 100*time.Millisecond)
}
