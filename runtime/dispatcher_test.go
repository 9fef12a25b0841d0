package runtime

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/mocks"
	"direct-chat/moderation"
)

type recordingSink struct {
	events []event.DomainEvent
	fail   bool
}

func (s *recordingSink) Consume(ctx context.Context, e event.DomainEvent) error {
	if s.fail {
		return goerrors.New("buffer full")
	}
	s.events = append(s.events, e)
	return nil
}

func newTestDispatcher(t *testing.T, store *mocks.MockIMessageRepository,
	rooms *mocks.MockIRoomManager) *Dispatcher {
	t.Helper()
	return NewDispatcher(slog.Default(), store, rooms, nil,
		time.Second, time.Second, 500)
}

func TestDispatcher_Send_Delivers_The_Persisted_Record(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)

	// Given the store assigns id and timestamp
	persisted := domain.Message{
		ID:          42,
		SenderID:    1,
		RecipientID: 2,
		Content:     "hello",
		Timestamp:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	store.EXPECT().
		InsertMessage(gomock.Any(), domain.UserID(1), domain.UserID(2), "hello").
		Return(persisted, nil)

	// And three connections in the recipient's room, one in the sender's
	recipientSinks := []*recordingSink{{}, {}, {}}
	senderSink := &recordingSink{}
	rooms.EXPECT().SinksFor(domain.RoomFor(2)).
		Return([]contract.EventSink{recipientSinks[0], recipientSinks[1], recipientSinks[2]})
	rooms.EXPECT().SinksFor(domain.RoomFor(1)).
		Return([]contract.EventSink{senderSink})

	dispatcher := newTestDispatcher(t, store, rooms)

	// When sending
	msg, err := dispatcher.Send(context.Background(), 1, 2, "hello")
	req.NoError(err)

	// Then the returned message is the stored record
	req.Equal(persisted, msg)

	// And every connection received exactly one copy carrying the
	// store-assigned id and timestamp
	for _, sink := range recipientSinks {
		req.Len(sink.events, 1)
		delivered := sink.events[0].(event.MessageDelivered)
		req.Equal(int64(42), delivered.ID)
		req.Equal(persisted.Timestamp, delivered.At)
		req.Equal(domain.RoomFor(2), delivered.Room())
	}
	req.Len(senderSink.events, 1)
	req.Equal(domain.RoomFor(1), senderSink.events[0].(event.MessageDelivered).Room())
}

func TestDispatcher_Send_Rejects_Invalid_Requests_Before_Persisting(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	// No expectations: any call to the store or the rooms fails the test.
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)
	dispatcher := newTestDispatcher(t, store, rooms)

	tests := []struct {
		name        string
		recipientID domain.UserID
		content     string
	}{
		{name: "missing recipient", recipientID: 0, content: "hello"},
		{name: "empty content", recipientID: 2, content: ""},
		{name: "whitespace only content", recipientID: 2, content: "   \t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dispatcher.Send(context.Background(), 1, tt.recipientID, tt.content)
			req.ErrorIs(err, errors.ErrInvalidRequest)
		})
	}
}

func TestDispatcher_Send_Rejects_Oversized_Content(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)
	dispatcher := NewDispatcher(slog.Default(), store, rooms, nil,
		time.Second, time.Second, 10)

	_, err := dispatcher.Send(context.Background(), 1, 2, "this content is longer than ten bytes")
	req.ErrorIs(err, errors.ErrInvalidRequest)
}

func TestDispatcher_Send_Persist_Failure_Means_Zero_Pushes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	// No SinksFor expectation: a failed persist must never reach the rooms.
	rooms := mocks.NewMockIRoomManager(ctrl)

	store.EXPECT().
		InsertMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Message{}, goerrors.New("disk full"))

	dispatcher := newTestDispatcher(t, store, rooms)

	_, err := dispatcher.Send(context.Background(), 1, 2, "hello")
	req.ErrorIs(err, errors.ErrPersistence)
}

func TestDispatcher_Send_Empty_Room_Is_Not_An_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)

	store.EXPECT().
		InsertMessage(gomock.Any(), domain.UserID(1), domain.UserID(2), "hello").
		Return(domain.Message{ID: 1, SenderID: 1, RecipientID: 2, Content: "hello"}, nil)
	rooms.EXPECT().SinksFor(domain.RoomFor(2)).Return(nil)
	rooms.EXPECT().SinksFor(domain.RoomFor(1)).Return(nil)

	dispatcher := newTestDispatcher(t, store, rooms)

	// When the recipient has no live connection
	msg, err := dispatcher.Send(context.Background(), 1, 2, "hello")

	// Then the send still succeeds; history is the recovery path
	req.NoError(err)
	req.Equal(int64(1), msg.ID)
}

func TestDispatcher_Send_To_Self_Delivers_Once_Per_Connection(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)

	store.EXPECT().
		InsertMessage(gomock.Any(), domain.UserID(1), domain.UserID(1), "note to self").
		Return(domain.Message{ID: 7, SenderID: 1, RecipientID: 1, Content: "note to self"}, nil)

	sink := &recordingSink{}
	// Sender and recipient room are the same; it must be resolved once.
	rooms.EXPECT().SinksFor(domain.RoomFor(1)).
		Return([]contract.EventSink{sink}).
		Times(1)

	dispatcher := newTestDispatcher(t, store, rooms)

	_, err := dispatcher.Send(context.Background(), 1, 1, "note to self")
	req.NoError(err)
	req.Len(sink.events, 1)
}

func TestDispatcher_Send_One_Failing_Sink_Does_Not_Abort_The_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)

	store.EXPECT().
		InsertMessage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Message{ID: 3, SenderID: 1, RecipientID: 2, Content: "hi"}, nil)

	broken := &recordingSink{fail: true}
	healthy := &recordingSink{}
	rooms.EXPECT().SinksFor(domain.RoomFor(2)).
		Return([]contract.EventSink{broken, healthy})
	rooms.EXPECT().SinksFor(domain.RoomFor(1)).Return(nil)

	dispatcher := newTestDispatcher(t, store, rooms)

	// When one connection's push fails
	msg, err := dispatcher.Send(context.Background(), 1, 2, "hi")

	// Then the send succeeds and the healthy connection got its copy
	req.NoError(err)
	req.Equal(int64(3), msg.ID)
	req.Len(healthy.events, 1)
}

func TestDispatcher_Send_Censors_Before_Persisting(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockIMessageRepository(ctrl)
	rooms := mocks.NewMockIRoomManager(ctrl)

	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	req.NoError(err)

	// The stored content is the censored one, so history and pushes agree.
	store.EXPECT().
		InsertMessage(gomock.Any(), domain.UserID(1), domain.UserID(2), "a ****** bit me").
		Return(domain.Message{ID: 9, SenderID: 1, RecipientID: 2, Content: "a ****** bit me"}, nil)
	rooms.EXPECT().SinksFor(gomock.Any()).Return(nil).Times(2)

	dispatcher := NewDispatcher(slog.Default(), store, rooms, moderator,
		time.Second, time.Second, 500)

	msg, err := dispatcher.Send(context.Background(), 1, 2, "a badger bit me")
	req.NoError(err)
	req.Equal("a ****** bit me", msg.Content)
}
