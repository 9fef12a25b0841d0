//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"direct-chat/domain"
	"direct-chat/domain/event"
)

// EventSink is the delivery end of one live connection. Consume must be
// safe for concurrent use and must never block longer than the delivery
// timeout the implementation was built with.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// ISessionRegistry tracks which connections belong to which user,
// independent of room membership.
type ISessionRegistry interface {
	Register(conn domain.Connection, sink EventSink)
	Unregister(connID domain.ConnectionID)
	SinksFor(userID domain.UserID) []EventSink
	IsOnline(userID domain.UserID) bool
}

// IRoomManager implements join/leave semantics on top of the registry and
// cleans up after disconnects.
type IRoomManager interface {
	Join(conn domain.Connection, target domain.UserID) error
	Leave(conn domain.Connection, target domain.UserID) error
	OnDisconnect(connID domain.ConnectionID)
	SinksFor(roomID domain.RoomID) []EventSink
}

// IDispatcher is the persist-then-deliver core.
type IDispatcher interface {
	Send(ctx context.Context, senderID, recipientID domain.UserID, content string) (domain.Message, error)
}

// Worker doesn't protect itself; the supervisor restarts it after a crash.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker
// for logging and supervision, avoiding a manual Name method on Worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
