package commands

import (
	"context"
	"errors"

	"sobot/internal/core/domain"
	"sobot/internal/core/port"
)

type fakeSender struct {
	messages []string
	replies  []string
	rooms    []string
	err      error
}

func (f *fakeSender) PostMessage(_ context.Context, room, text string) (string, error) {
	f.rooms = append(f.rooms, room)
	f.messages = append(f.messages, text)
	return "1", f.err
}

func (f *fakeSender) PostReply(_ context.Context, command *domain.Command, text string) (string, error) {
	f.rooms = append(f.rooms, command.Message.Room)
	f.replies = append(f.replies, text)
	return "1", f.err
}

func (f *fakeSender) posts() int {
	return len(f.messages) + len(f.replies)
}

// fakeFetcher serves canned responses by URL; unknown URLs fail with a
// transport error.
type fakeFetcher struct {
	responses map[string]*port.Response
	requested []string
}

func (f *fakeFetcher) Request(_ context.Context, url string) (*port.Response, error) {
	f.requested = append(f.requested, url)

	if res, ok := f.responses[url]; ok {
		return res, nil
	}

	return nil, errors.New("connection refused")
}

func (f *fakeFetcher) RequestMulti(ctx context.Context, urls []string) []port.Result {
	results := make([]port.Result, len(urls))
	for i, url := range urls {
		res, err := f.Request(ctx, url)
		results[i] = port.Result{Response: res, Err: err}
	}
	return results
}

type fakeAdminStore struct {
	owners map[int64]bool
	admins map[int64]bool
	added  []int64
	remove []int64
}

func newFakeAdminStore(owners, admins []int64) *fakeAdminStore {
	s := &fakeAdminStore{owners: map[int64]bool{}, admins: map[int64]bool{}}
	for _, id := range owners {
		s.owners[id] = true
	}
	for _, id := range admins {
		s.admins[id] = true
	}
	return s
}

func (s *fakeAdminStore) GetAll(_ context.Context, _ string) (*port.AdminList, error) {
	list := &port.AdminList{}
	for id := range s.owners {
		list.Owners = append(list.Owners, id)
	}
	for id := range s.admins {
		list.Admins = append(list.Admins, id)
	}
	return list, nil
}

func (s *fakeAdminStore) Add(_ context.Context, _ string, userID int64) error {
	s.admins[userID] = true
	s.added = append(s.added, userID)
	return nil
}

func (s *fakeAdminStore) Remove(_ context.Context, _ string, userID int64) error {
	delete(s.admins, userID)
	s.remove = append(s.remove, userID)
	return nil
}

func (s *fakeAdminStore) IsAdmin(_ context.Context, _ string, userID int64) (bool, error) {
	return s.owners[userID] || s.admins[userID], nil
}

func makeCommand(name string, params ...string) *domain.Command {
	return &domain.Command{
		Name:   name,
		Params: params,
		Message: &domain.Message{
			ID:       "10",
			Room:     "room-1",
			UserID:   200,
			UserName: "bob",
			Text:     name,
		},
	}
}

func jsonResponse(status int, body string) *port.Response {
	return &port.Response{Status: status, Body: []byte(body)}
}
