package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/checkinapp/checkin/internal/account/events"
	"github.com/checkinapp/checkin/internal/account/remote"
	"github.com/checkinapp/checkin/internal/account/store/memory"
)

// scripted is one pre-programmed backend answer.
type scripted struct {
	result remote.AuthResult
	err    error
}

type authCall struct {
	op       string
	username string
	password string
}

// fakeAuth replays scripted answers per operation and records every call in
// order. An exhausted script answers with an explicit rejection.
type fakeAuth struct {
	mu sync.Mutex

	calls []authCall

	loginScript          []scripted
	registerScript       []scripted
	socialScript         []scripted
	socialRegisterScript []scripted
	updatePhoneScript    []scripted

	phoneExists bool
	phoneErr    error

	registerCalled chan authCall
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{registerCalled: make(chan authCall, 8)}
}

func (f *fakeAuth) record(call authCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAuth) pop(script *[]scripted) scripted {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(*script) == 0 {
		return scripted{result: remote.AuthResult{Success: false}}
	}
	next := (*script)[0]
	*script = (*script)[1:]
	return next
}

func (f *fakeAuth) callsFor(op string) []authCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []authCall
	for _, call := range f.calls {
		if call.op == op {
			matched = append(matched, call)
		}
	}
	return matched
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (remote.AuthResult, error) {
	f.record(authCall{op: "login", username: username, password: password})
	next := f.pop(&f.loginScript)
	return next.result, next.err
}

func (f *fakeAuth) Register(ctx context.Context, username, password string) (remote.AuthResult, error) {
	call := authCall{op: "register", username: username, password: password}
	f.record(call)
	select {
	case f.registerCalled <- call:
	default:
	}
	next := f.pop(&f.registerScript)
	return next.result, next.err
}

func (f *fakeAuth) SocialAuth(ctx context.Context, username string) (remote.AuthResult, error) {
	f.record(authCall{op: "social", username: username})
	next := f.pop(&f.socialScript)
	return next.result, next.err
}

func (f *fakeAuth) SocialRegister(ctx context.Context, username, displayName string) (remote.AuthResult, error) {
	f.record(authCall{op: "social_register", username: username})
	next := f.pop(&f.socialRegisterScript)
	return next.result, next.err
}

func (f *fakeAuth) CheckPhone(ctx context.Context, username string) (remote.PhoneStatus, error) {
	f.record(authCall{op: "check_phone", username: username})
	if f.phoneErr != nil {
		return remote.PhoneStatus{}, f.phoneErr
	}
	return remote.PhoneStatus{Exists: f.phoneExists}, nil
}

func (f *fakeAuth) UpdatePhone(ctx context.Context, username, phone string) (remote.AuthResult, error) {
	f.record(authCall{op: "update_phone", username: username, password: phone})
	next := f.pop(&f.updatePhoneScript)
	return next.result, next.err
}

// recordingBus captures published events and signals each delivery so tests
// can wait on asynchronous publications.
type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
	delivered chan events.Event
}

func newRecordingBus() *recordingBus {
	return &recordingBus{delivered: make(chan events.Event, 8)}
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()
	select {
	case b.delivered <- event:
	default:
	}
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, event := range b.published {
		names = append(names, event.Name())
	}
	return names
}

func (b *recordingBus) waitFor(t *testing.T, name string) events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-b.delivered:
			if event.Name() == name {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", name)
		}
	}
}

// fakeCache records cache invalidations.
type fakeCache struct {
	mu      sync.Mutex
	cleared []string
	err     error
}

func (f *fakeCache) ClearUserCache(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, username)
	return f.err
}

// fakeProvider scripts one social provider outcome.
type fakeProvider struct {
	profile SocialProfile
	err     error

	mu       sync.Mutex
	requests []Provider
}

func (f *fakeProvider) SignIn(ctx context.Context, provider Provider) (SocialProfile, error) {
	f.mu.Lock()
	f.requests = append(f.requests, provider)
	f.mu.Unlock()
	if f.err != nil {
		return SocialProfile{}, f.err
	}
	return f.profile, nil
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture bundles a controller with its fakes.
type fixture struct {
	controller *Controller
	auth       *fakeAuth
	bus        *recordingBus
	cache      *fakeCache
	store      *memory.Store
	clock      *testClock
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	f := &fixture{
		auth:  newFakeAuth(),
		bus:   newRecordingBus(),
		cache: &fakeCache{},
		store: memory.New(),
		clock: newTestClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	}

	cfg := Config{
		Store: f.store,
		Auth:  f.auth,
		Cache: f.cache,
		Bus:   f.bus,
		Clock: f.clock.Now,
		IntN:  func(n int) int { return n / 2 },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	controller, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	f.controller = controller
	t.Cleanup(controller.Close)
	return f
}

// failingStore wraps the memory store and fails writes on demand.
type failingStore struct {
	*memory.Store
	failSet bool
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}
