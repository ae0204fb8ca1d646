// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garageisep/hangar/internal/clock"
	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/route"
	"github.com/garageisep/hangar/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

// fakeProjects is a ProjectAPI backed by memory. Hooks, when set, replace
// the default behavior of a call; n is the 1-based call number.
type fakeProjects struct {
	mu      sync.Mutex
	project client.ProjectDetails
	status  *string
	metrics *client.ProjectMetrics

	getErr     error
	statusErr  error
	metricsErr error
	controlErr error

	statusFn func(ctx context.Context, n int) (*string, error)
	controlFn func(ctx context.Context, action Action) error

	calls  map[string]int
	images []string
	envs   []map[string]string
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		project: client.ProjectDetails{
			Project: client.Project{ID: 7, Name: "webapp", Owner: "alice", Source: client.SourceDirect},
			Participants: []string{"bob"},
		},
		status:  strptr("running"),
		metrics: &client.ProjectMetrics{CPUUsage: 12.5, MemoryUsage: 64 << 20, MemoryLimit: 512 << 20},
		calls:   map[string]int{},
	}
}

func (f *fakeProjects) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeProjects) inc(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeProjects) Get(ctx context.Context, id int) (*client.ProjectDetails, error) {
	f.inc("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p := f.project
	p.Participants = append([]string(nil), f.project.Participants...)
	return &p, nil
}

func (f *fakeProjects) Status(ctx context.Context, id int) (*string, error) {
	n := f.inc("status")
	f.mu.Lock()
	fn, status, err := f.statusFn, f.status, f.statusErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, n)
	}
	return status, err
}

func (f *fakeProjects) Metrics(ctx context.Context, id int) (*client.ProjectMetrics, error) {
	f.inc("metrics")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metrics, f.metricsErr
}

func (f *fakeProjects) control(ctx context.Context, action Action) error {
	f.inc(string(action))
	f.mu.Lock()
	fn, err := f.controlFn, f.controlErr
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, action)
	}
	return err
}

func (f *fakeProjects) Start(ctx context.Context, id int) error {
	return f.control(ctx, ActionStart)
}

func (f *fakeProjects) Stop(ctx context.Context, id int) error {
	return f.control(ctx, ActionStop)
}

func (f *fakeProjects) Restart(ctx context.Context, id int) error {
	return f.control(ctx, ActionRestart)
}

func (f *fakeProjects) Delete(ctx context.Context, id int) error {
	return f.control(ctx, ActionDelete)
}

func (f *fakeProjects) UpdateImage(ctx context.Context, id int, imageURL string) error {
	if err := f.control(ctx, ActionUpdateImage); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, imageURL)
	f.project.SourceURL = imageURL
	return nil
}

func (f *fakeProjects) UpdateEnv(ctx context.Context, id int, env map[string]string) error {
	if err := f.control(ctx, ActionUpdateEnv); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envs = append(f.envs, env)
	f.project.EnvVars = env
	return nil
}

func (f *fakeProjects) AddParticipant(ctx context.Context, id int, login string) error {
	if err := f.control(ctx, ActionAddParticipant); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project.Participants = append(f.project.Participants, login)
	return nil
}

func (f *fakeProjects) RemoveParticipant(ctx context.Context, id int, login string) error {
	if err := f.control(ctx, ActionRemoveParticipant); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.project.Participants[:0]
	for _, p := range f.project.Participants {
		if p != login {
			kept = append(kept, p)
		}
	}
	f.project.Participants = kept
	return nil
}

type harness struct {
	api   *fakeProjects
	clock *clock.Fake
	bus   *events.MemoryBus
	nav   *route.Recorder
	loc   *i18n.Localizer
	sync  *Synchronizer

	mu      sync.Mutex
	prompts []string
	answer  bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		api:    newFakeProjects(),
		clock:  clock.NewFake(time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC)),
		bus:    events.NewMemoryBus(events.MemoryBusConfig{}),
		nav:    &route.Recorder{},
		loc:    i18n.MustNew("en", ""),
		answer: true,
	}
	h.sync = New(h.api, Options{
		Clock:     h.clock,
		Bus:       h.bus,
		Navigator: h.nav,
		Localizer: h.loc,
		Confirmer: ConfirmFunc(func(ctx context.Context, prompt string) bool {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.prompts = append(h.prompts, prompt)
			return h.answer
		}),
	})
	t.Cleanup(func() { h.bus.Close() })
	return h
}

// mount mounts project 7 and waits for both first fetches to settle.
func (h *harness) mount(t *testing.T) *View {
	t.Helper()
	v, err := h.sync.Mount(context.Background(), 7)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	h.clock.WaitForTimers(2)
	return v
}

func (h *harness) setAnswer(yes bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = yes
}

func (h *harness) lastPrompt() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.prompts) == 0 {
		return ""
	}
	return h.prompts[len(h.prompts)-1]
}

func TestMountPollsImmediately(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	snap := v.Snapshot()
	assert.Equal(t, "webapp", snap.Project.Name)
	require.NotNil(t, snap.Status)
	assert.Equal(t, "running", *snap.Status)
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 12.5, snap.Metrics.CPUUsage)
	assert.Equal(t, 1, h.api.count("status"))
	assert.Equal(t, 1, h.api.count("metrics"))

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 1, h.api.count("status"))
	assert.Equal(t, 2, h.api.count("metrics"))

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 2, h.api.count("status"))
	assert.Equal(t, 2, h.api.count("metrics"))

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 4, h.api.count("status"))
	assert.Equal(t, 6, h.api.count("metrics"))

	mounted := h.bus.History(events.Filter{Types: []string{events.EventProjectMounted}})
	require.Len(t, mounted, 1)
	assert.Equal(t, 7, mounted[0].ProjectID)
}

func TestMountFailure(t *testing.T) {
	h := newHarness(t)
	h.api.getErr = &client.APIError{ErrorCode: "HTTP_ERROR_404", Status: 404}

	v, err := h.sync.Mount(context.Background(), 7)
	require.Error(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "HTTP_ERROR_404", client.ErrorCode(err))
	assert.Zero(t, h.clock.Pending())
	assert.Zero(t, h.api.count("status"))
}

func TestFailedFetchClearsToUnknown(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)
	require.NotNil(t, v.Snapshot().Status)
	require.NotNil(t, v.Snapshot().Metrics)

	h.api.mu.Lock()
	h.api.metricsErr = client.NewAPIError(client.ErrCodeNetworkError, "connection refused")
	h.api.statusErr = client.NewAPIError(client.ErrCodeNetworkError, "connection refused")
	h.api.mu.Unlock()

	h.clock.Advance(3 * time.Second)
	assert.Nil(t, v.Snapshot().Metrics)
	assert.NotNil(t, v.Snapshot().Status)

	h.clock.Advance(2 * time.Second)
	assert.Nil(t, v.Snapshot().Status)

	h.api.mu.Lock()
	h.api.statusErr = nil
	h.api.status = strptr("exited")
	h.api.mu.Unlock()

	h.clock.Advance(5 * time.Second)
	require.NotNil(t, v.Snapshot().Status)
	assert.Equal(t, "exited", *v.Snapshot().Status)
}

func TestStaleStatusDropped(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	slowEntered := make(chan struct{})
	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.statusFn = func(ctx context.Context, n int) (*string, error) {
		if n == 2 {
			close(slowEntered)
			<-release
			return strptr("exited"), nil
		}
		return strptr("restarting"), nil
	}
	h.api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		v.fetchStatus(context.Background())
		close(done)
	}()
	<-slowEntered

	v.fetchStatus(context.Background())
	assert.Equal(t, "restarting", *v.Snapshot().Status)

	close(release)
	<-done
	assert.Equal(t, "restarting", *v.Snapshot().Status)
}

func TestCloseStopsPolling(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	v.Close()
	v.Close()

	assert.True(t, v.Closed())
	assert.True(t, v.Snapshot().Closed)
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.api.count("status"))
	assert.Equal(t, 1, h.api.count("metrics"))

	unmounted := h.bus.History(events.Filter{Types: []string{events.EventProjectUnmounted}})
	assert.Len(t, unmounted, 1)
}

func TestNoWritesAfterClose(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	var notified int
	var notifyMu sync.Mutex
	v.Subscribe(func(Snapshot) {
		notifyMu.Lock()
		notified++
		notifyMu.Unlock()
	})

	entered := make(chan struct{})
	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.statusFn = func(ctx context.Context, n int) (*string, error) {
		close(entered)
		<-release
		return strptr("exited"), nil
	}
	h.api.mu.Unlock()

	advanced := make(chan struct{})
	go func() {
		h.clock.Advance(5 * time.Second)
		close(advanced)
	}()
	<-entered

	before := v.Snapshot()
	v.Close()
	closedAt := len(h.bus.History(events.Filter{}))

	close(release)
	<-advanced

	after := v.Snapshot()
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Metrics, after.Metrics)
	assert.Len(t, h.bus.History(events.Filter{}), closedAt)

	notifyMu.Lock()
	defer notifyMu.Unlock()
	// Only the metrics poll at 3s, which ran before the status fetch blocked.
	assert.Equal(t, 1, notified)
	assert.Zero(t, h.clock.Pending())
}

func TestLifecycleActionRefreshesOnce(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	require.NoError(t, v.Start(context.Background()))
	assert.Equal(t, 1, h.api.count("start"))
	assert.False(t, v.Busy())
	assert.Equal(t, 3, h.clock.Pending())

	h.clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 2, h.api.count("status"))
	assert.Equal(t, 2, h.api.count("get"))
	assert.Equal(t, 2, h.clock.Pending())

	// Regular cadence untouched: next status poll still at 5s after mount.
	h.clock.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, h.api.count("status"))

	assert.Len(t, h.bus.History(events.Filter{Types: []string{events.EventControlStarted}}), 1)
	assert.Len(t, h.bus.History(events.Filter{Types: []string{events.EventControlFinished}}), 1)
}

func TestCloseCancelsPendingRefresh(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	require.NoError(t, v.Restart(context.Background()))
	assert.Equal(t, 3, h.clock.Pending())

	v.Close()
	assert.Zero(t, h.clock.Pending())
	h.clock.Advance(time.Minute)
	assert.Equal(t, 1, h.api.count("status"))
	assert.Equal(t, 1, h.api.count("get"))
}

func TestControlInFlight(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.controlFn = func(ctx context.Context, action Action) error {
		if action == ActionStart {
			close(entered)
			<-release
		}
		return nil
	}
	h.api.mu.Unlock()

	started := make(chan error, 1)
	go func() { started <- v.Start(context.Background()) }()
	<-entered

	assert.True(t, v.Busy())
	assert.Equal(t, ActionStart, v.Snapshot().Action)

	err := v.Stop(context.Background())
	assert.ErrorIs(t, err, ErrControlInFlight)
	assert.Equal(t, "Another action is already running on this project.", v.Message(err))
	assert.Zero(t, h.api.count("stop"))

	err = v.Delete(context.Background())
	assert.ErrorIs(t, err, ErrControlInFlight)
	assert.Zero(t, h.api.count("delete"))

	close(release)
	require.NoError(t, <-started)
	assert.False(t, v.Busy())

	require.NoError(t, v.Stop(context.Background()))
	assert.Equal(t, 1, h.api.count("stop"))
}

func TestConcurrentControlsAllowOne(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	release := make(chan struct{})
	h.api.mu.Lock()
	h.api.controlFn = func(ctx context.Context, action Action) error {
		<-release
		return nil
	}
	h.api.mu.Unlock()

	const n = 10
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() { results <- v.Restart(context.Background()) }()
	}

	for i := 0; i < n-1; i++ {
		assert.ErrorIs(t, <-results, ErrControlInFlight)
	}
	close(release)
	assert.NoError(t, <-results)
	assert.Equal(t, 1, h.api.count("restart"))
}

func TestControlFailure(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)
	h.api.controlErr = &client.APIError{ErrorCode: client.ErrCodeUnauthorized, Status: 403}

	err := v.Stop(context.Background())
	require.Error(t, err)

	var ce *ControlError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ActionStop, ce.Action)
	assert.Equal(t, client.ErrCodeUnauthorized, ce.Code)
	assert.Equal(t, h.loc.Error(client.ErrCodeUnauthorized), ce.Message)
	assert.Equal(t, ce.Message, v.Message(err))
	assert.Equal(t, client.ErrCodeUnauthorized, client.ErrorCode(err))

	assert.False(t, v.Busy())
	assert.Equal(t, 2, h.clock.Pending())
	assert.Len(t, h.bus.History(events.Filter{Types: []string{events.EventControlFailed}}), 1)
}

func TestUnknownErrorCodeFallsBack(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)
	h.api.controlErr = &client.APIError{ErrorCode: "SOMETHING_NEW", Status: 409}

	err := v.Restart(context.Background())
	require.Error(t, err)
	assert.Equal(t, h.loc.T(i18n.KeyErrorDefault), v.Message(err))
}

func TestDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h := newHarness(t)
		v := h.mount(t)
		h.setAnswer(false)

		err := v.Delete(context.Background())
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Empty(t, v.Message(err))
		assert.Contains(t, h.lastPrompt(), "webapp")
		assert.Zero(t, h.api.count("delete"))
		assert.False(t, v.Closed())
		assert.False(t, v.Busy())
	})

	t.Run("no confirmer", func(t *testing.T) {
		h := newHarness(t)
		s := New(h.api, Options{Clock: h.clock})
		v, err := s.Mount(context.Background(), 7)
		require.NoError(t, err)
		defer v.Close()
		h.clock.WaitForTimers(2)

		assert.ErrorIs(t, v.Delete(context.Background()), ErrCancelled)
		assert.Zero(t, h.api.count("delete"))
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t)
		v := h.mount(t)

		require.NoError(t, v.Delete(context.Background()))
		assert.Equal(t, 1, h.api.count("delete"))
		assert.True(t, v.Closed())
		assert.Zero(t, h.clock.Pending())

		last, ok := h.nav.Last()
		require.True(t, ok)
		assert.Equal(t, route.Home, last.Kind)
		assert.Len(t, h.bus.History(events.Filter{Types: []string{events.EventProjectDeleted}}), 1)
	})

	t.Run("failure", func(t *testing.T) {
		h := newHarness(t)
		v := h.mount(t)
		h.api.controlErr = &client.APIError{ErrorCode: "HTTP_ERROR_500", Status: 500}

		err := v.Delete(context.Background())
		require.Error(t, err)
		assert.Equal(t, h.loc.Error(client.ErrCodeDeleteFailed), v.Message(err))
		assert.False(t, v.Closed())
		assert.Empty(t, h.nav.Routes())
	})
}

func TestConfirmationHoldsTheAction(t *testing.T) {
	h := newHarness(t)
	asked := make(chan string, 2)
	answer := make(chan bool)
	s := New(h.api, Options{
		Clock:     h.clock,
		Bus:       h.bus,
		Navigator: h.nav,
		Localizer: h.loc,
		Confirmer: ConfirmFunc(func(ctx context.Context, prompt string) bool {
			asked <- prompt
			return <-answer
		}),
	})
	v, err := s.Mount(context.Background(), 7)
	require.NoError(t, err)
	defer v.Close()
	h.clock.WaitForTimers(2)

	first := make(chan error, 1)
	go func() { first <- v.Delete(context.Background()) }()
	<-asked

	assert.True(t, v.Busy())
	assert.Equal(t, ActionDelete, v.Snapshot().Action)
	assert.ErrorIs(t, v.Delete(context.Background()), ErrControlInFlight)
	assert.ErrorIs(t, v.Stop(context.Background()), ErrControlInFlight)
	assert.Empty(t, asked)
	assert.Empty(t, h.bus.History(events.Filter{Types: []string{events.EventControlStarted}}))

	answer <- false
	assert.ErrorIs(t, <-first, ErrCancelled)
	assert.False(t, v.Busy())
	assert.Zero(t, h.api.count("delete"))
	assert.Zero(t, h.api.count("stop"))

	go func() { first <- v.Delete(context.Background()) }()
	<-asked
	answer <- true
	require.NoError(t, <-first)
	assert.Equal(t, 1, h.api.count("delete"))
	assert.Len(t, h.bus.History(events.Filter{Types: []string{events.EventControlStarted}}), 1)
}

func TestUpdateImage(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	err := v.UpdateImage(context.Background(), "  ")
	assert.Equal(t, client.ErrCodeClientError, client.ErrorCode(err))
	assert.Zero(t, h.api.count("update_image"))

	h.setAnswer(false)
	assert.ErrorIs(t, v.UpdateImage(context.Background(), "nginx:1.27"), ErrCancelled)
	assert.Zero(t, h.api.count("update_image"))

	h.setAnswer(true)
	require.NoError(t, v.UpdateImage(context.Background(), " nginx:1.27 "))
	assert.Equal(t, []string{"nginx:1.27"}, h.api.images)
	assert.Equal(t, "nginx:1.27", v.Snapshot().Project.SourceURL)
	assert.Contains(t, h.lastPrompt(), "webapp")
}

func TestUpdateEnv(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	env := map[string]string{"PORT": "8080"}
	require.NoError(t, v.UpdateEnv(context.Background(), env))
	assert.Equal(t, env, v.Snapshot().Project.EnvVars)
	assert.Empty(t, h.lastPrompt())
}

func TestParticipants(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	err := v.AddParticipant(context.Background(), "alice")
	assert.Equal(t, client.ErrCodeOwnerCannotBeParticipant, client.ErrorCode(err))
	assert.Zero(t, h.api.count("add_participant"))

	require.NoError(t, v.AddParticipant(context.Background(), " carol "))
	assert.Equal(t, []string{"bob", "carol"}, v.Snapshot().Project.Participants)

	require.NoError(t, v.RemoveParticipant(context.Background(), "bob"))
	assert.Equal(t, []string{"carol"}, v.Snapshot().Project.Participants)
	assert.Contains(t, h.lastPrompt(), "bob")
	assert.Contains(t, h.lastPrompt(), "webapp")

	details := h.bus.History(events.Filter{Types: []string{events.EventProjectDetails}})
	assert.Len(t, details, 2)
}

func TestControlAfterClose(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)
	v.Close()

	assert.ErrorIs(t, v.Start(context.Background()), ErrClosed)
	assert.ErrorIs(t, v.Delete(context.Background()), ErrClosed)
	assert.Zero(t, h.api.count("start"))
	assert.Zero(t, h.api.count("delete"))
}

func TestCloseCancelsInFlightControl(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	entered := make(chan struct{})
	h.api.mu.Lock()
	h.api.controlFn = func(ctx context.Context, action Action) error {
		close(entered)
		<-ctx.Done()
		return client.NewAPIError(client.ErrCodeNetworkError, ctx.Err().Error())
	}
	h.api.mu.Unlock()

	result := make(chan error, 1)
	go func() { result <- v.Restart(context.Background()) }()
	<-entered

	history := len(h.bus.History(events.Filter{}))
	v.Close()

	err := <-result
	assert.Equal(t, client.ErrCodeNetworkError, client.ErrorCode(err))
	assert.Zero(t, h.clock.Pending())
	assert.Len(t, h.bus.History(events.Filter{}), history+1) // unmounted only
}

func TestRemount(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	same, err := v.Remount(context.Background(), 7)
	require.NoError(t, err)
	assert.Same(t, v, same)

	other, err := v.Remount(context.Background(), 8)
	require.NoError(t, err)
	defer other.Close()
	h.clock.WaitForTimers(2)
	assert.True(t, v.Closed())
	assert.Equal(t, 8, other.ID())
	assert.False(t, other.Closed())
}

func TestSubscribe(t *testing.T) {
	h := newHarness(t)
	v := h.mount(t)

	var got []Snapshot
	cancel := v.Subscribe(func(s Snapshot) { got = append(got, s) })

	h.clock.Advance(3 * time.Second)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Metrics)

	cancel()
	h.clock.Advance(3 * time.Second)
	assert.Len(t, got, 1)
}
