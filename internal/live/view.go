// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package live

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/garageisep/hangar/internal/clock"
	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/poll"
	"github.com/garageisep/hangar/pkg/client"
)

// Snapshot is the state of a view at one point in time.
type Snapshot struct {
	Project client.ProjectDetails `json:"project"`

	// Status is the container state; nil until known or after a failed
	// fetch.
	Status *string `json:"status"`

	// Metrics is the latest sample; nil until known or after a failed
	// fetch.
	Metrics *client.ProjectMetrics `json:"metrics"`

	// Busy is the ControlInFlight flag. Action names the running action.
	Busy   bool   `json:"busy"`
	Action Action `json:"action,omitempty"`

	Closed bool `json:"closed"`
}

// View is one mounted project.
type View struct {
	sync *Synchronizer
	id   int
	log  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	statusSeq  poll.Sequence
	metricsSeq poll.Sequence
	detailsSeq poll.Sequence

	mu        sync.Mutex
	state     Snapshot
	closed    bool
	statusH   *poll.Handle
	metricsH  *poll.Handle
	refreshes map[*refresh]struct{}
	tasks     map[Action]*task
	subs      map[int]func(Snapshot)
	nextSub   int

	// ops counts notifications in progress; Close waits for them.
	ops sync.WaitGroup
}

type refresh struct {
	timer clock.Timer
}

func newView(s *Synchronizer, id int, project *client.ProjectDetails) *View {
	ctx, cancel := context.WithCancel(context.Background())
	return &View{
		sync:      s,
		id:        id,
		log:       s.log.With("project", id),
		ctx:       ctx,
		cancel:    cancel,
		state:     Snapshot{Project: *project},
		refreshes: make(map[*refresh]struct{}),
		tasks:     make(map[Action]*task),
		subs:      make(map[int]func(Snapshot)),
	}
}

func (v *View) start() {
	v.publish(events.EventProjectMounted, map[string]interface{}{
		"name":  v.state.Project.Name,
		"owner": v.state.Project.Owner,
	})

	opts := v.sync.opts
	statusH := poll.Start(v.ctx, opts.Clock, opts.StatusInterval, v.fetchStatus)
	metricsH := poll.Start(v.ctx, opts.Clock, opts.MetricsInterval, v.fetchMetrics)

	v.mu.Lock()
	v.statusH = statusH
	v.metricsH = metricsH
	v.mu.Unlock()
	v.log.Debug("view mounted")
}

// ID returns the project id of the view.
func (v *View) ID() int {
	return v.id
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	snap := v.state
	snap.Closed = v.closed
	return snap
}

// Busy reports whether a control action is in progress.
func (v *View) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Busy
}

// Closed reports whether the view has been closed.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Subscribe calls fn with a snapshot after every state change. fn runs on
// the goroutine that made the change and must not call Close. The returned
// function unsubscribes.
func (v *View) Subscribe(fn func(Snapshot)) (cancel func()) {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// update applies mutate to the state unless the view is closed or mutate
// reports no change, then notifies subscribers and publishes eventType.
func (v *View) update(eventType string, mutate func(*Snapshot) (payload map[string]interface{}, changed bool)) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	payload, changed := mutate(&v.state)
	if !changed {
		v.mu.Unlock()
		return false
	}
	snap := v.snapshotLocked()
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.subs[id])
	}
	v.ops.Add(1)
	v.mu.Unlock()
	defer v.ops.Done()

	for _, fn := range fns {
		fn(snap)
	}
	if eventType != "" {
		v.publish(eventType, payload)
	}
	return true
}

func (v *View) publish(eventType string, payload map[string]interface{}) {
	bus := v.sync.opts.Bus
	if bus == nil {
		return
	}
	if err := bus.Publish(context.Background(), events.Event{
		Type:      eventType,
		ProjectID: v.id,
		Payload:   payload,
	}); err != nil {
		v.log.Debug("publish failed", "type", eventType, "error", err)
	}
}

func (v *View) fetchStatus(ctx context.Context) {
	seq := v.statusSeq.Next()
	status, err := v.sync.api.Status(ctx, v.id)
	if err != nil {
		v.log.Debug("status fetch failed", "error", err)
	}
	v.update(events.EventProjectStatus, func(s *Snapshot) (map[string]interface{}, bool) {
		if !v.statusSeq.Accept(seq) {
			return nil, false
		}
		if err != nil {
			s.Status = nil
			return map[string]interface{}{"status": nil, "error": client.ErrorCode(err)}, true
		}
		s.Status = status
		return map[string]interface{}{"status": derefStatus(status)}, true
	})
}

func (v *View) fetchMetrics(ctx context.Context) {
	seq := v.metricsSeq.Next()
	metrics, err := v.sync.api.Metrics(ctx, v.id)
	if err != nil {
		v.log.Debug("metrics fetch failed", "error", err)
	}
	v.update(events.EventProjectMetrics, func(s *Snapshot) (map[string]interface{}, bool) {
		if !v.metricsSeq.Accept(seq) {
			return nil, false
		}
		if err != nil {
			s.Metrics = nil
			return map[string]interface{}{"metrics": nil, "error": client.ErrorCode(err)}, true
		}
		s.Metrics = metrics
		return map[string]interface{}{
			"cpu_usage":    metrics.CPUUsage,
			"memory_usage": metrics.MemoryUsage,
			"memory_limit": metrics.MemoryLimit,
		}, true
	})
}

// reloadDetails refetches the project. A failure keeps the details already
// shown.
func (v *View) reloadDetails(ctx context.Context) {
	seq := v.detailsSeq.Next()
	project, err := v.sync.api.Get(ctx, v.id)
	if err != nil {
		v.log.Warn("project reload failed", "error", err)
		return
	}
	v.update(events.EventProjectDetails, func(s *Snapshot) (map[string]interface{}, bool) {
		if !v.detailsSeq.Accept(seq) {
			return nil, false
		}
		s.Project = *project
		return map[string]interface{}{
			"name":         project.Name,
			"participants": project.Participants,
			"image_tag":    project.DeployedImageTag,
		}, true
	})
}

// scheduleRefresh arms one out-of-cycle status and details refresh after
// the refresh delay. The regular poll cadence is not affected.
func (v *View) scheduleRefresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	r := &refresh{}
	r.timer = v.sync.opts.Clock.AfterFunc(v.sync.opts.RefreshDelay, func() {
		v.mu.Lock()
		if _, ok := v.refreshes[r]; !ok || v.closed {
			v.mu.Unlock()
			return
		}
		delete(v.refreshes, r)
		v.mu.Unlock()

		v.fetchStatus(v.ctx)
		v.reloadDetails(v.ctx)
	})
	v.refreshes[r] = struct{}{}
}

// Close stops polling, cancels pending refreshes and in-flight actions,
// and waits for running notifications. After Close returns the view state
// never changes and no event is published for it. Close is idempotent.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	statusH, metricsH := v.statusH, v.metricsH
	refreshes := v.refreshes
	v.refreshes = nil
	tasks := v.tasks
	v.tasks = map[Action]*task{}
	v.subs = map[int]func(Snapshot){}
	v.mu.Unlock()

	if statusH != nil {
		statusH.Stop()
	}
	if metricsH != nil {
		metricsH.Stop()
	}
	for r := range refreshes {
		r.timer.Stop()
	}
	for _, t := range tasks {
		t.cancel()
	}
	v.cancel()

	v.ops.Wait()
	v.publish(events.EventProjectUnmounted, nil)
	v.log.Debug("view closed")
}

// Remount returns a view of projectID. The same view is returned when it
// already shows that project; otherwise it is closed and a new one is
// mounted.
func (v *View) Remount(ctx context.Context, projectID int) (*View, error) {
	if projectID == v.id && !v.Closed() {
		return v, nil
	}
	v.Close()
	return v.sync.Mount(ctx, projectID)
}

func derefStatus(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
