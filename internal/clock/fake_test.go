// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC)

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var order []string

	c.AfterFunc(3*time.Second, func() { order = append(order, "metrics") })
	c.AfterFunc(5*time.Second, func() { order = append(order, "status") })
	c.AfterFunc(1500*time.Millisecond, func() { order = append(order, "refresh") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"refresh"}, order)
	assert.Equal(t, 2, c.Pending())

	c.Advance(10 * time.Second)
	assert.Equal(t, []string{"refresh", "metrics", "status"}, order)
	assert.Equal(t, epoch.Add(12*time.Second), c.Now())
}

func TestFakeStop(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeRescheduleDuringAdvance(t *testing.T) {
	c := NewFake(epoch)
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(5 * time.Second)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, 1, c.Pending())
}

func TestFakeNowDuringAdvance(t *testing.T) {
	c := NewFake(epoch)
	var seen []time.Time
	c.AfterFunc(2*time.Second, func() {
		seen = append(seen, c.Now())
		c.AfterFunc(2*time.Second, func() { seen = append(seen, c.Now()) })
	})

	c.Advance(5 * time.Second)
	assert.Equal(t, []time.Time{epoch.Add(2 * time.Second), epoch.Add(4 * time.Second)}, seen)
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
}

func TestFakeImmediate(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	timer := c.AfterFunc(0, func() { fired = true })
	assert.True(t, fired)
	assert.False(t, timer.Stop())
}

func TestFakeWaitForTimers(t *testing.T) {
	c := NewFake(epoch)
	done := make(chan struct{})
	go func() {
		c.AfterFunc(time.Second, func() { close(done) })
	}()
	c.WaitForTimers(1)
	c.Advance(time.Second)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
