// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package live

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/route"
	"github.com/garageisep/hangar/pkg/client"
)

// Action names a control action.
type Action string

const (
	ActionStart             Action = "start"
	ActionStop              Action = "stop"
	ActionRestart           Action = "restart"
	ActionDelete            Action = "delete"
	ActionUpdateImage       Action = "update_image"
	ActionUpdateEnv         Action = "update_env"
	ActionAddParticipant    Action = "add_participant"
	ActionRemoveParticipant Action = "remove_participant"
)

// ControlError is a control action the server rejected or that could not
// reach it. Message is localized for display.
type ControlError struct {
	Action  Action
	Code    string
	Message string
	Err     error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Code)
}

// Unwrap returns the *client.APIError.
func (e *ControlError) Unwrap() error {
	return e.Err
}

// task is an in-flight control action.
type task struct {
	id     string
	cancel context.CancelFunc
}

// Start starts the container. On success the status is refreshed once
// after the refresh delay.
func (v *View) Start(ctx context.Context) error {
	return v.lifecycle(ctx, ActionStart, v.sync.api.Start)
}

// Stop stops the container.
func (v *View) Stop(ctx context.Context) error {
	return v.lifecycle(ctx, ActionStop, v.sync.api.Stop)
}

// Restart restarts the container.
func (v *View) Restart(ctx context.Context) error {
	return v.lifecycle(ctx, ActionRestart, v.sync.api.Restart)
}

func (v *View) lifecycle(ctx context.Context, action Action, call func(context.Context, int) error) error {
	err := v.run(ctx, action, "", func(ctx context.Context) error {
		return call(ctx, v.id)
	})
	if err != nil {
		return err
	}
	v.scheduleRefresh()
	return nil
}

// Delete permanently deletes the project after confirmation. On success
// the view is closed and the client navigates Home.
func (v *View) Delete(ctx context.Context) error {
	prompt := v.sync.opts.Localizer.T("project_dashboard.confirm_delete", "name", v.projectName())
	err := v.run(ctx, ActionDelete, prompt, func(ctx context.Context) error {
		return v.sync.api.Delete(ctx, v.id)
	})
	if err != nil {
		return err
	}

	v.log.Info("project deleted")
	v.publish(events.EventProjectDeleted, map[string]interface{}{"name": v.projectName()})
	v.Close()
	v.sync.opts.Navigator.Navigate(route.Route{Kind: route.Home})
	return nil
}

// UpdateImage redeploys the project from imageURL after confirmation.
func (v *View) UpdateImage(ctx context.Context, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return client.NewAPIError(client.ErrCodeClientError, "image URL is required")
	}
	prompt := v.sync.opts.Localizer.T("project_dashboard.confirm_update_image", "name", v.projectName())
	err := v.run(ctx, ActionUpdateImage, prompt, func(ctx context.Context) error {
		return v.sync.api.UpdateImage(ctx, v.id, imageURL)
	})
	if err != nil {
		return err
	}
	v.reloadDetails(v.ctx)
	v.scheduleRefresh()
	return nil
}

// UpdateEnv replaces the container environment.
func (v *View) UpdateEnv(ctx context.Context, env map[string]string) error {
	err := v.run(ctx, ActionUpdateEnv, "", func(ctx context.Context) error {
		return v.sync.api.UpdateEnv(ctx, v.id, env)
	})
	if err != nil {
		return err
	}
	v.reloadDetails(v.ctx)
	return nil
}

// AddParticipant grants login read access. The owner cannot be added.
func (v *View) AddParticipant(ctx context.Context, login string) error {
	login = strings.TrimSpace(login)
	if login == "" {
		return client.NewAPIError(client.ErrCodeClientError, "participant login is required")
	}
	if login == v.Snapshot().Project.Owner {
		return client.NewAPIError(client.ErrCodeOwnerCannotBeParticipant, login)
	}
	err := v.run(ctx, ActionAddParticipant, "", func(ctx context.Context) error {
		return v.sync.api.AddParticipant(ctx, v.id, login)
	})
	if err != nil {
		return err
	}
	v.reloadDetails(v.ctx)
	return nil
}

// RemoveParticipant revokes login's access after confirmation.
func (v *View) RemoveParticipant(ctx context.Context, login string) error {
	prompt := v.sync.opts.Localizer.T("project_dashboard.confirm_remove_participant",
		"login", login, "name", v.projectName())
	err := v.run(ctx, ActionRemoveParticipant, prompt, func(ctx context.Context) error {
		return v.sync.api.RemoveParticipant(ctx, v.id, login)
	})
	if err != nil {
		return err
	}
	v.reloadDetails(v.ctx)
	return nil
}

// Message returns the localized text to show for an error returned by a
// control action. It returns "" for a cancelled confirmation.
func (v *View) Message(err error) string {
	loc := v.sync.opts.Localizer
	var ce *ControlError
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return ""
	case errors.Is(err, ErrControlInFlight):
		return loc.T("project_dashboard.action_busy")
	case errors.As(err, &ce):
		return ce.Message
	default:
		return loc.Error(client.ErrorCode(err))
	}
}

func (v *View) projectName() string {
	return v.Snapshot().Project.Name
}

// run executes one control action. It refuses without a network call when
// the view is closed, another action is running, or the user declines the
// prompt. The action holds the busy flag while the user is asked, so a
// second action is refused without a prompt of its own. The flag is cleared
// when the call settles, whatever the outcome.
func (v *View) run(ctx context.Context, action Action, prompt string, call func(context.Context) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()
	t := &task{id: uuid.NewString(), cancel: cancel}

	var refused error
	reserved := v.update("", func(s *Snapshot) (map[string]interface{}, bool) {
		if s.Busy {
			refused = ErrControlInFlight
			return nil, false
		}
		s.Busy = true
		s.Action = action
		v.tasks[action] = t
		return nil, true
	})
	if !reserved {
		if refused != nil {
			return refused
		}
		return ErrClosed
	}

	if prompt != "" {
		c := v.sync.opts.Confirmer
		if c == nil || !c.Confirm(taskCtx, prompt) {
			v.release(action, "", nil)
			return ErrCancelled
		}
		if v.Closed() {
			return ErrClosed
		}
	}

	payload := map[string]interface{}{"action": string(action), "task_id": t.id}
	v.publish(events.EventControlStarted, payload)
	v.log.Info("control action", "action", action, "task", t.id)
	err := call(taskCtx)

	eventType := events.EventControlFinished
	payload = map[string]interface{}{"action": string(action), "task_id": t.id}
	if err != nil {
		eventType = events.EventControlFailed
		payload["error"] = client.ErrorCode(err)
	}
	v.release(action, eventType, payload)

	if err != nil {
		v.log.Warn("control action failed", "action", action, "task", t.id, "error", err)
		return v.controlError(action, err)
	}
	return nil
}

// release clears the busy flag held by action.
func (v *View) release(action Action, eventType string, payload map[string]interface{}) {
	v.update(eventType, func(s *Snapshot) (map[string]interface{}, bool) {
		delete(v.tasks, action)
		s.Busy = false
		s.Action = ""
		return payload, true
	})
}

func (v *View) controlError(action Action, err error) *ControlError {
	loc := v.sync.opts.Localizer
	code := client.ErrorCode(err)
	msg := loc.Error(code)
	if action == ActionDelete {
		msg = loc.Error(client.ErrCodeDeleteFailed)
	}
	return &ControlError{Action: action, Code: code, Message: msg, Err: err}
}
