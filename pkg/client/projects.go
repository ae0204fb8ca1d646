// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ProjectClient provides access to project deployment and lifecycle operations.
//
// Access this client through [Client.Projects]:
//
//	projects, err := client.Projects.Owned(ctx)
type ProjectClient struct {
	c *Client
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

type projectDetailsResponse struct {
	Project ProjectDetails `json:"project"`
}

type statusResponse struct {
	Status *string `json:"status"`
}

type logsResponse struct {
	Logs string `json:"logs"`
}

func projectPath(id int, suffix string) string {
	return "/projects/" + strconv.Itoa(id) + suffix
}

// Owned returns the projects owned by the current user.
func (p *ProjectClient) Owned(ctx context.Context) ([]Project, error) {
	var resp projectsResponse
	if err := p.c.get(ctx, "/projects/owned", &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Participations returns the projects the current user participates in.
func (p *ProjectClient) Participations(ctx context.Context) ([]Project, error) {
	var resp projectsResponse
	if err := p.c.get(ctx, "/projects/participations", &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Deploy creates a project and returns its details.
//
// Exactly one of req.ImageURL and req.GithubRepoURL must be set; otherwise a
// CLIENT_ERROR is returned without contacting the server.
func (p *ProjectClient) Deploy(ctx context.Context, req DeployRequest) (*ProjectDetails, error) {
	if (req.ImageURL == "") == (req.GithubRepoURL == "") {
		return nil, NewAPIError(ErrCodeClientError, "exactly one of image URL or GitHub repository is required")
	}
	if req.Participants == nil {
		req.Participants = []string{}
	}

	var resp projectDetailsResponse
	if err := p.c.sendJSON(ctx, http.MethodPost, "/projects/deploy", req, &resp, ErrCodeClientSerialization); err != nil {
		return nil, err
	}
	return &resp.Project, nil
}

// Get returns a project with its participants.
func (p *ProjectClient) Get(ctx context.Context, id int) (*ProjectDetails, error) {
	var resp projectDetailsResponse
	if err := p.c.get(ctx, projectPath(id, ""), &resp); err != nil {
		return nil, err
	}
	return &resp.Project, nil
}

// Delete permanently deletes a project and its container.
func (p *ProjectClient) Delete(ctx context.Context, id int) error {
	return p.c.delete(ctx, projectPath(id, ""))
}

// Status returns the container state ("running", "exited", ...). A nil
// result means the server does not know the state.
func (p *ProjectClient) Status(ctx context.Context, id int) (*string, error) {
	var resp statusResponse
	if err := p.c.get(ctx, projectPath(id, "/status"), &resp); err != nil {
		return nil, err
	}
	return resp.Status, nil
}

// Metrics returns a resource usage sample.
func (p *ProjectClient) Metrics(ctx context.Context, id int) (*ProjectMetrics, error) {
	var m ProjectMetrics
	if err := p.c.get(ctx, projectPath(id, "/metrics"), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Logs returns the container output as newline-delimited text.
func (p *ProjectClient) Logs(ctx context.Context, id int) (string, error) {
	var resp logsResponse
	if err := p.c.get(ctx, projectPath(id, "/logs"), &resp); err != nil {
		return "", err
	}
	return resp.Logs, nil
}

// Start starts a stopped project.
func (p *ProjectClient) Start(ctx context.Context, id int) error {
	return p.c.post(ctx, projectPath(id, "/start"), nil)
}

// Stop stops a running project.
func (p *ProjectClient) Stop(ctx context.Context, id int) error {
	return p.c.post(ctx, projectPath(id, "/stop"), nil)
}

// Restart restarts a project.
func (p *ProjectClient) Restart(ctx context.Context, id int) error {
	return p.c.post(ctx, projectPath(id, "/restart"), nil)
}

// UpdateImage redeploys the project from a new image. The service is briefly
// interrupted.
func (p *ProjectClient) UpdateImage(ctx context.Context, id int, imageURL string) error {
	body := struct {
		NewImageURL string `json:"new_image_url"`
	}{NewImageURL: imageURL}
	return p.c.sendJSON(ctx, http.MethodPut, projectPath(id, "/image"), body, nil, ErrCodeClientSerialization)
}

// UpdateEnv replaces the container environment and restarts the project.
func (p *ProjectClient) UpdateEnv(ctx context.Context, id int, env map[string]string) error {
	if env == nil {
		env = map[string]string{}
	}
	body := struct {
		EnvVars map[string]string `json:"env_vars"`
	}{EnvVars: env}
	return p.c.sendJSON(ctx, http.MethodPut, projectPath(id, "/env"), body, nil, ErrCodeClientError)
}

// AddParticipant grants a user read access to the project.
func (p *ProjectClient) AddParticipant(ctx context.Context, id int, login string) error {
	body := struct {
		ParticipantID string `json:"participant_id"`
	}{ParticipantID: login}
	return p.c.sendJSON(ctx, http.MethodPost, projectPath(id, "/participants"), body, nil, ErrCodeClientError)
}

// RemoveParticipant revokes a participant's access.
func (p *ProjectClient) RemoveParticipant(ctx context.Context, id int, login string) error {
	if login == "" {
		return NewAPIError(ErrCodeClientError, "participant login is required")
	}
	return p.c.delete(ctx, projectPath(id, fmt.Sprintf("/participants/%s", url.PathEscape(login))))
}
