// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "context"

// AdminClient provides access to fleet-wide views. Every call requires an
// admin session; other users get UNAUTHORIZED or HTTP_ERROR_403.
//
// Access this client through [Client.Admin]:
//
//	down, err := client.Admin.DownProjects(ctx)
type AdminClient struct {
	c *Client
}

// Projects returns every project on the platform.
func (a *AdminClient) Projects(ctx context.Context) ([]Project, error) {
	var resp projectsResponse
	if err := a.c.get(ctx, "/admin/projects", &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// Metrics returns aggregated resource usage.
func (a *AdminClient) Metrics(ctx context.Context) (*GlobalMetrics, error) {
	var m GlobalMetrics
	if err := a.c.get(ctx, "/admin/metrics", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DownProjects returns the projects whose container is not running.
func (a *AdminClient) DownProjects(ctx context.Context) ([]DownProjectInfo, error) {
	var resp struct {
		DownProjects []DownProjectInfo `json:"down_projects"`
	}
	if err := a.c.get(ctx, "/admin/projects/down", &resp); err != nil {
		return nil, err
	}
	return resp.DownProjects, nil
}
