// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"strconv"
)

// DatabaseClient provides access to managed databases.
//
// Each user may own one database, which can be linked to one of their
// projects. Access this client through [Client.Databases]:
//
//	db, err := client.Databases.Mine(ctx)
type DatabaseClient struct {
	c *Client
}

type databaseResponse struct {
	Database DatabaseDetails `json:"database"`
}

// Mine returns the current user's database. When the user has none, the
// error carries the NOT_FOUND code.
func (d *DatabaseClient) Mine(ctx context.Context) (*DatabaseDetails, error) {
	var resp databaseResponse
	if err := d.c.get(ctx, "/databases/mine", &resp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, &APIError{ErrorCode: ErrCodeNotFound, Status: http.StatusNotFound}
		}
		return nil, err
	}
	return &resp.Database, nil
}

// Create provisions a database for the current user.
func (d *DatabaseClient) Create(ctx context.Context) (*DatabaseDetails, error) {
	var resp databaseResponse
	if err := d.c.post(ctx, "/databases", &resp); err != nil {
		return nil, err
	}
	return &resp.Database, nil
}

// Delete drops a database.
func (d *DatabaseClient) Delete(ctx context.Context, id int) error {
	return d.c.delete(ctx, "/databases/"+strconv.Itoa(id))
}

// Link attaches a database to a project.
func (d *DatabaseClient) Link(ctx context.Context, projectID, databaseID int) error {
	return d.c.put(ctx, projectPath(projectID, "/database/"+strconv.Itoa(databaseID)), nil)
}

// Unlink detaches the project's database without dropping it.
func (d *DatabaseClient) Unlink(ctx context.Context, projectID int) error {
	return d.c.delete(ctx, projectPath(projectID, "/database"))
}

// DeleteLinked drops the database linked to a project.
func (d *DatabaseClient) DeleteLinked(ctx context.Context, projectID int) error {
	return d.c.delete(ctx, projectPath(projectID, "/database/delete"))
}
