// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "strings"

// User is an authenticated Hangar user as returned by the auth endpoints.
type User struct {
	// Login is the institutional login (CAS user name).
	Login string `json:"login"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the user's institutional e-mail address.
	Email string `json:"email"`

	// IsAdmin grants fleet-wide control and access to the admin endpoints.
	IsAdmin bool `json:"is_admin"`
}

// ProjectSource is where a project's image comes from.
type ProjectSource string

const (
	// SourceDirect is a project deployed from a Docker image URL.
	SourceDirect ProjectSource = "direct"

	// SourceGithub is a project built from a GitHub repository.
	SourceGithub ProjectSource = "github"
)

// Project is a deployed project.
type Project struct {
	// ID is the numeric project identifier.
	ID int `json:"id"`

	// Name is the unique project name, also used as the subdomain.
	Name string `json:"name"`

	// Owner is the login of the user who deployed the project.
	Owner string `json:"owner"`

	// ContainerName is the name of the backing container.
	ContainerName string `json:"container_name"`

	// Source tells whether the project comes from an image or a repository.
	Source ProjectSource `json:"source"`

	// SourceURL is the image URL or the repository URL.
	SourceURL string `json:"source_url"`

	// DeployedImageTag is the image tag currently running.
	DeployedImageTag string `json:"deployed_image_tag"`

	// CreatedAt is the creation time as an RFC 3339 string.
	CreatedAt string `json:"created_at"`
}

// CreatedDate returns the date part of CreatedAt ("2026-01-17").
func (p Project) CreatedDate() string {
	date, _, _ := strings.Cut(p.CreatedAt, "T")
	return date
}

// ProjectDetails is a project with its participants and configuration.
type ProjectDetails struct {
	Project

	// Participants are the logins with read access to the project.
	Participants []string `json:"participants"`

	// EnvVars is the container environment, when the server exposes it.
	EnvVars map[string]string `json:"env_vars,omitempty"`

	// PersistentVolumePath is the mount path of the project's volume, if any.
	PersistentVolumePath string `json:"persistent_volume_path,omitempty"`
}

// Container states reported by the status endpoint.
const (
	StatusRunning    = "running"
	StatusExited     = "exited"
	StatusStopped    = "stopped"
	StatusDead       = "dead"
	StatusRestarting = "restarting"
	StatusCreated    = "created"
	StatusPaused     = "paused"
)

// ProjectMetrics is a point-in-time resource usage sample for one project.
type ProjectMetrics struct {
	// CPUUsage is the CPU usage in percent.
	CPUUsage float64 `json:"cpu_usage"`

	// MemoryUsage is the resident memory in bytes.
	MemoryUsage float64 `json:"memory_usage"`

	// MemoryLimit is the memory limit in bytes.
	MemoryLimit float64 `json:"memory_limit"`
}

// GlobalMetrics aggregates resource usage across the fleet.
type GlobalMetrics struct {
	TotalProjects     int     `json:"total_projects"`
	RunningContainers int     `json:"running_containers"`
	TotalCPUUsage     float64 `json:"total_cpu_usage"`
	TotalMemoryUsage  float64 `json:"total_memory_usage_mb"`
}

// DownProjectInfo is a project whose container is not running.
type DownProjectInfo struct {
	Project Project `json:"project"`

	// DowntimeSeconds is how long the project has been down.
	DowntimeSeconds int64 `json:"downtime_seconds"`
}

// DeployRequest is the payload of a deployment.
//
// Exactly one of ImageURL and GithubRepoURL must be set.
type DeployRequest struct {
	ProjectName          string            `json:"project_name"`
	ImageURL             string            `json:"image_url,omitempty"`
	GithubRepoURL        string            `json:"github_repo_url,omitempty"`
	GithubBranch         string            `json:"github_branch,omitempty"`
	GithubRootDir        string            `json:"github_root_dir,omitempty"`
	Participants         []string          `json:"participants"`
	EnvVars              map[string]string `json:"env_vars,omitempty"`
	PersistentVolumePath string            `json:"persistent_volume_path,omitempty"`
	CreateDatabase       bool              `json:"create_database,omitempty"`
}

// DatabaseDetails describes a managed database and its credentials.
type DatabaseDetails struct {
	ID           int    `json:"id"`
	DatabaseName string `json:"database_name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ProjectID    *int   `json:"project_id,omitempty"`
}
