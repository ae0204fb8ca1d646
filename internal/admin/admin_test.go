// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garageisep/hangar/pkg/client"
)

func adminBackend(t *testing.T, failDown bool, calls *atomic.Int32) *client.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/metrics", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(client.GlobalMetrics{TotalProjects: 3, RunningContainers: 2, TotalCPUUsage: 12.5, TotalMemoryUsage: 512})
	})
	mux.HandleFunc("/api/admin/projects/down", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if failDown {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("bad gateway"))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"down_projects": []client.DownProjectInfo{{Project: client.Project{ID: 3, Name: "broken"}, DowntimeSeconds: 3725}},
		})
	})
	mux.HandleFunc("/api/admin/projects", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"projects": []client.Project{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: 3, Name: "broken"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

func TestLoadAll(t *testing.T) {
	var calls atomic.Int32
	api := adminBackend(t, false, &calls)

	o := Load(context.Background(), api.Admin, AllSections, nil)
	require.NoError(t, o.Err())
	assert.Equal(t, int32(3), calls.Load())

	require.NotNil(t, o.Metrics)
	assert.Equal(t, 2, o.Metrics.RunningContainers)
	require.Len(t, o.Down, 1)
	assert.Equal(t, int64(3725), o.Down[0].DowntimeSeconds)
	assert.Len(t, o.Projects, 3)
	assert.False(t, o.Failed(AllSections))
}

func TestSectionsFailIndependently(t *testing.T) {
	var calls atomic.Int32
	api := adminBackend(t, true, &calls)

	o := Load(context.Background(), api.Admin, AllSections, nil)
	require.Error(t, o.Err())
	assert.Equal(t, "HTTP_ERROR_502", client.ErrorCode(o.DownErr))
	assert.Nil(t, o.Down)
	assert.NoError(t, o.MetricsErr)
	assert.NotNil(t, o.Metrics)
	assert.Len(t, o.Projects, 3)

	assert.True(t, o.Failed(SectionDown))
	assert.False(t, o.Failed(AllSections))
}

func TestLoadSelectedSections(t *testing.T) {
	var calls atomic.Int32
	api := adminBackend(t, false, &calls)

	o := Load(context.Background(), api.Admin, SectionMetrics, nil)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotNil(t, o.Metrics)
	assert.Nil(t, o.Projects)
	assert.Nil(t, o.Down)
}
