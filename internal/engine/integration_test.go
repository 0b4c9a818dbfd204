//go:build integration

package engine_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/engine"
)

// liveClient creates a DefaultClient from $RPSTATS_URI, $RPSTATS_USER and
// $RPSTATS_PASSWORD or skips the test if the URI is unset.
func liveClient(t *testing.T, insecure bool) *client.DefaultClient {
	t.Helper()
	uri := os.Getenv("RPSTATS_URI")
	if uri == "" {
		t.Skip("RPSTATS_URI not set; skipping integration test")
	}
	c, err := client.NewDefaultClient(client.ClientConfig{
		BaseURL:            uri,
		Username:           os.Getenv("RPSTATS_USER"),
		Password:           os.Getenv("RPSTATS_PASSWORD"),
		InsecureSkipVerify: insecure,
		RequestTimeout:     10 * time.Second,
	})
	require.NoError(t, err)
	return c
}

// TestLiveServer_Run computes a report against a real server and checks the
// counter invariants hold.
func TestLiveServer_Run(t *testing.T) {
	c := liveClient(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	require.NoError(t, c.Ping(ctx))

	w, err := engine.CalcWindow(time.Now(), 1, "22:00", "06:00")
	require.NoError(t, err)

	rep, err := engine.Run(ctx, c, engine.RunOptions{Window: w, Server: uri()})
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.Equal(t, len(rep.Records), rep.Summary.TotalRestorePoints)
	assert.Equal(t, engine.CountInWindow(rep.Records), rep.Summary.InWindowCount)
	assert.GreaterOrEqual(t, rep.Summary.CompliancePercent, 0.0)
	assert.LessOrEqual(t, rep.Summary.CompliancePercent, 100.0)

	seen := make(map[string]bool)
	for _, r := range rep.Records {
		assert.False(t, seen[r.MachineName], "machine %s reported twice", r.MachineName)
		seen[r.MachineName] = true
		assert.False(t, r.Completed().After(w.End))
	}
}

// TestLiveServer_ServerInfo skips unless RPSTATS_URI is https://.
func TestLiveServer_ServerInfo(t *testing.T) {
	if !strings.HasPrefix(uri(), "https://") {
		t.Skip("RPSTATS_URI is not https://; skipping TLS test")
	}
	c := liveClient(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := c.GetServerInfo(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name, "server name should not be empty")
}

func uri() string { return os.Getenv("RPSTATS_URI") }
