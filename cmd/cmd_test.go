package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
)

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupCLI points storage at a fresh temp directory shared by every run of
// the test.
func setupCLI(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARTISAN_STORAGE_PATH", filepath.Join(dir, "db"))
	t.Setenv("ARTISAN_STORAGE_SQLITE_PATH", filepath.Join(dir, "escalation.db"))
	t.Setenv("ARTISAN_ARTISAN_ID", "test")
	t.Setenv("XDG_CONFIG_HOME", dir)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--color", "never"))
	err := Execute()
	return out.String(), errOut.String(), err
}

// run returns stdout and stderr together.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut, err := execute(t, args...)
	return out + errOut, err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, errOut, err := execute(t, append(args, "--format", "json")...)
	require.NoError(t, err, errOut)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "artisan dev")
}

func TestClientAddAndList(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "client", "add", "Jean", "Dupont", "--email", "jd@example.com")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Added client Jean Dupont")

	var got struct {
		Clients []struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"clients"`
	}
	runJSON(t, &got, "client", "list")
	require.Len(t, got.Clients, 1)
	assert.Equal(t, "Jean Dupont", got.Clients[0].Name)
	assert.Equal(t, "jd@example.com", got.Clients[0].Email)
}

func TestInterventionLifecycle(t *testing.T) {
	setupCLI(t)

	var added struct {
		Interventions []struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Duration int    `json:"duration_minutes"`
		} `json:"interventions"`
	}
	runJSON(t, &added, "intervention", "add", "Boiler", "service", "--at", "tomorrow 9am", "--duration", "1h30m")
	require.Len(t, added.Interventions, 1)
	id := added.Interventions[0].ID
	assert.Equal(t, "todo", added.Interventions[0].Status)
	assert.Equal(t, 90, added.Interventions[0].Duration)

	// A future intervention cannot be completed
	out, err := run(t, "intervention", "status", id, "done")
	require.Error(t, err)
	assert.Contains(t, out, "Error:")

	var updated struct {
		Intervention struct {
			Status string `json:"status"`
		} `json:"intervention"`
		Previous       string `json:"previous_status"`
		NotificationID string `json:"notification_id"`
	}
	runJSON(t, &updated, "intervention", "status", id[:13], "cancelled")
	assert.Equal(t, "cancelled", updated.Intervention.Status)
	assert.Equal(t, "todo", updated.Previous)
	assert.NotEmpty(t, updated.NotificationID)

	var inbox struct {
		Notifications []struct {
			Type string `json:"type"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	runJSON(t, &inbox, "notifications", "list")
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "intervention_status", inbox.Notifications[0].Type)
	assert.Equal(t, 1, inbox.Unread)

	out, err = run(t, "notifications", "read", "--all")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Marked 1 notification(s) read")
}

func TestInterventionAddRejectsLongDuration(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "intervention", "add", "Roof", "--at", "tomorrow 9am", "--duration", "3h")
	require.Error(t, err)
	assert.Contains(t, out, "Error:")
}

func TestUnknownStatus(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "intervention", "status", "abc", "finished")
	require.Error(t, err)
	assert.Contains(t, out, "Unknown status")
}

func TestStatusInProgressIsNotSettable(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "intervention", "status", "abc", "in_progress")
	require.Error(t, err)
	assert.Contains(t, out, "Unknown status")
	assert.Contains(t, out, "Valid statuses are todo, completed and cancelled.")
}

func TestAutoCorrectNeedsSingleIntervention(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "intervention", "status", "abc", "def", "done", "--auto-correct")
	require.Error(t, err)
	assert.True(t, apperrors.IsUserError(err))
	assert.Contains(t, out, "--auto-correct applies to a single intervention")
	assert.Contains(t, out, "Hint: Run the command once per intervention")
}

func TestInvoiceCheckAndPay(t *testing.T) {
	setupCLI(t)

	var added struct {
		Invoices []struct {
			ID         string `json:"id"`
			TotalCents int64  `json:"total_cents"`
		} `json:"invoices"`
	}
	runJSON(t, &added, "invoice", "add", "F-1", "--amount", "1,250.50", "--due", "yesterday")
	require.Len(t, added.Invoices, 1)
	assert.Equal(t, int64(125050), added.Invoices[0].TotalCents)
	id := added.Invoices[0].ID

	var scan struct {
		RunID    string `json:"run_id"`
		Invoices struct {
			Scanned  int `json:"scanned"`
			Created  int `json:"created"`
			Promoted int `json:"promoted"`
		} `json:"invoices"`
	}
	runJSON(t, &scan, "check", "invoices")
	assert.Len(t, scan.RunID, 8)
	assert.Equal(t, 1, scan.Invoices.Scanned)
	assert.Equal(t, 1, scan.Invoices.Created)
	assert.Equal(t, 1, scan.Invoices.Promoted)

	// Same day: nothing new
	runJSON(t, &scan, "check", "invoices")
	assert.Equal(t, 0, scan.Invoices.Created)

	out, err := run(t, "invoice", "show", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "overdue")
	assert.Contains(t, out, "tier 1")

	out, err = run(t, "invoice", "pay", id[:13])
	require.NoError(t, err, out)
	assert.Contains(t, out, "Invoice F-1 marked paid")

	runJSON(t, &scan, "check", "invoices")
	assert.Equal(t, 0, scan.Invoices.Scanned)
}

func TestCheckRejectsUnknownScan(t *testing.T) {
	_, err := run(t, "check", "payments")
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	setupCLI(t)
	t.Setenv("ARTISAN_STORAGE_BACKEND", "sqlite")

	_, err := run(t, "invoice", "add", "F-2", "--amount", "80", "--due", "yesterday")
	require.NoError(t, err)

	out, err := run(t, "check")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 reminder(s) issued")

	var inbox struct {
		Unread int `json:"unread"`
	}
	runJSON(t, &inbox, "notifications", "list")
	assert.Equal(t, 1, inbox.Unread)
}

func TestCalendarViews(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "intervention", "add", "Leak", "--at", "tomorrow 10am", "--duration", "45")
	require.NoError(t, err)

	out, err := run(t, "calendar", "day", "tomorrow")
	require.NoError(t, err, out)
	assert.Contains(t, out, "10:00-10:45")
	assert.Contains(t, out, "Leak")

	var days struct {
		Days []struct {
			Slots []struct {
				Title       string `json:"title"`
				ColumnCount int    `json:"column_count"`
			} `json:"slots"`
		} `json:"days"`
	}
	runJSON(t, &days, "calendar", "week", "tomorrow")
	require.Len(t, days.Days, 7)
	total := 0
	for _, d := range days.Days {
		total += len(d.Slots)
	}
	assert.Equal(t, 1, total)

	out, err = run(t, "calendar", "month", "tomorrow")
	require.NoError(t, err, out)
	assert.Contains(t, out, "10:00 Leak")
}

func TestConfigShow(t *testing.T) {
	setupCLI(t)
	t.Setenv("ARTISAN_ESCALATION_WORKERS", "4")

	out, err := run(t, "config")
	require.NoError(t, err, out)
	assert.True(t, strings.Contains(out, "escalation.workers") && strings.Contains(out, "4"))

	var cfg struct {
		ArtisanID string `json:"artisan_id"`
	}
	runJSON(t, &cfg, "config")
	assert.Equal(t, "test", cfg.ArtisanID)
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "artisan")
}
