package weddingctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/louisbranch/wedding.rsvp/internal/cmd/bootstrap"
	"github.com/louisbranch/wedding.rsvp/internal/testkit/weddingfakes"
)

type harness struct {
	cfg    bootstrap.Config
	sender *weddingfakes.Sender
	now    time.Time
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	return &harness{
		cfg: bootstrap.Config{
			DBPath:        filepath.Join(t.TempDir(), "wedding.db"),
			PublicBaseURL: "https://wedding.example.com",
			WeddingDate:   weddingfakes.WeddingDate,
			RSVPDeadline:  weddingfakes.RSVPDeadline,
			Timezone:      "UTC",
			Title:         "Ana & Luis",
		},
		sender: &weddingfakes.Sender{},
		now:    now,
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfg := h.cfg
	root := NewRootCommand(Options{
		Config: &cfg,
		Sender: h.sender,
		Clock:  func() time.Time { return h.now },
		Logger: zap.NewNop(),
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateListsAppliedMigrations(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	out, err := h.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")
	assert.NotContains(t, out, "0 migrations applied")
}

func TestSeedIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	out, err := h.run(t, "", "seed")
	require.NoError(t, err)
	assert.NotContains(t, out, "Seeded 0 allergens")

	out, err = h.run(t, "", "seed")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 0 allergens\n", out)
}

func TestImportGuestsFromFileAndStdin(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	path := filepath.Join(t.TempDir(), "guests.csv")
	csv := "name,phone,email,has_plus_one,is_family,language\n" +
		"Marta Ruiz,600111222,marta@example.com,false,true,es\n" +
		"John Smith,600333444,,true,false,en\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := h.run(t, "", "import-guests", path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 guests\n", out)

	out, err = h.run(t, "name,phone,has_plus_one,is_family,language\nAna,600555666,false,false,es\n", "import-guests", "-")
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 guests\n", out)

	out, err = h.run(t, "", "list-guests")
	require.NoError(t, err)
	assert.Contains(t, out, "Marta Ruiz")
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "https://wedding.example.com/rsvp/")
}

func TestImportGuestsRejectsMissingHeaders(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	_, err := h.run(t, "name,phone\nAna,600\n", "import-guests", "-")
	require.Error(t, err)
}

func TestAddGuestPrintsLink(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	out, err := h.run(t, "", "add-guest", "--name", "Marta", "--phone", "600111222", "--language", "en", "--plus-one")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Created guest 1: Marta\n"))
	assert.Contains(t, out, "https://wedding.example.com/rsvp/")

	_, err = h.run(t, "", "add-guest", "--name", "Solo")
	require.Error(t, err)
}

func TestSendRemindersFollowsSchedule(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	_, err := h.run(t, "", "add-guest", "--name", "Marta", "--phone", "600111222", "--email", "marta@example.com")
	require.NoError(t, err)

	out, err := h.run(t, "", "send-reminders")
	require.NoError(t, err)
	assert.Contains(t, out, "No reminder scheduled for today. 26 days until deadline.")
	assert.Contains(t, out, "reminder 2: 2026-04-22")

	h.now = weddingfakes.Day("2026-04-22")
	out, err = h.run(t, "", "send-reminders")
	require.NoError(t, err)
	assert.Contains(t, out, "Reminder 2: 1 sent, 0 failed, 0 skipped of 1")
	assert.Len(t, h.sender.Messages(), 1)

	out, err = h.run(t, "", "send-reminders")
	require.NoError(t, err)
	assert.Equal(t, "No guests need reminder 2\n", out)

	out, err = h.run(t, "", "reminder-history", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Marta: 1 reminders")
}

func TestSendRemindersDryRunAndForce(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	_, err := h.run(t, "", "add-guest", "--name", "Marta", "--phone", "600111222", "--email", "marta@example.com")
	require.NoError(t, err)

	out, err := h.run(t, "", "send-reminders", "--force", "3", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run of reminder 3")
	assert.Empty(t, h.sender.Messages())

	_, err = h.run(t, "", "send-reminders", "--force", "9")
	require.Error(t, err)
}

func TestReminderHistoryRejectsBadID(t *testing.T) {
	t.Parallel()

	h := newHarness(t, weddingfakes.Day("2026-04-10"))
	_, err := h.run(t, "", "reminder-history", "abc")
	require.EqualError(t, err, `invalid guest id "abc"`)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "argument", args: []string{"hash-password", "s3cret"}},
		{name: "stdin", stdin: "s3cret\n", args: []string{"hash-password"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := NewRootCommand(Options{})
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetIn(strings.NewReader(tc.stdin))
			root.SetArgs(tc.args)
			require.NoError(t, root.Execute())

			hash := strings.TrimSpace(out.String())
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
		})
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(Options{})
	root.SetOut(new(bytes.Buffer))
	root.SetIn(strings.NewReader("\n"))
	root.SetArgs([]string{"hash-password"})
	require.Error(t, root.Execute())
}
