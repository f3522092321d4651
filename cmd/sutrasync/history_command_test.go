package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"sutrasync/internal/ledger"
	"sutrasync/internal/testsupport"
)

func seedRun(t *testing.T, env *cliTestEnv, id string, started time.Time) {
	t.Helper()
	store := testsupport.MustOpenLedger(t, env.cfg)
	run := ledger.Run{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Status:     ledger.RunCompleted,
		CSVPath:    env.cfg.Publish.CSVPath,
		APIURL:     env.cfg.API.URL,
		Rows:       1,
		Created:    1,
		Failed:     1,
		Outcomes: []ledger.Outcome{
			{Line: 2, Upanishad: "kena", Chapter: 1, Sutra: 3, Kind: "sutra", Status: "created", StatusCode: 201},
			{Line: 2, Upanishad: "kena", Chapter: 1, Sutra: 3, Kind: "interpretation", Language: "ta", Philosophy: "dva", Status: "failed", StatusCode: 500, Detail: "boom"},
		},
	}
	if err := store.RecordRun(context.Background(), run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}
}

func TestHistoryListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "No runs recorded")

	seedRun(t, env, "0123456789abcdef", time.Now().Add(-time.Hour))
	stdout, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "01234567")
	requireContains(t, stdout, "completed")
}

func TestHistoryShowFiltersFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRun(t, env, "0123456789abcdef", time.Now().Add(-time.Hour))

	stdout, _, err := env.run(t, "history", "show", "0123")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, stdout, "0123456789abcdef")
	requireContains(t, stdout, "kena 1.3")
	requireContains(t, stdout, "interpretation Tamil/Dvaita")
	requireContains(t, stdout, "created")

	stdout, _, err = env.run(t, "history", "show", "0123", "--failed")
	if err != nil {
		t.Fatalf("history show --failed: %v", err)
	}
	requireContains(t, stdout, "boom")
	if got := strings.Count(stdout, "kena 1.3"); got != 1 {
		t.Fatalf("expected only the failed outcome, got %d rows in %q", got, stdout)
	}

	if _, _, err := env.run(t, "history", "show", "ffff"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestHistoryPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	seedRun(t, env, "old-run", time.Now().Add(-48*time.Hour))
	seedRun(t, env, "new-run", time.Now())

	stdout, _, err := env.run(t, "history", "prune", "--older-than", "24h")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, stdout, "Removed 1 run(s)")

	stdout, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "new-run")
	if strings.Contains(stdout, "old-run") {
		t.Fatalf("expected old run pruned, got %q", stdout)
	}
}

func TestHistoryRequiresLedger(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithLedgerDisabled())
	if _, _, err := env.run(t, "history"); err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled ledger error, got %v", err)
	}
}
