package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"sutrasync/internal/config"
	"sutrasync/internal/contentapi"
	"sutrasync/internal/ledger"
	"sutrasync/internal/publish"
	"sutrasync/internal/runlock"
	"sutrasync/internal/testsupport"
)

var publishRecords = [][]string{
	{"name", "chapter", "sutra_no", "sutra", "transliteration_en", "meaning_en", "bhashyam_sa_adv", "tellmemore_en_adv"},
	{"isha", "0", "1", "isha text", "translit", "meaning", "bhashyam", "interpretation"},
	{"kena", "1", "2", "kena text", "translit", "meaning", "", "interpretation"},
}

func TestPublishCommandRecordsRun(t *testing.T) {
	api := testsupport.NewFakeAPI(t, testsupport.WithExistingProjects("isha"))
	env := setupCLITestEnv(t,
		testsupport.WithAPIURL(api.URL),
		testsupport.WithProjects(config.Project{Name: "isha", Description: "Isha"}, config.Project{Name: "kena", Description: "Kena"}),
		testsupport.WithCSV(publishRecords),
	)
	testsupport.WriteAudio(t, env.cfg.Paths.AudioDir, "isha", 0, 1, contentapi.ModeChant, false)

	stdout, _, err := env.run(t, "publish")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, stdout, string(ledger.RunCompleted))
	requireContains(t, stdout, "Projects: 1 existing, 1 created, 0 failed")

	if got := api.Count(http.MethodPost, "/sutras"); got != 2 {
		t.Fatalf("expected 2 sutra creates, got %d", got)
	}
	if got := api.Count(http.MethodPost, "/audio"); got != 1 {
		t.Fatalf("expected 1 audio upload, got %d", got)
	}

	store := testsupport.MustOpenLedger(t, env.cfg)
	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.RunCompleted || runs[0].Rows != 2 {
		t.Fatalf("unexpected ledger runs %+v", runs)
	}
	requireContains(t, stdout, runs[0].ID)
}

func TestPublishCommandReportsFieldFailures(t *testing.T) {
	api := testsupport.NewFakeAPI(t, testsupport.WithStatusFunc(func(method, path string) int {
		if strings.HasSuffix(path, "/meaning") {
			return http.StatusUnprocessableEntity
		}
		return 0
	}))
	env := setupCLITestEnv(t, testsupport.WithAPIURL(api.URL), testsupport.WithCSV(publishRecords))

	stdout, _, err := env.run(t, "publish", "--no-ledger")
	if err != nil {
		t.Fatalf("field failures must not fail the run: %v", err)
	}
	requireContains(t, stdout, "meaning English")
	requireContains(t, stdout, "422")
	requireContains(t, stdout, "isha 0.1")

	runs, err := testsupport.MustOpenLedger(t, env.cfg).ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected --no-ledger to skip recording, got %d runs", len(runs))
	}
}

func TestPublishCommandFailsOnAuthentication(t *testing.T) {
	api := testsupport.NewFakeAPI(t,
		testsupport.WithLoginStatuses(http.StatusUnauthorized),
		testsupport.WithCreateAdminStatus(http.StatusBadRequest),
	)
	env := setupCLITestEnv(t, testsupport.WithAPIURL(api.URL), testsupport.WithCSV(publishRecords))

	stdout, _, err := env.run(t, "publish")
	if !errors.Is(err, publish.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
	requireContains(t, stdout, string(ledger.RunAuthFailed))
	if got := api.Count(http.MethodPost, "/sutras"); got != 0 {
		t.Fatalf("expected no rows processed, got %d sutra creates", got)
	}
}

func TestPublishCommandFailsOnMissingCSV(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	env := setupCLITestEnv(t, testsupport.WithAPIURL(api.URL))

	if _, _, err := env.run(t, "publish", "--csv", "does-not-exist.csv"); err == nil {
		t.Fatal("expected missing CSV to fail the run")
	}
}

func TestPublishCommandFailsWhenLocked(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	env := setupCLITestEnv(t, testsupport.WithAPIURL(api.URL), testsupport.WithCSV(publishRecords))

	lock, err := runlock.Acquire(env.cfg.LockPath("publish"))
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	_, _, err = env.run(t, "publish")
	if !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if len(api.Requests()) != 0 {
		t.Fatalf("expected no API traffic while locked, got %d requests", len(api.Requests()))
	}
}
