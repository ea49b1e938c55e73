//go:build integration

package update

import (
	"context"
	"testing"
)

// Integration tests against the public GitHub API.
// Run with: go test -tags=integration ./internal/update/...

const integrationRepo = "ishibashi-futos/oxide"

func TestFetchReleases_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, err := NewHTTPClient(HTTPOptions{})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}

	releases, err := NewReleaseClient(client, "").FetchReleases(context.Background(), integrationRepo)
	if err != nil {
		if KindOf(err) == KindAPIMessage {
			t.Skipf("GitHub refused the request: %v", err)
		}
		t.Fatalf("FetchReleases() error = %v", err)
	}
	t.Logf("%d releases", len(releases))

	for _, r := range releases {
		if r.Tag == "" {
			t.Error("release with empty tag")
		}
	}
}

func TestPlanLatest_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	plan, err := NewService().PlanLatest(context.Background(), Config{Repo: integrationRepo}, MapEnv{}, "0.0.1")
	if err != nil {
		switch KindOf(err) {
		case KindAPIMessage, KindNoValidRelease:
			t.Skipf("no plan available: %v", err)
		}
		t.Fatalf("PlanLatest() error = %v", err)
	}

	triple, _ := CurrentTargetTriple()
	t.Log(plan.Summary(triple))
}
