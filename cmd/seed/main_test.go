package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-curriculum/internal/platform/auth"
)

const validDocument = `{
  "name": "Mathematics",
  "slug": "mathematics",
  "description": "Numbers",
  "chapters": [{
    "name": "Algebra",
    "slug": "algebra",
    "description": "Letters",
    "sections": [{
      "name": "Variables",
      "slug": "variables",
      "lessons": [{"title": "Intro", "slug": "intro", "content": "x", "contentType": "text", "estimatedMinutes": 5}]
    }]
  }]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LEARN_LOG_LEVEL", "error")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestToken(t *testing.T) {
	t.Setenv("LEARN_AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("LEARN_AUTH_ISSUER", "pai-curriculum")

	out, err := run(t, "token", "ops@example.com")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}

	claims, err := auth.Parse("cli-secret", "pai-curriculum", strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "ops@example.com" || claims.Role != auth.RoleOperator {
		t.Errorf("claims = %+v", claims)
	}
}

func TestToken_NoSecret(t *testing.T) {
	t.Setenv("LEARN_AUTH_JWT_SECRET", "")

	if _, err := run(t, "token", "ops"); err == nil {
		t.Fatal("token should fail without LEARN_AUTH_JWT_SECRET")
	}
}

func TestSync_DryRun(t *testing.T) {
	path := writeFile(t, "mathematics.json", validDocument)

	out, err := run(t, "sync", "--dry-run", path)
	if err != nil {
		t.Fatalf("sync --dry-run error = %v", err)
	}
	if !strings.Contains(out, "mathematics is valid") {
		t.Errorf("output = %q", out)
	}
}

func TestSync_DryRunInvalid(t *testing.T) {
	path := writeFile(t, "broken.json", `{"name": "Mathematics"}`)

	if _, err := run(t, "sync", "--dry-run", path); err == nil {
		t.Fatal("sync --dry-run should fail for an invalid document")
	}
}

func TestTeardown_RequiresConfirm(t *testing.T) {
	_, err := run(t, "teardown")
	if err == nil || !strings.Contains(err.Error(), "--confirm") {
		t.Fatalf("teardown error = %v, want --confirm hint", err)
	}
}
