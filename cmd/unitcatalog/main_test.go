package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"unitcore/internal/core"
	"unitcore/pkg/measure"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv(core.EnvStorageDriver, "sqlite")
	t.Setenv(core.EnvSQLitePath, filepath.Join(t.TempDir(), "catalog.db"))
	t.Setenv("UNITCORE_BLOB_DRIVER", "fs")
	t.Setenv("UNITCORE_BLOB_FS_ROOT", t.TempDir())
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(append(args, "-quiet"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLINoActionPrintsUsage(t *testing.T) {
	setupEnv(t)
	code, _, stderr := runCLI(t)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr, "unitcatalog") {
		t.Fatalf("expected usage output, got %q", stderr)
	}
}

func TestCLISeedAndList(t *testing.T) {
	setupEnv(t)

	code, stdout, stderr := runCLI(t, "-seed")
	if code != 0 {
		t.Fatalf("seed failed: %d stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "seeded 3 units") {
		t.Fatalf("unexpected seed output %q", stdout)
	}

	code, stdout, stderr = runCLI(t, "-list")
	if code != 0 {
		t.Fatalf("list failed: %d stderr=%q", code, stderr)
	}
	var units []measure.DerivedUnit
	if err := json.Unmarshal([]byte(stdout), &units); err != nil {
		t.Fatalf("decode list output: %v", err)
	}
	if len(units) != 3 || units[0].Symbol != "kg" {
		t.Fatalf("unexpected listing %+v", units)
	}
}

func TestCLIResolve(t *testing.T) {
	setupEnv(t)
	if code, _, stderr := runCLI(t, "-seed"); code != 0 {
		t.Fatalf("seed failed: %q", stderr)
	}

	code, stdout, stderr := runCLI(t, "-resolve", "meter")
	if code != 0 {
		t.Fatalf("resolve failed: %d stderr=%q", code, stderr)
	}
	var unit measure.DerivedUnit
	if err := json.Unmarshal([]byte(stdout), &unit); err != nil {
		t.Fatalf("decode resolve output: %v", err)
	}
	if unit.Symbol != "m" || unit.Def != measure.Metre {
		t.Fatalf("unexpected unit %+v", unit)
	}

	code, _, stderr = runCLI(t, "-resolve", "furlong")
	if code != 1 {
		t.Fatalf("expected resolve failure, got %d", code)
	}
	if !strings.Contains(stderr, "not found in catalog") {
		t.Fatalf("unexpected error output %q", stderr)
	}
}

func TestCLIArchiveAndRestore(t *testing.T) {
	setupEnv(t)
	if code, _, stderr := runCLI(t, "-seed"); code != 0 {
		t.Fatalf("seed failed: %q", stderr)
	}

	code, stdout, stderr := runCLI(t, "-archive")
	if code != 0 {
		t.Fatalf("archive failed: %d stderr=%q", code, stderr)
	}
	if !strings.HasPrefix(stdout, "archived catalog/") {
		t.Fatalf("unexpected archive output %q", stdout)
	}
	key := strings.TrimSpace(strings.TrimPrefix(stdout, "archived "))

	// Restore into a fresh catalog database.
	t.Setenv(core.EnvSQLitePath, filepath.Join(t.TempDir(), "restored.db"))
	code, stdout, stderr = runCLI(t, "-restore", key)
	if code != 0 {
		t.Fatalf("restore failed: %d stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "restored 3 units") {
		t.Fatalf("unexpected restore output %q", stdout)
	}
}

func TestCLIUnknownStorageDriver(t *testing.T) {
	setupEnv(t)
	t.Setenv(core.EnvStorageDriver, "etcd")
	code, _, stderr := runCLI(t, "-list")
	if code != 1 {
		t.Fatalf("expected failure, got %d", code)
	}
	if !strings.Contains(stderr, "unsupported storage driver") {
		t.Fatalf("unexpected error output %q", stderr)
	}
}
