package main

import (
	"testing"

	"mediato115/internal/preflight"
)

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Plugin enabled: yes")
	requireContains(t, out, "✓ Allowed path 1: "+env.mediaRoot)
	requireContains(t, out, "✓ Media index (sqlite)")
	requireContains(t, out, "Transfers: pending=0")
}

func TestDoctorFailsOnEmptyAllowList(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Plugin.AllowedPaths = ""
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "✗ Allowed paths")
}

func TestFormatCheck(t *testing.T) {
	got := formatCheck(preflight.Result{Name: "State directory", Passed: true, Detail: "ok"}, false)
	if got != "✓ State directory: ok" {
		t.Fatalf("unexpected line %q", got)
	}
	got = formatCheck(preflight.Result{Name: "Index", Detail: "down"}, true)
	requireContains(t, got, ansiRed)
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
