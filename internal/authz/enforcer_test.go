// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package authz

import (
	"os"
	"path/filepath"
	"testing"
)

// setupEnforcer creates an enforcer and fails the test on error.
func setupEnforcer(t *testing.T, config EnforcerConfig) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer(config)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return enforcer
}

// assertEnforce checks that enforcement returns expected result.
func assertEnforce(t *testing.T, enforcer *Enforcer, role, object, action string, want bool) {
	t.Helper()
	got, err := enforcer.Enforce(role, object, action)
	if err != nil {
		t.Fatalf("Enforce(%q, %q, %q) error = %v", role, object, action, err)
	}
	if got != want {
		t.Errorf("Enforce(%q, %q, %q) = %v, want %v", role, object, action, got, want)
	}
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	t.Parallel()
	enforcer := setupEnforcer(t, EnforcerConfig{AdminRole: "admin"})

	tests := []struct {
		name   string
		role   string
		object string
		action string
		want   bool
	}{
		{"admin generate", "admin", "/api/v1/admin/generate", "write", true},
		{"admin analytics", "admin", "/api/v1/admin/analytics", "read", true},
		{"user generate", "user", "/api/v1/admin/generate", "write", false},
		{"empty role", "", "/api/v1/admin/refresh", "write", false},
		{"admin outside admin tree", "admin", "/api/v1/profile", "read", false},
		{"prefix trick", "admin", "/api/v1/administrator", "read", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertEnforce(t, enforcer, tt.role, tt.object, tt.action, tt.want)
		})
	}
}

func TestEnforcer_CustomAdminRole(t *testing.T) {
	t.Parallel()
	enforcer := setupEnforcer(t, EnforcerConfig{AdminRole: "operator"})

	assertEnforce(t, enforcer, "operator", "/api/v1/admin/generate", "write", true)
	assertEnforce(t, enforcer, "admin", "/api/v1/admin/generate", "write", true)
	assertEnforce(t, enforcer, "user", "/api/v1/admin/generate", "write", false)
}

func TestEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, analyst, /api/v1/admin/analytics, read\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	enforcer := setupEnforcer(t, EnforcerConfig{PolicyPath: path, AdminRole: "admin"})

	assertEnforce(t, enforcer, "analyst", "/api/v1/admin/analytics", "read", true)
	assertEnforce(t, enforcer, "analyst", "/api/v1/admin/generate", "write", false)
	assertEnforce(t, enforcer, "admin", "/api/v1/admin/generate", "write", false)

	if got := len(enforcer.GetPolicy()); got != 1 {
		t.Errorf("GetPolicy() returned %d rules, want 1", got)
	}
}

func TestEnforcer_MissingPolicyFile(t *testing.T) {
	t.Parallel()
	if _, err := NewEnforcer(EnforcerConfig{PolicyPath: filepath.Join(t.TempDir(), "absent.csv")}); err == nil {
		t.Error("NewEnforcer() with missing policy file expected error")
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"GET":     "read",
		"HEAD":    "read",
		"OPTIONS": "read",
		"POST":    "write",
		"PUT":     "write",
		"PATCH":   "write",
		"DELETE":  "delete",
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
