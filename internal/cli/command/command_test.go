package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/sessionlab-go/internal/core/service"
)

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	app := App()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"sessionlab"}, args...))
	return out.String(), err
}

func TestApp(t *testing.T) {
	app := App()
	if app.Name != "sessionlab" {
		t.Errorf("Name = %q", app.Name)
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"vulnerable", "hardened", "collector", "hash-password", "config", "captures", "health", "version"} {
		if !names[name] {
			t.Errorf("missing command %s", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"config", "log-level", "log-format", "output"} {
		if !flags[name] {
			t.Errorf("missing global flag %s", name)
		}
	}
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"argument", "", []string{"hash-password", "password123"}},
		{"stdin", "password123\n", []string{"hash-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			hash := strings.TrimSpace(out)
			ok, err := service.VerifyPassword("password123", hash)
			if err != nil || !ok {
				t.Errorf("printed hash %q does not verify: %v", hash, err)
			}
		})
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := run(t, "\n", "hash-password"); err == nil {
		t.Error("expected an error for an empty password")
	}
}

func TestConfigShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessionlab.yaml")
	yaml := "http:\n  addr: 127.0.0.1:6002\nauth:\n  users:\n    alice: password123\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SESSIONLAB_LOG__LEVEL", "debug")

	out, err := run(t, "", "--config", path, "--output", "json", "config", "show", "hardened")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got["http"]["addr"] != "127.0.0.1:6002" {
		t.Errorf("http.addr = %v, want the file value", got["http"]["addr"])
	}
	if got["log"]["level"] != "debug" {
		t.Errorf("log.level = %v, want the env value", got["log"]["level"])
	}
	if got["session"]["ttl"] != "30m0s" {
		t.Errorf("session.ttl = %v, want the default", got["session"]["ttl"])
	}
	users, _ := got["auth"]["users"].(map[string]any)
	if users["alice"] != "pa*******23" {
		t.Errorf("alice secret = %v, want it masked", users["alice"])
	}
}

func TestConfigShow_FlagsWin(t *testing.T) {
	t.Setenv("SESSIONLAB_LOG__LEVEL", "debug")

	out, err := run(t, "", "--log-level", "warn", "config", "show", "collector")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "log.level") || !strings.Contains(out, "warn") {
		t.Errorf("table output:\n%s", out)
	}
	if !strings.Contains(out, "collector.log_file") {
		t.Error("table should list collector keys")
	}
}

func TestConfigValidate(t *testing.T) {
	out, err := run(t, "", "config", "validate", "vulnerable")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "vulnerable configuration is valid") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "", "--log-level", "loud", "config", "validate", "vulnerable"); err == nil {
		t.Error("expected a validation error")
	}
	if _, err := run(t, "", "config", "validate", "admin"); err == nil {
		t.Error("expected an unknown app error")
	}
}

func TestCaptures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"OK","data":{"count":1,"captures":[
			{"id":"01j","value":"session_id=abc","remote_ip":"10.0.0.1","captured_at":"2026-10-19T10:00:00Z"}]}}`))
	}))
	defer server.Close()

	out, err := run(t, "", "captures", "--server", server.URL)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "VALUE") || !strings.Contains(out, "session_id=abc") || !strings.Contains(out, "10.0.0.1") {
		t.Errorf("output:\n%s", out)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"OK","data":{"status":"ok","app":"Collector","version":"dev"}}`))
	}))
	defer server.Close()

	out, err := run(t, "", "health", "--server", server.URL)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "Collector: ok (version dev)" {
		t.Errorf("output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "sessionlab dev") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, "", "-o", "yaml", "version")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "version: dev") {
		t.Errorf("yaml output = %q", out)
	}
}
