package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// executeCommand runs the root command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestStartCommand_Success(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if r.URL.Path != "/jobs/start" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("expected Bearer token, got: %s", r.Header.Get("Authorization"))
		}

		var reqBody map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if reqBody["user_id"] != "user-1" {
			t.Errorf("expected user_id=user-1, got %v", reqBody["user_id"])
		}
		if reqBody["job_type"] != "invoice" {
			t.Errorf("expected job_type=invoice, got %v", reqBody["job_type"])
		}

		next := time.Now().Add(4 * time.Hour).UTC()
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"job_id":   "job-123",
			"schedule": "every 4 hours",
			"next_run": next,
		})
	}))
	defer server.Close()

	viper.Set("api_url", server.URL)
	viper.Set("token", "test-token")

	output, err := executeCommand("start", "--user", "user-1", "--tenant", "tenant-1", "--type", "invoice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "Job started") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "job-123") {
		t.Errorf("expected job ID in output, got: %s", output)
	}
	if !strings.Contains(output, "every 4 hours") {
		t.Errorf("expected schedule in output, got: %s", output)
	}
}

func TestStartCommand_AlreadyRunning(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"job_id":          "job-123",
			"already_running": true,
			"schedule":        "every 4 hours",
		})
	}))
	defer server.Close()

	viper.Set("api_url", server.URL)
	viper.Set("token", "test-token")

	output, err := executeCommand("start", "--user", "user-1", "--tenant", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "already running") {
		t.Errorf("expected already-running message, got: %s", output)
	}
}

func TestStartCommand_APIError(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "User not found"})
	}))
	defer server.Close()

	viper.Set("api_url", server.URL)
	viper.Set("token", "test-token")

	output, err := executeCommand("start", "--user", "missing", "--tenant", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "Failed to start job") {
		t.Errorf("expected failure message, got: %s", output)
	}
	if !strings.Contains(output, "404") {
		t.Errorf("expected status code in output, got: %s", output)
	}
}

func TestStartCommand_MissingToken(t *testing.T) {
	resetViper()

	output, err := executeCommand("start", "--user", "user-1", "--tenant", "tenant-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "API token not found") {
		t.Errorf("expected token warning, got: %s", output)
	}
}
