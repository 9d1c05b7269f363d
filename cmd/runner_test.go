package main

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/soconhq/socon/internal/shared"
	tu "github.com/soconhq/socon/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			backend := &tu.MockBackend{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Backend:    backend,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.backend != backend {
				t.Error("expected backend to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("builds store and controller when not provided", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Backend: &tu.MockBackend{}})

			if runner.store == nil {
				t.Error("expected a store to be built")
			}
			if runner.controller == nil {
				t.Error("expected a controller to be built")
			}
		})
	})

	t.Run("register returns all commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Backend: &tu.MockBackend{}})
		commands := runner.register()

		want := []string{"connect", "disconnect", "status", "test", "wizard", "setup"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %q at position %d, got %q", name, i, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Backend: &tu.MockBackend{}, Output: output})

		if err := runner.writeJSON(map[string]string{"platform": "twitter"}, false); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if got := output.String(); got != "{\"platform\":\"twitter\"}\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("writePlain formats to output", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Backend: &tu.MockBackend{}, Output: output})

		if err := runner.writePlain("connected %s\n", "twitter"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if !strings.Contains(output.String(), "connected twitter") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("write failures surface errors", func(t *testing.T) {
		failing := tu.NewLimitedWriter(0, 0, &bytes.Buffer{})
		runner := NewRunner(RunnerOpts{Backend: &tu.MockBackend{}, Output: &failing})

		if err := runner.writePlain("anything"); err == nil {
			t.Error("expected an error from a failing writer")
		}
	})
}
