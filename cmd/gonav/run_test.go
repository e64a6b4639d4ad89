package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samuelfneumann/gonav/agent"
	"github.com/samuelfneumann/gonav/environment/envconfig"
	"github.com/samuelfneumann/gonav/experiment/tracker"
)

func writeConfig(t *testing.T, c envconfig.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env.json")
	if err := c.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestConfigCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var c envconfig.Config
	if err := json.Unmarshal(out.Bytes(), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := c.WithDefaults().Validate(); err != nil {
		t.Errorf("config: printed configuration is invalid: %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	c := envconfig.Example()
	c.LaserBeams = 16
	c.MaxSteps = 20

	out := t.TempDir()
	renders := t.TempDir()
	var logs bytes.Buffer

	cmd := rootCommand()
	cmd.SetErr(&logs)
	cmd.SetArgs([]string{"run", "--config", writeConfig(t, c),
		"--steps", "60", "--seed", "3", "--out", out,
		"--render-dir", renders, "--progress"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	lengths, err := filepath.Glob(filepath.Join(out, "*_episode_length.bin"))
	if err != nil || len(lengths) != 1 {
		t.Fatalf("run: expected one episode length file, got %v", lengths)
	}
	data, err := tracker.LoadData(lengths[0])
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("run: expected at least one finished episode")
	}

	pngs, _ := filepath.Glob(filepath.Join(renders, "*.png"))
	if len(pngs) != len(data) {
		t.Errorf("run: expected %v renders, got %v", len(data), len(pngs))
	}
	if !strings.Contains(logs.String(), "episode 1:") {
		t.Errorf("run: expected episode logs, got %q", logs.String())
	}
}

func TestRunUnknownPolicy(t *testing.T) {
	cmd := rootCommand()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--policy", "dqn", "--out", t.TempDir()})
	if err := cmd.Execute(); err == nil {
		t.Error("execute: expected an error for an unknown policy")
	}
}

func TestSeekerUsesEnvironmentTable(t *testing.T) {
	c := envconfig.Example()
	c.ActionSpace.Continuous = false

	agentConf, err := loadAgentConfig(runOptions{policy: "seeker"}, c)
	if err != nil {
		t.Fatalf("loadAgentConfig: %v", err)
	}
	seeker, ok := agentConf.Config.(agent.GoalSeekerConfig)
	if !ok || len(seeker.Table) != len(c.ActionSpace.DiscreteActions) {
		t.Errorf("loadAgentConfig: expected the environment's action "+
			"table, got %+v", agentConf.Config)
	}
}
