package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/gonav/agent"
	"github.com/samuelfneumann/gonav/environment/arena"
	"github.com/samuelfneumann/gonav/environment/envconfig"
	"github.com/samuelfneumann/gonav/environment/stepper"
	"github.com/samuelfneumann/gonav/experiment"
	"github.com/samuelfneumann/gonav/experiment/tracker"
	"github.com/samuelfneumann/gonav/experiment/trackers"
	ts "github.com/samuelfneumann/gonav/timestep"
	"github.com/spf13/cobra"
)

// Policies selectable with the --policy flag
var policies = map[string]agent.Type{
	"random": agent.RandomType,
	"seeker": agent.GoalSeekerType,
}

type runOptions struct {
	config      string
	agentConfig string
	policy      string
	steps       uint
	seed        uint64
	cadence     time.Duration
	renderDir   string
	out         string
	progress    bool
	quiet       bool
}

func runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an online experiment on the arena simulator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return run(ctx, opts, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "Path to the "+
		"environment configuration (default $"+ConfigEnv+", or the "+
		"example configuration)")
	cmd.Flags().StringVar(&opts.agentConfig, "agent-config", "", "Path to "+
		"a typed agent configuration, overrides --policy")
	cmd.Flags().StringVar(&opts.policy, "policy", "seeker", "Policy to "+
		"run: random or seeker")
	cmd.Flags().UintVar(&opts.steps, "steps", 1000, "Number of control "+
		"cycles to run")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed of the arena and "+
		"the agent")
	cmd.Flags().DurationVar(&opts.cadence, "cadence", 0, "Fixed period of "+
		"the control loop, 0 runs as fast as possible")
	cmd.Flags().StringVar(&opts.renderDir, "render-dir", "", "Directory "+
		"to render the end of each episode to")
	cmd.Flags().StringVar(&opts.out, "out", ".", "Directory to save "+
		"tracked data to")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Display a "+
		"progress bar")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Do not log episodes")

	return cmd
}

func run(ctx context.Context, opts runOptions, logOut io.Writer) error {
	if opts.quiet {
		logOut = io.Discard
	}
	logger := log.New(logOut, "gonav: ", log.LstdFlags)

	envConf, err := loadEnvConfig(opts.config)
	if err != nil {
		return err
	}
	agentConf, err := loadAgentConfig(opts, envConf)
	if err != nil {
		return err
	}

	runID := uuid.New()
	logger.Printf("run %v: %v agent, seed %v", runID, agentConf.Type,
		opts.seed)

	for _, dir := range []string{opts.out, opts.renderDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "run")
		}
	}
	filename := func(name string) string {
		return filepath.Join(opts.out, fmt.Sprintf("%v_%v.bin", runID, name))
	}
	returns := trackers.NewReturn(filename("return"))
	lengths := trackers.NewEpisodeLength(filename("episode_length"))
	reasons := trackers.NewDoneReason(filename("done_reason"))

	c := experiment.Config{
		Type:      experiment.OnlineExp,
		MaxSteps:  opts.steps,
		Cadence:   opts.cadence,
		EnvConf:   envConf,
		AgentConf: agentConf,
	}
	exp, world, err := c.CreateExp(opts.seed,
		[]tracker.Tracker{returns, lengths, reasons}, logger)
	if err != nil {
		return err
	}
	if opts.renderDir != "" {
		exp.Register(newSnapshot(world, opts.renderDir, runID, logger))
	}
	if o, ok := exp.(*experiment.Online); ok && opts.progress {
		o.ShowProgress()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if err := exp.Close(); err != nil {
			logger.Printf("run %v: %v", runID, err)
		}
	}()
	if envConf.Mode() == stepper.RealTime {
		period := time.Duration(world.Config().TimeStep * float64(time.Second))
		go world.Run(ctx, period)
	}

	runErr := exp.Run(ctx)
	if err := exp.Save(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	logger.Printf("run %v: %v episodes, %v goals, %v collisions", runID,
		len(lengths.Data()), reasons.Count(ts.GoalReached),
		reasons.Count(ts.Collision))
	return nil
}

// loadEnvConfig loads the environment configuration at path, falling
// back to $GONAV_CONFIG and then to the example configuration
func loadEnvConfig(path string) (envconfig.Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		return envconfig.Example(), nil
	}
	return envconfig.Load(path)
}

// loadAgentConfig returns the agent configuration selected by opts.
// A goal seeker acting in a discrete action space without its own
// action table uses the table of the environment.
func loadAgentConfig(opts runOptions,
	envConf envconfig.Config) (agent.TypedConfig, error) {
	var agentConf agent.TypedConfig
	if opts.agentConfig != "" {
		data, err := os.ReadFile(opts.agentConfig)
		if err != nil {
			return agent.TypedConfig{}, errors.Wrap(err, "loadAgentConfig")
		}
		if err := json.Unmarshal(data, &agentConf); err != nil {
			return agent.TypedConfig{}, errors.Wrap(err, "loadAgentConfig")
		}
	} else {
		agentType, ok := policies[opts.policy]
		if !ok {
			return agent.TypedConfig{}, errors.Errorf("loadAgentConfig: "+
				"no such policy %q", opts.policy)
		}
		var err error
		if agentConf, err = agent.DefaultTypedConfig(agentType); err != nil {
			return agent.TypedConfig{}, err
		}
	}

	if seeker, ok := agentConf.Config.(agent.GoalSeekerConfig); ok &&
		!envConf.ActionSpace.Continuous && len(seeker.Table) == 0 {
		seeker.Table = envConf.ActionSpace.DiscreteActions
		agentConf = agent.NewTypedConfig(seeker)
	}
	return agentConf, nil
}

// snapshot renders the arena at the end of each episode
type snapshot struct {
	world  *arena.World
	dir    string
	runID  uuid.UUID
	logger *log.Logger
}

func newSnapshot(world *arena.World, dir string, runID uuid.UUID,
	logger *log.Logger) *snapshot {
	return &snapshot{world: world, dir: dir, runID: runID, logger: logger}
}

// Track renders the arena if t ends an episode
func (s *snapshot) Track(t ts.TimeStep) {
	if !t.Last() {
		return
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%v_episode_%04d.png",
		s.runID, t.Episode))
	if err := s.world.Render(path); err != nil {
		s.logger.Printf("render episode %v: %v", t.Episode, err)
	}
}

// Save is a no-op, renders are written as episodes end
func (s *snapshot) Save() error {
	return nil
}
