// Command pipelinectl provisions the docflow pipeline: the unit functions, the
// workflow state machine, and the upload bucket notification.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/JaimeStill/docflow/internal/config"
	"github.com/JaimeStill/docflow/internal/infrastructure"
	"github.com/JaimeStill/docflow/internal/provision"
	"github.com/JaimeStill/docflow/internal/workflow"
	"github.com/JaimeStill/docflow/pkg/cloud"
)

const sessionKey = "session"

type session struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pipelinectl",
		Usage: "Provision the docflow document pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override the configured logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "deploy",
				Usage:  "Deploy functions, state machine, and bucket notification",
				Action: deployCommand,
			},
			{
				Name:   "functions",
				Usage:  "Create or update the unit functions from the bootstrap artifact",
				Action: functionsCommand,
			},
			{
				Name:   "state-machine",
				Usage:  "Bind the workflow to the deployed functions and deploy it",
				Action: stateMachineCommand,
			},
			{
				Name:   "connect-bucket",
				Usage:  "Route object-created notifications to the trigger function",
				Action: connectBucketCommand,
			},
			{
				Name:   "definition",
				Usage:  "Print the workflow definition bound to the configured function names",
				Action: definitionCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Definition file to render instead of the configured one",
					},
					&cli.BoolFlag{
						Name:  "unbound",
						Usage: "Print the definition with placeholders left in place",
					},
				},
			},
		},
	}
}

func setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if lvl := strings.ToLower(c.String("log-level")); lvl != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", lvl)
		}
		cfg.Logging.Level = lvl
	}

	c.App.Metadata = map[string]any{
		sessionKey: &session{
			cfg:    cfg,
			logger: infrastructure.NewLogger(&cfg.Logging, c.App.ErrWriter).With("system", "pipelinectl"),
		},
	}
	return nil
}

func sessionFrom(c *cli.Context) *session {
	return c.App.Metadata[sessionKey].(*session)
}

// provisioner resolves the deployment plan and an AWS-backed provisioner,
// failing early when credentials cannot be resolved.
func (s *session) provisioner(c *cli.Context) (*provision.Provisioner, *provision.Plan, error) {
	plan, err := provision.NewPlan(s.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("plan: %w", err)
	}

	awsCfg, err := cloud.Load(c.Context, &s.cfg.AWS)
	if err != nil {
		return nil, nil, err
	}
	if err := cloud.CheckCredentials(c.Context, awsCfg); err != nil {
		return nil, nil, err
	}

	p := provision.New(provision.NewClients(awsCfg), s.logger)
	return p, plan, nil
}

func deployCommand(c *cli.Context) error {
	s := sessionFrom(c)

	p, plan, err := s.provisioner(c)
	if err != nil {
		return err
	}

	result, err := p.Deploy(c.Context, plan)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, result)
}

func functionsCommand(c *cli.Context) error {
	s := sessionFrom(c)

	p, plan, err := s.provisioner(c)
	if err != nil {
		return err
	}

	arns, err := p.DeployFunctions(c.Context, plan)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, arns)
}

func stateMachineCommand(c *cli.Context) error {
	s := sessionFrom(c)

	p, plan, err := s.provisioner(c)
	if err != nil {
		return err
	}

	arn, err := p.DeployWorkflow(c.Context, plan)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, map[string]string{"state_machine_arn": arn})
}

func connectBucketCommand(c *cli.Context) error {
	s := sessionFrom(c)

	p, plan, err := s.provisioner(c)
	if err != nil {
		return err
	}

	if err := p.Connect(c.Context, plan); err != nil {
		return err
	}
	return writeJSON(c.App.Writer, map[string]string{"bucket": plan.Bucket})
}

func definitionCommand(c *cli.Context) error {
	s := sessionFrom(c)

	if file := c.String("file"); file != "" {
		s.cfg.Deploy.Definition = file
	}

	var (
		def *workflow.Definition
		err error
	)
	if c.Bool("unbound") {
		def, err = provision.LoadDefinition(s.cfg)
		if err == nil {
			err = def.Validate()
		}
	} else {
		def, err = provision.RenderDefinition(s.cfg)
	}
	if err != nil {
		return err
	}

	data, err := def.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
