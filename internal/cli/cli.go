package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	commands "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/st3v3nmw/notifybarrier/internal/attest"
	"github.com/st3v3nmw/notifybarrier/internal/config"
	"github.com/st3v3nmw/notifybarrier/internal/registry"
	_ "github.com/st3v3nmw/notifybarrier/scenarios/sep"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// ErrFailed is returned by Run when a stage fails.
var ErrFailed = errors.New("scenario failed")

// loadConfig reads the harness file named by --config, or the default one,
// and applies command-line overrides.
func loadConfig(cmd *commands.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("dual-node") {
		cfg.DualNode = cmd.Bool("dual-node")
	}

	if cmd.IsSet("grace-period") {
		cfg.GracePeriod = config.Duration(cmd.Duration("grace-period"))
	}

	if cmd.IsSet("wait-timeout") {
		cfg.WaitTimeout = config.Duration(cmd.Duration("wait-timeout"))
	}

	return cfg, nil
}

func newLogger(cmd *commands.Command) (*zap.Logger, error) {
	if !cmd.Bool("verbose") {
		return zap.NewNop(), nil
	}

	return zap.NewDevelopment()
}

// suiteConfig turns the harness file into suite settings.
func suiteConfig(cfg *config.Config) *attest.Config {
	sc := &attest.Config{
		DualNode:           cfg.DualNode,
		DefaultWaitTimeout: config.ValueOf(cfg.WaitTimeout),
		GracePeriod:        config.ValueOf(cfg.GracePeriod),
		DeliveryDelay:      config.ValueOf(cfg.DeliveryDelay),
	}

	// An explicit zero disables the grace period.
	if cfg.GracePeriod != nil && *cfg.GracePeriod == 0 {
		sc.GracePeriod = -1
	}

	return sc
}

func RunScenario(ctx context.Context, cmd *commands.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	groupKey := cfg.Scenario
	stageKey := cfg.Stage

	args := cmd.Args().Slice()
	switch cmd.NArg() {
	case 0:
		// Use scenario and stage from config
	case 1:
		// notifybarrier run <group>
		groupKey = args[0]
		stageKey = ""
	case 2:
		// notifybarrier run <group> <stage>
		groupKey = args[0]
		stageKey = args[1]
	default:
		return fmt.Errorf("Too many arguments\nUsage: notifybarrier run [group] [stage]")
	}

	group, err := registry.GetGroup(groupKey)
	if err != nil {
		return fmt.Errorf("%w\nRun 'notifybarrier list' to see available groups.", err)
	}

	stageKeys := group.StageOrder
	if stageKey != "" {
		if _, err := group.GetStage(stageKey); err != nil {
			msg := "\nAvailable stages:\n"
			for _, stage := range group.StageOrder {
				msg += fmt.Sprintf("- %s\n", stage)
			}
			return fmt.Errorf("%w\n%s", err, msg)
		}

		stageKeys = []string{stageKey}
	}

	sc := suiteConfig(cfg)

	logger, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	failed := false
	for _, key := range stageKeys {
		stage, _ := group.GetStage(key)

		fmt.Printf("%s %s: %s\n", bold("Running"), key, stage.Name)

		suite := stage.Fn().WithConfig(sc).WithLogger(logger)
		if !suite.Run(ctx) {
			failed = true
			break
		}

		fmt.Println()
	}

	if failed {
		return ErrFailed
	}

	return nil
}

func ListGroups(ctx context.Context, cmd *commands.Command) error {
	fmt.Println("Available scenario groups:")
	fmt.Println()

	for _, key := range registry.GroupKeys() {
		group, _ := registry.GetGroup(key)
		fmt.Printf("  %-12s - %s (%d stages)\n", key, group.Name, group.Len())
	}

	fmt.Println()
	fmt.Println("Run one with: notifybarrier run <group> [stage]")

	return nil
}

func ShowInfo(ctx context.Context, cmd *commands.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("Group name is required\nUsage: notifybarrier info <group>")
	}

	group, err := registry.GetGroup(cmd.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(group.Describe())

	return nil
}

func InitConfig(ctx context.Context, cmd *commands.Command) error {
	path := config.DefaultPath
	if cmd.NArg() > 0 {
		path = cmd.Args().First()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.SaveTo(config.Default(), path); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", path)
	fmt.Printf("Edit it, then run %s.\n", yellow("notifybarrier run"))

	return nil
}
