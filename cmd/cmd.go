// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// connectCommand starts the browser authorization flow for a platform.
func connectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "Connect a social media account via browser authorization",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "platform",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening a browser",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Connect,
	}
}

// disconnectCommand removes a platform connection.
func disconnectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "disconnect",
		Usage: "Disconnect a social media account",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "platform",
			},
		},
		Flags:  []cli.Flag{configFlag()},
		Action: r.Disconnect,
	}
}

// statusCommand reports connection state for one or all platforms.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show connection status",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "platform",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Read from the local cache instead of the backend",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Status,
	}
}

// testCommand runs a connection health check.
func testCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Test a platform connection",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "platform",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Test,
	}
}

// wizardCommand launches the interactive connection wizard.
func wizardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wizard",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive connection wizard",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.Wizard,
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
