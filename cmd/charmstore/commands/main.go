// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"

	"github.com/juju/csclient/charmstore"
)

var logger = loggo.GetLogger("charmstore.cmd")

const traceFlushTimeout = 5 * time.Second

// storeCommand is embedded by every command that talks to the store.
type storeCommand struct {
	client  *charmstore.Client
	options *globalOptions
}

func (c *storeCommand) setStore(client *charmstore.Client, options *globalOptions) {
	c.client = client
	c.options = options
}

type clientCommand interface {
	Command
	setStore(*charmstore.Client, *globalOptions)
}

// globalOptions holds the flags accepted before the command name.
type globalOptions struct {
	configPath string
	url        string
	timeout    time.Duration
	modelUUID  string
	macaroon   string
	debug      bool
	file       fileConfig

	metricsFile   string
	traceEndpoint string
	traceInsecure bool
}

func (o *globalOptions) setFlags(f *gnuflag.FlagSet) {
	f.StringVar(&o.configPath, "config", "", "path to a YAML configuration file")
	f.StringVar(&o.url, "url", "", "charm store API URL")
	f.DurationVar(&o.timeout, "timeout", 0, "timeout of each request")
	f.StringVar(&o.modelUUID, "model-uuid", "", "model UUID sent as Juju metadata")
	f.StringVar(&o.macaroon, "macaroon", "", "encoded macaroon cookie sent with each request")
	f.BoolVar(&o.debug, "debug", false, "log requests to stderr")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write request metrics to this file on exit")
	f.StringVar(&o.traceEndpoint, "trace-endpoint", "", "OTLP gRPC endpoint receiving request spans")
	f.BoolVar(&o.traceInsecure, "trace-insecure", false, "connect to the trace endpoint without TLS")
}

// clientConfig merges the flags with the configuration file.
func (o *globalOptions) clientConfig() charmstore.Config {
	cfg := charmstore.Config{
		URL: o.url,
		Metadata: charmstore.JujuMetadata{
			ModelUUID: o.modelUUID,
		},
	}
	if cfg.URL == "" {
		cfg.URL = o.file.URL
	}
	if cfg.Metadata.ModelUUID == "" {
		cfg.Metadata.ModelUUID = o.file.ModelUUID
	}
	timeout := o.timeout
	if timeout == 0 {
		timeout = o.file.timeout()
	}
	if timeout != 0 {
		cfg.Transport = &http.Client{Timeout: timeout}
	}
	return cfg
}

func (o *globalOptions) macaroonCookie() string {
	if o.macaroon != "" {
		return o.macaroon
	}
	return o.file.Macaroon
}

// registry returns a fresh instance of every command, keyed by name.
func registry() map[string]Command {
	cmds := []Command{
		newSearchCommand(),
		newListCommand(),
		newInterfacesCommand(),
		newShowCommand(),
		newIDCommand(),
		newConfigCommand(),
		newFilesCommand(),
		newCatCommand(),
		newReadmeCommand(),
		newIconCommand(),
		newDiagramCommand(),
		newURLsCommand(),
		newDebugCommand(),
		newLoginCommand(),
	}
	registered := make(map[string]Command, len(cmds))
	for _, cmd := range cmds {
		registered[cmd.Info().Name] = cmd
	}
	return registered
}

func printCommands(w io.Writer, cmds map[string]Command) {
	fmt.Fprintln(w, "usage: charmstore [options] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "    %-12s %s\n", name, cmds[name].Info().Purpose)
	}
}

// Main runs the charmstore command line and returns its exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmds := registry()

	var options globalOptions
	f := gnuflag.NewFlagSet("charmstore", gnuflag.ContinueOnError)
	f.SetOutput(stderr)
	options.setFlags(f)
	if err := f.Parse(false, args); err != nil {
		if err == gnuflag.ErrHelp {
			printCommands(stdout, cmds)
			return 0
		}
		return 2
	}
	args = f.Args()
	if len(args) == 0 {
		printCommands(stderr, cmds)
		return 2
	}
	if args[0] == "help" {
		if len(args) > 1 && cmds[args[1]] != nil {
			printUsage(cmds[args[1]], stdout)
		} else {
			printCommands(stdout, cmds)
		}
		return 0
	}
	cmd, ok := cmds[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "ERROR unrecognized command: charmstore %s\n", args[0])
		return 2
	}

	if err := configureLogging(stderr, options.debug); err != nil {
		fmt.Fprintf(stderr, "ERROR %v\n", err)
		return 1
	}
	if err := parse(cmd, args[1:]); err != nil {
		if errors.Is(err, gnuflag.ErrHelp) {
			printUsage(cmd, stdout)
			return 0
		}
		fmt.Fprintf(stderr, "ERROR %v\n", err)
		return 2
	}
	if err := run(ctx, cmd, &options, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "ERROR %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cmd Command, options *globalOptions, stdout, stderr io.Writer) (err error) {
	if options.configPath != "" {
		file, err := readConfig(options.configPath)
		if err != nil {
			return errors.Trace(err)
		}
		options.file = file
	}
	if sc, ok := cmd.(clientCommand); ok {
		cfg := options.clientConfig()
		if err := cfg.Validate(); err != nil {
			return errors.Trace(err)
		}
		if options.metricsFile != "" {
			collector := charmstore.NewMetricsCollector()
			cfg.Recorder = collector
			defer func() {
				if merr := writeMetrics(options.metricsFile, collector); merr != nil && err == nil {
					err = merr
				}
			}()
		}
		if options.traceEndpoint != "" {
			tp, err := newTracerProvider(ctx, options.traceEndpoint, options.traceInsecure)
			if err != nil {
				return errors.Trace(err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), traceFlushTimeout)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					logger.Warningf("cannot flush spans: %v", err)
				}
			}()
			cfg.Tracer = tp.Tracer(serviceName)
		}
		client, err := charmstore.NewClient(cfg)
		if err != nil {
			return errors.Trace(err)
		}
		if cookie := options.macaroonCookie(); cookie != "" {
			client.SetMacaroonCookie(cookie)
		}
		logger.Debugf("using charm store at %s", client.URL())
		sc.setStore(client, options)
	}
	return cmd.Run(&Context{
		Context: ctx,
		Stdout:  stdout,
		Stderr:  stderr,
	})
}

// configureLogging sends log output to stderr, at debug level when
// requested.
func configureLogging(stderr io.Writer, debug bool) error {
	writer := loggo.NewSimpleWriter(stderr, loggo.DefaultFormatter)
	if _, err := loggo.ReplaceDefaultWriter(writer); err != nil {
		if err := loggo.RegisterWriter(loggo.DefaultWriterName, writer); err != nil {
			return errors.Trace(err)
		}
	}
	if debug {
		return errors.Trace(loggo.ConfigureLoggers("<root>=DEBUG"))
	}
	return nil
}
