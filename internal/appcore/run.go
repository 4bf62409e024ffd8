// internal/appcore/run.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"mutfreq/internal/cli"
	"mutfreq/internal/cmdutil"
	"mutfreq/internal/metrics"
	"mutfreq/internal/version"
	"mutfreq/internal/writers"
)

// Run parses argv for mode and executes the matching stages. It returns the
// process exit status.
func Run(parent context.Context, name string, mode cli.Mode, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet(name, mode)
	fs.SetOutput(io.Discard)

	usage := func(code int) int {
		fs.SetOutput(outw)
		fs.Usage()
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return cmdutil.ExitOK
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return cmdutil.ExitRuntime
		}
		return code
	}

	if len(argv) == 0 {
		return usage(cmdutil.ExitOK)
	}

	opts, err := cli.ParseArgs(fs, mode, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return usage(cmdutil.ExitOK)
		}
		_, _ = fmt.Fprintln(stderr, err)
		return usage(cmdutil.ExitUsage)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "%s version %s\n", name, version.Version)
		if e := outw.Flush(); writers.IsBrokenPipe(e) {
			return cmdutil.ExitOK
		} else if e != nil {
			_, _ = fmt.Fprintln(stderr, e)
			return cmdutil.ExitRuntime
		}
		return cmdutil.ExitOK
	}

	env := Env{Log: cmdutil.NewLogger(stderr, opts.Quiet), Metrics: metrics.New()}
	if err := execute(parent, mode, opts, env); err != nil {
		code := cmdutil.ExitCode(err)
		if code == cmdutil.ExitCanceled {
			env.Log.Warn("canceled")
		} else {
			env.Log.Error(err)
		}
		return code
	}
	return cmdutil.ExitOK
}

func execute(ctx context.Context, mode cli.Mode, o cli.Options, env Env) error {
	defer PushMetrics(o, env)

	switch mode {
	case cli.ModeTrends:
		events, roster, err := LoadCatalog(o, env)
		if err != nil {
			return err
		}
		_, err = Trends(ctx, o, env, events, roster)
		return err
	default:
		in, err := LoadInputs(ctx, o, env)
		if err != nil {
			return err
		}
		tab, roster, err := Call(ctx, o, env, in)
		if err != nil {
			return err
		}
		if mode == cli.ModeCall {
			return nil
		}
		_, err = Trends(ctx, o, env, tab.Events, roster)
		return err
	}
}
