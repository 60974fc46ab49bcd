package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/jrsteele09/go-session-client/internal/config"
)

const usage = `Usage: sessionctl [flags] <command> [args]

Commands:
  login-url             print the identity provider login URL
  login --code CODE     exchange an authorization code and save the session
  restore               load the saved session and validate it with a refresh
  refresh               refresh the saved session
  logout                clear the saved session
  whoami                show the saved session without contacting the backend
  route [ROLE...]       print the destination for the given or saved roles

Flags:
`

type options struct {
	configPath  string
	code        string
	redirectURI string
	quiet       bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sessionctl: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	var opts options
	flags := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file; environment variables take precedence")
	flags.StringVar(&opts.code, "code", "", "authorization code for login")
	flags.StringVar(&opts.redirectURI, "redirect-uri", "", "redirect URI the code was issued for (default REDIRECT_URI)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the banner")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("missing command")
	}

	c, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	configureLogging(c)
	if !opts.quiet {
		displayAppname(c.GetAppName())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &commands{cfg: c, opts: opts, out: os.Stdout}
	return cmd.dispatch(ctx, flags.Arg(0), flags.Args()[1:])
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.Load(path)
}

func configureLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}
