package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/packforge/packd/internal"
	"github.com/packforge/packd/internal/client"
)

// Represents the root command for the packd daemon and CLI.
var RootCmd struct {
	Quiet     bool         `short:"q" help:"Suppress informational output."`
	Verbose   bool         `short:"v" help:"Enable verbose output."`
	Debug     bool         `short:"d" help:"Enable debug output."`
	Socket    string       `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`
	Start     StartCmd     `cmd:"" help:"Start the daemon."`
	Stop      StopCmd      `cmd:"" help:"Stop a running daemon."`
	Status    StatusCmd    `cmd:"" help:"Show daemon status."`
	Build     BuildCmd     `cmd:"" help:"Build a recipe into an OCI archive."`
	Tag       TagCmd       `cmd:"" help:"Manage the tag registry."`
	Image     ImageCmd     `cmd:"" help:"Manage imported images."`
	Container ContainerCmd `cmd:"" help:"Manage build containers."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("The packd container packaging daemon.\n\nBuilds declarative recipes into OCI archives and tracks them in a local tag registry."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Reconfigures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		AddSource:  verbose,
		NoColor:    !isatty(os.Stderr),
	})

	slog.SetDefault(slog.New(handler))
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Returns a daemon client honoring the socket override flag.
func newClient() *client.Client {
	return client.New(RootCmd.Socket)
}
