package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/goplus/cmkinit/internal/bootstrap"
	"github.com/goplus/cmkinit/internal/config"
	"github.com/goplus/cmkinit/internal/generator"
	"github.com/goplus/cmkinit/pkgs/buildsys"
	"github.com/goplus/cmkinit/pkgs/color"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

// hostOS is the OS identity handed to the platform detector.
var hostOS = runtime.GOOS

var newRunner = func(dryRun bool, out io.Writer) buildsys.Runner {
	if dryRun {
		return buildsys.DryRunner{W: out}
	}
	return buildsys.ExecRunner{}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmkinit --[debug|release|both] -G <generator>",
		Short: "cmkinit configures and builds a CMake project",
		Long: color.Sprint("cmkinit generates the project files of a CMake project and builds\n"+
			"its debug and/or release configuration.", "magenta"),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBootstrap,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	flags := rootCmd.Flags()
	flags.Bool("release", false, color.Sprint("Used for a release build", "magenta"))
	flags.Bool("debug", false, color.Sprint("Used for a debug build", "magenta"))
	flags.Bool("both", false, color.Sprint("Used to build both a debug and release build", "magenta"))
	flags.StringP("generator", "G", "", generatorUsage())
	flags.StringP("source", "S", ".", "CMake source directory")
	flags.StringP("build-dir", "B", "build", "Build root, a per-platform directory is created below it")
	flags.IntP("parallel", "j", 0, "Parallel jobs for the native build tool (0: tool default)")
	flags.String("toolchain", "", "CMake toolchain file")
	flags.StringArrayP("define", "D", nil, "Extra cache entry KEY=VALUE (repeatable)")
	flags.Bool("check-version", false, "Check that cmake is recent enough for the generator")
	flags.Bool("dry-run", false, "Print the cmake commands instead of running them")
	flags.BoolP("verbose", "v", false, "Enable verbose diagnostics")
	flags.String("config", "", "Config file (default ./.cmkinit.yaml)")

	rootCmd.AddCommand(newGeneratorsCmd())
	return rootCmd
}

func generatorUsage() string {
	var sb strings.Builder
	sb.WriteString(color.Sprint("Used to set the project file generator, options are as follows:", "magenta"))
	for _, g := range generator.All() {
		sb.WriteString("\n\t")
		sb.WriteString(color.Sprint("-G "+g.Name+" ", "blue"))
		sb.WriteString(color.Sprint(g.Description, "cyan"))
	}
	return sb.String()
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	v, err := config.New(cmd.Flags())
	if err != nil {
		return err
	}
	config.SetLogLevel(v.GetBool("verbose"))
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}
	cfg := config.Load(v, cmd.Flags())
	config.SetLogLevel(cfg.Verbose)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts.GOOS = hostOS

	out := cmd.OutOrStdout()
	console := color.NewConsole(out)
	b := bootstrap.New(newRunner(cfg.DryRun, out), console)
	if err := b.Run(opts); err != nil {
		return err
	}

	console.Println("green", fmt.Sprintf(
		"CMakeLists.txt successfully read and compiled for %s, your CMake project should be good to go!",
		opts.BuildType.Describe()))
	console.Println("magenta", "done!")
	return nil
}

func execute(args []string, out io.Writer) error {
	rootCmd := newRootCmd(out)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil {
		console := color.NewConsole(out)
		console.Errorf("%v", err)
		if errors.Is(err, config.ErrNoBuildType) || errors.Is(err, config.ErrNoGenerator) {
			console.Warnf("usage: %s, use -h or --help if you're unfamiliar", rootCmd.Use)
		}
		console.Errorf("execution of full build process was unsuccessful")
	}
	return err
}

// Execute runs the root command with the process arguments and exits
// non-zero on failure. This is called by main.main().
func Execute() {
	if err := color.EnableVirtualTerminal(); err != nil {
		log.Debugf("enable virtual terminal: %v", err)
	}
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
