// Package config merges command-line flags, CMKINIT_* environment variables
// and an optional .cmkinit.yaml file into bootstrap options.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/goplus/cmkinit/internal/bootstrap"
	"github.com/qiniu/x/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Usage errors.
var (
	ErrNoBuildType = errors.New("no build type given, use --debug, --release or --both")
	ErrNoGenerator = errors.New("no generator given, use -G <generator>")
	ErrBadDefine   = errors.New("definition must have the form KEY=VALUE")
)

const (
	// FileName is the config file looked up in the working directory.
	FileName  = ".cmkinit"
	envPrefix = "CMKINIT"
)

// Config holds the merged settings of one invocation.
type Config struct {
	Debug        bool
	Release      bool
	Both         bool
	Generator    string
	Source       string
	BuildDir     string
	Toolchain    string
	Parallel     int
	Define       []string
	CheckVersion bool
	DryRun       bool
	Verbose      bool
}

// New returns a viper instance reading CMKINIT_* variables and bound to the
// flags of fs. Dashes in flag names map to underscores in variable names.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err == nil {
			err = v.BindPFlag(f.Name, f)
		}
	})
	return v, err
}

// ReadFile reads file, or ./.cmkinit.{yaml,json,toml} when file is empty.
// A missing default file is not an error.
func ReadFile(v *viper.Viper, file string) error {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	log.Debugf("config: using %s", v.ConfigFileUsed())
	return nil
}

// Load extracts the settings from v. fs is the flag set v is bound to.
//
// The build type keys are resolved as one setting: the first layer (flags,
// then environment, then config file) that sets any of debug, release or
// both decides all three.
func Load(v *viper.Viper, fs *pflag.FlagSet) *Config {
	c := &Config{
		Generator:    v.GetString("generator"),
		Source:       v.GetString("source"),
		BuildDir:     v.GetString("build-dir"),
		Toolchain:    v.GetString("toolchain"),
		Parallel:     v.GetInt("parallel"),
		Define:       v.GetStringSlice("define"),
		CheckVersion: v.GetBool("check-version"),
		DryRun:       v.GetBool("dry-run"),
		Verbose:      v.GetBool("verbose"),
	}
	c.Debug, c.Release, c.Both = loadBuildType(v, fs)

	// viper splits an environment list on blanks only
	if s, ok := lookupEnv("define"); ok && !fs.Changed("define") {
		c.Define = strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}
	return c
}

var buildTypeKeys = [...]string{"debug", "release", "both"}

func loadBuildType(v *viper.Viper, fs *pflag.FlagSet) (debug, release, both bool) {
	var set [len(buildTypeKeys)]bool
	for _, key := range buildTypeKeys {
		if fs.Changed(key) {
			for i, k := range buildTypeKeys {
				set[i], _ = fs.GetBool(k)
			}
			return set[0], set[1], set[2]
		}
	}
	fromEnv := false
	for _, key := range buildTypeKeys {
		if _, ok := lookupEnv(key); ok {
			fromEnv = true
		}
	}
	for i, k := range buildTypeKeys {
		if _, ok := lookupEnv(k); ok || !fromEnv {
			set[i] = v.GetBool(k)
		}
	}
	return set[0], set[1], set[2]
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
}

// BuildType returns the selected build type. When several are given debug
// wins over release, and release over both.
func (c *Config) BuildType() (bootstrap.BuildType, error) {
	var selected []bootstrap.BuildType
	if c.Debug {
		selected = append(selected, bootstrap.Debug)
	}
	if c.Release {
		selected = append(selected, bootstrap.Release)
	}
	if c.Both {
		selected = append(selected, bootstrap.Both)
	}
	if len(selected) == 0 {
		return "", ErrNoBuildType
	}
	if len(selected) > 1 {
		log.Warnf("config: several build types given %v, using %s", selected, selected[0])
	}
	return selected[0], nil
}

// Options validates c and converts it to bootstrap options. The build type
// is checked before the generator.
func (c *Config) Options() (bootstrap.Options, error) {
	bt, err := c.BuildType()
	if err != nil {
		return bootstrap.Options{}, err
	}
	gen := strings.ToLower(strings.TrimSpace(c.Generator))
	if gen == "" {
		return bootstrap.Options{}, ErrNoGenerator
	}
	defines, err := parseDefines(c.Define)
	if err != nil {
		return bootstrap.Options{}, err
	}
	source := c.Source
	if source == "" {
		source = "."
	}
	buildDir := c.BuildDir
	if buildDir == "" {
		buildDir = "build"
	}
	return bootstrap.Options{
		Source:       source,
		BuildRoot:    buildDir,
		Generator:    gen,
		BuildType:    bt,
		Toolchain:    c.Toolchain,
		Parallel:     c.Parallel,
		Defines:      defines,
		CheckVersion: c.CheckVersion && !c.DryRun,
	}, nil
}

func parseDefines(defs []string) (map[string]string, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(defs))
	for _, d := range defs {
		k, v, ok := strings.Cut(d, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadDefine, d)
		}
		m[k] = v
	}
	return m, nil
}

// SetLogLevel switches the diagnostic logger to debug output when verbose
// is set.
func SetLogLevel(verbose bool) {
	if verbose {
		log.SetOutputLevel(log.Ldebug)
		return
	}
	log.SetOutputLevel(log.Linfo)
}
