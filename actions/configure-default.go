package actions

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/helper"
)

// DefaultAddConfig saves a flag default, e.g. key "scd-type" with value "Type 2".
type DefaultAddConfig struct {
	ConfigFile DefaultsStore `errorTxt:"config-file" mandatory:"yes"`
	Key        string        `errorTxt:"key" mandatory:"yes"`
	Value      string        `errorTxt:"value" mandatory:"yes"`
	Force      bool
	KnownKeys  []string // flag names a default can apply to; empty accepts any key
	Out        io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile DefaultsStore `errorTxt:"config-file" mandatory:"yes"`
	Key        string        `errorTxt:"key" mandatory:"yes"`
	Out        io.Writer
}

func stdoutIfNil(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// RunDefaultAdd saves a default for one of the generate or serve flags.
// An existing default is only replaced when cfg.Force is set.
// Keys that match no flag are refused since they would never take effect.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if len(cfg.KnownKeys) > 0 && !isKnownKey(cfg.KnownKeys, cfg.Key) {
		return fmt.Errorf("%q is not a flag name, expected one of: %v", cfg.Key, strings.Join(cfg.KnownKeys, ", "))
	}
	var existing string
	err := cfg.ConfigFile.Get(cfg.Key, &existing)
	switch {
	case err == nil && !cfg.Force:
		return fmt.Errorf("a default for %q is already saved as %q, use force to replace it", cfg.Key, existing)
	case err != nil && !isMissing(err):
		return err
	}
	if err := cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return errors.Wrapf(err, "unable to save default for %q", cfg.Key)
	}
	fmt.Fprintf(stdoutIfNil(cfg.Out), "Default %q set to %q\n", cfg.Key, cfg.Value)
	return nil
}

// RunDefaultRemove forgets a saved default so the flag's built-in value applies again.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return errors.Wrapf(err, "unable to remove default %q", cfg.Key)
	}
	fmt.Fprintf(stdoutIfNil(cfg.Out), "Default %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints every saved default sorted by flag name.
// Nothing is printed before the first default is saved.
func RunDefaultList(f DefaultsStore, out io.Writer) error {
	keys, err := f.GetAllKeys()
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return err
	}
	sort.Strings(keys)
	for _, k := range keys {
		var v string
		if err := f.Get(k, &v); err != nil {
			return errors.Wrapf(err, "unable to read default %q", k)
		}
		fmt.Fprintf(stdoutIfNil(out), "--%v=%v\n", k, v)
	}
	return nil
}

// isKnownKey matches flag names exactly since saved defaults are looked up by the exact name.
func isKnownKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// isMissing reports whether err means the key or the whole file is absent.
func isMissing(err error) bool {
	var keyNotFound config.KeyNotFoundError
	var fileNotFound config.FileNotFoundError
	return errors.As(err, &keyNotFound) || errors.As(err, &fileNotFound)
}
