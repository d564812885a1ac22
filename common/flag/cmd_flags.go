package flag

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/urfave/cli.v1"
)

type flagInfo struct {
	IsSet bool
	Value string
}

// CmdFlags is a snapshot of command line flags. It lets the config layer tell user input apart from default values
type CmdFlags map[string]flagInfo

func NewCmdFlags(ctx *cli.Context, totalFlags []cli.Flag) CmdFlags {
	flags := make(CmdFlags, len(totalFlags))
	for _, f := range totalFlags {
		if ctx.GlobalIsSet(f.GetName()) {
			flags[f.GetName()] = flagInfo{true, ctx.GlobalString(f.GetName())}
		} else if ctx.IsSet(f.GetName()) {
			flags[f.GetName()] = flagInfo{true, ctx.String(f.GetName())}
		} else {
			// Get default flag value. Global flags are not in the flag set of sub command
			value := ctx.String(f.GetName())
			if value == "" {
				value = ctx.GlobalString(f.GetName())
			}
			flags[f.GetName()] = flagInfo{false, value}
		}
	}
	return flags
}

func (c CmdFlags) IsSet(name string) bool {
	info, ok := c[name]
	return ok && info.IsSet
}

// Bool returns false if not found
func (c CmdFlags) Bool(name string) bool {
	info, ok := c[name]
	if ok {
		if parsed, err := strconv.ParseBool(info.Value); err == nil {
			return parsed
		}
	}
	return false
}

// Int returns 0 if not found
func (c CmdFlags) Int(name string) int {
	info, ok := c[name]
	if ok {
		if parsed, err := strconv.ParseInt(info.Value, 0, 64); err == nil {
			return int(parsed)
		}
	}
	return 0
}

// Uint64 returns 0 if not found
func (c CmdFlags) Uint64(name string) uint64 {
	info, ok := c[name]
	if ok {
		if parsed, err := strconv.ParseUint(info.Value, 0, 64); err == nil {
			return parsed
		}
	}
	return 0
}

// String returns "" if not found
func (c CmdFlags) String(name string) string {
	info, ok := c[name]
	if ok {
		return info.Value
	}
	return ""
}

// CheckExclusive verifies that only a single instance of the provided flags was set by the user.
func (c CmdFlags) CheckExclusive(args ...cli.Flag) error {
	if len(args) <= 1 {
		return nil
	}

	set := make([]string, 0, 1)
	for i := 0; i < len(args); i++ {
		name := args[i].GetName()
		if c.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", strings.Join(set, ", "))
	}
	return nil
}
