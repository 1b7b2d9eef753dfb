// Package flagx holds small helpers for sharing os.Args between several
// independent flag sets.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowed (and their values),
// dropping everything else. It accepts both "-f value" and "-f=value".
// A following argument is treated as the value unless it starts with "-".
func FilterArgs(args []string, allowed []string) []string {
	known := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		known[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, hit := known[name]; hit {
				out = append(out, arg)
			}
			continue
		}

		if _, hit := known[arg]; !hit {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigFileFlag returns the JSON config path passed via -c or -config,
// or "" when neither is present. Other arguments are ignored.
func ConfigFileFlag() string {
	return stringFlag(os.Args[1:], "json", "Path to config file", "c", "config")
}

// EnvFileFlag returns the dotenv path passed via -env, or "".
func EnvFileFlag() string {
	return stringFlag(os.Args[1:], "env", "Path to .env file", "env")
}

func stringFlag(args []string, set, usage string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	fs := flag.NewFlagSet(set, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", usage)
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}
