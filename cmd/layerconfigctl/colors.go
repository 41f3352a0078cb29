package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// colorsFor decides whether w should be written with ANSI color:
// forced on, or only when w is a tty.
func colorsFor(w io.Writer, force bool) bool {
	if force {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

type valueColors struct {
	key, str, num, boolean, null func(string, ...any) string
}

func newValueColors(enabled bool) *valueColors {
	if !enabled {
		id := func(format string, a ...any) string { return fmt.Sprintf(format, a...) }
		return &valueColors{key: id, str: id, num: id, boolean: id, null: id}
	}
	return &valueColors{
		key:     color.RGB(128, 168, 196).SprintfFunc(),
		str:     color.RGB(8, 196, 16).SprintfFunc(),
		num:     color.RGB(128, 216, 236).SprintfFunc(),
		boolean: color.CyanString,
		null:    color.RGB(168, 0, 196).SprintfFunc(),
	}
}

// dumpValue pretty-prints a merged tree value in a YAML-ish indented
// form, coloring keys and scalars by kind.
func dumpValue(w io.Writer, v any, indent int, c *valueColors) {
	pad := strings.Repeat("  ", indent)
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := x[k]
			if isComposite(child) {
				fmt.Fprintf(w, "%s%s:\n", pad, c.key("%s", k))
				dumpValue(w, child, indent+1, c)
			} else {
				fmt.Fprintf(w, "%s%s: %s\n", pad, c.key("%s", k), formatScalar(child, c))
			}
		}
	case []any:
		for i, e := range x {
			if isComposite(e) {
				fmt.Fprintf(w, "%s- [%d]\n", pad, i)
				dumpValue(w, e, indent+1, c)
			} else {
				fmt.Fprintf(w, "%s- %s\n", pad, formatScalar(e, c))
			}
		}
	default:
		fmt.Fprintf(w, "%s%s\n", pad, formatScalar(v, c))
	}
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func formatScalar(v any, c *valueColors) string {
	switch x := v.(type) {
	case nil:
		return c.null("null")
	case string:
		return c.str("%q", x)
	case bool:
		return c.boolean("%v", x)
	default:
		return c.num("%v", x)
	}
}
