/*
   _____       __   __             _  __
  ╱ ____|     |  ╲/   |           | |/ /
 | |  __  ___ |  ╲ /  | __  _ _ __| ' /
 | | |_ |/ _ ╲| |╲ /| |/ _`  | '__|  <
 | |__| |  __/| |   | (  _|  | |  | . ╲
  ╲_____|╲___ |_|   |_|╲__,_ |_|  |_|╲_╲
 可爱飞行猪❤: golang83@outlook.com  💯💯💯
 Author Name: GeMarK.VK.Chow奥迪哥  🚗🔞🈲
 Creaet Time: 2019/06/20 - 21:02:15
 ProgramFile: config.go
 Description: icotool 的配置：默认值、环境变量与命令行参数
*/

package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
)

// config holds the icotool settings.
type config struct {
	Out      string
	Sizes    []int
	Prefix   string
	NoPNG    bool
	NoBMP    bool
	Parallel bool
}

// overrides holds values parsed from command-line flags.
type overrides struct {
	Out      string
	Sizes    string
	Prefix   string
	NoPNG    bool
	NoBMP    bool
	Parallel bool
}

// defaultConfig returns a config with default values.
func defaultConfig() config {
	return config{
		Out:    "icon.ico",
		Prefix: "icon",
	}
}

// parseSizes parses a comma separated list of edge lengths like "16,32,48".
// Duplicates are dropped and the result is sorted largest first.
func parseSizes(s string) ([]int, error) {
	seen := make(map[int]bool)
	var sizes []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("size %q: %w", f, err)
		}
		if n < 1 || n > 256 {
			return nil, fmt.Errorf("size %d out of range 1-256", n)
		}
		if !seen[n] {
			seen[n] = true
			sizes = append(sizes, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes, nil
}

// applyStringOverride applies a string override from env var and flag.
func applyStringOverride(target *string, envKey, flagVal string) {
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
	if flagVal != "" {
		*target = flagVal
	}
}

// applySizesOverride applies a size list override from env var and flag.
// Invalid values are logged and ignored.
func applySizesOverride(target *[]int, envKey, flagVal string) {
	if v := os.Getenv(envKey); v != "" {
		if sizes, err := parseSizes(v); err != nil {
			log.Printf("Ignoring invalid %s=%q: %v", envKey, v, err)
		} else {
			*target = sizes
		}
	}
	if flagVal != "" {
		if sizes, err := parseSizes(flagVal); err != nil {
			log.Printf("Ignoring invalid -sizes=%q: %v", flagVal, err)
		} else {
			*target = sizes
		}
	}
}

// applyOverrides applies env vars and flags to cfg. Priority: flag > env > default.
func applyOverrides(cfg *config, o overrides) {
	applyStringOverride(&cfg.Out, "ICOTOOL_OUT", o.Out)
	applySizesOverride(&cfg.Sizes, "ICOTOOL_SIZES", o.Sizes)
	if o.Prefix != "" {
		cfg.Prefix = o.Prefix
	}
	cfg.NoPNG = o.NoPNG
	cfg.NoBMP = o.NoBMP
	cfg.Parallel = o.Parallel
}
