// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kr8cpu/krasm/asm"
)

// Config is the optional TOML configuration.
type Config struct {
	Include []string         // Extra @include search directories.
	Define  map[string]int32 // Symbols bound before assembly.
}

type includeList []string

func (il *includeList) String() string {
	return strings.Join(*il, ":")
}

func (il *includeList) Set(value string) error {
	*il = append(*il, value)
	return nil
}

func main() {
	var includes includeList
	var config string
	var output string
	var verbose bool

	flag.Var(&includes, "I", "Directory to search for @include files (repeatable)")
	flag.StringVar(&config, "c", "", "TOML configuration file")
	flag.StringVar(&output, "o", "a.bin", "Output file")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [options] source.kr8", os.Args[0])
	}
	source := flag.Arg(0)

	assembler := &asm.Assembler{
		Verbose:     verbose,
		SearchPaths: includes,
	}

	if len(config) != 0 {
		var conf Config
		if _, err := toml.DecodeFile(config, &conf); err != nil {
			log.Fatalf("%v: %v", config, err)
		}
		assembler.SearchPaths = append(assembler.SearchPaths, conf.Include...)
		for name, value := range conf.Define {
			assembler.Predefine(name, asm.Value(value))
		}
	}

	result, err := assembler.AssembleFile(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	for _, diag := range result.Diagnostics {
		fmt.Println(diag)
	}

	if verbose {
		names := make([]string, 0, len(result.Symbols))
		for name := range result.Symbols {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			log.Printf("%-24v = $%08X", name, uint32(result.Symbols[name]))
		}
	}

	if err := os.WriteFile(output, result.Bytes, 0o644); err != nil {
		log.Fatalf("%v: %v", output, err)
	}
}
