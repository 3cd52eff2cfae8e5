// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// mdscope prints the scopes of Markdown documents.
//
// Usage:
//
//	mdscope [flags] [file ...]
//
// With no files, mdscope reads standard input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"zombiezen.com/go/mdscope"
	"zombiezen.com/go/mdscope/format"
	"zombiezen.com/go/mdscope/lexers"
)

type config struct {
	format  string
	lexers  string
	at      int
	verbose bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("mdscope", flag.ContinueOnError)
	fset.SetOutput(stderr)
	cfg := new(config)
	fset.StringVar(&cfg.format, "format", "text", "output `format`: text, json, or tree")
	fset.StringVar(&cfg.lexers, "lexers", "", "YAML `file` of additional fenced code lexers")
	fset.IntVar(&cfg.at, "at", -1, "print only the scope stack at byte `offset`")
	fset.BoolVar(&cfg.verbose, "v", false, "log debug information")
	if err := fset.Parse(args); errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := cfg.run(ctx, logger, fset.Args(), stdin, stdout); err != nil {
		logger.ErrorContext(ctx, "mdscope failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func (cfg *config) run(ctx context.Context, logger *slog.Logger, files []string, stdin io.Reader, stdout io.Writer) error {
	registry := lexers.Builtin()
	if cfg.lexers != "" {
		f, err := os.Open(cfg.lexers)
		if err != nil {
			return err
		}
		err = registry.Load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.lexers, err)
		}
		logger.DebugContext(ctx, "Loaded lexers", slog.String("path", cfg.lexers), slog.Int("languages", registry.Languages()))
	}
	p := &mdscope.Parser{
		Tokenizer: registry,
		Logger:    logger,
	}

	if len(files) == 0 {
		source, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return cfg.write(stdout, p, source)
	}
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(files) > 1 {
			fmt.Fprintf(stdout, "==> %s <==\n", path)
		}
		if err := cfg.write(stdout, p, source); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (cfg *config) write(w io.Writer, p *mdscope.Parser, source []byte) error {
	if cfg.format == "tree" {
		return format.Tree(w, source, p.ParseTree(source))
	}
	doc := p.Parse(source)
	if cfg.at >= 0 {
		return format.Stack(w, doc, []int{cfg.at})
	}
	switch cfg.format {
	case "text":
		return format.Scopes(w, doc)
	case "json":
		return format.JSON(w, doc)
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}
}
