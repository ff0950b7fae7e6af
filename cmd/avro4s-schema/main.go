// avro4s-schema derives Avro schemas from a descriptor document
package main

/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/sv3ndk/avro4s/derive"
	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/naming"
	"github.com/sv3ndk/avro4s/schema"
)

const version = "0.1.0"

type options struct {
	file        string
	types       []string
	format      string
	fieldMapper string
	precision   int
	scale       int
	cache       int
	verbose     bool
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newConfig(opts options, logger *slog.Logger) (*derive.Config, error) {
	mapper, err := naming.MapperByName(opts.fieldMapper)
	if err != nil {
		return nil, err
	}
	conf := derive.NewConfig()
	conf.FieldMapper = mapper
	conf.DecimalPrecision = opts.precision
	conf.DecimalScale = opts.scale
	conf.CacheCapacity = opts.cache
	conf.Logger = logger
	return conf, nil
}

// render writes the schema of every requested type in the selected format
func render(w io.Writer, opts options, logger *slog.Logger) error {
	doc, err := descriptor.LoadDocument(opts.file)
	if err != nil {
		return err
	}
	conf, err := newConfig(opts, logger)
	if err != nil {
		return err
	}
	d, err := derive.NewDeriver(conf)
	if err != nil {
		return err
	}
	for _, expr := range opts.types {
		t, err := doc.Type(expr)
		if err != nil {
			return err
		}
		s, err := d.Derive(t)
		if err != nil {
			return err
		}
		out, err := format(s, opts.format)
		if err != nil {
			return fmt.Errorf("%s: %w", expr, err)
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
		logger.Debug("rendered schema", "type", expr, "format", opts.format)
	}
	return nil
}

func format(s schema.Schema, name string) (string, error) {
	switch name {
	case "json":
		text, err := schema.PrettyJSON(s)
		return string(text), err
	case "canonical":
		return schema.Canonical(s)
	case "fingerprint":
		fp, err := schema.Fingerprint(s)
		return hex.EncodeToString(fp), err
	case "names":
		names, err := schema.NamedTypes(s)
		return strings.Join(names, "\n"), err
	}
	return "", fmt.Errorf("unknown format %q", name)
}

func list(w io.Writer, file string) error {
	doc, err := descriptor.LoadDocument(file)
	if err != nil {
		return err
	}
	names := doc.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, doc.Types[name].Kind)
	}
	return nil
}

func main() {
	kingpin.Version(fmt.Sprintf("avro4s-schema v%s", version))

	/* General options */
	file := kingpin.Flag("file", "Descriptor document (YAML or JSON)").Short('f').Required().ExistingFile()
	verbose := kingpin.Flag("verbose", "Log every derived type").Short('v').Bool()

	/* Derivation options */
	modeD := kingpin.Command("derive", "Derive the schema of one or more types").Default()
	types := modeD.Flag("type", "Type expression to derive, e.g. com.shop.Order or list<Item>").Short('t').Required().Strings()
	formatArg := modeD.Flag("format", "Output format").Default("json").Enum("json", "canonical", "fingerprint", "names")
	fieldMapper := modeD.Flag("field-mapper", "Field name mapper").Default("identity").Enum("identity", "snake", "pascal", "camel")
	precision := modeD.Flag("precision", "Default decimal precision").Default("8").Int()
	scale := modeD.Flag("scale", "Default decimal scale").Default("2").Int()
	cacheArg := modeD.Flag("cache", "Derived schema cache capacity (0=off, -1=unbounded)").Default("0").Int()

	/* Listing */
	modeL := kingpin.Command("list", "List the declared types")

	mode := kingpin.Parse()
	logger := newLogger(os.Stderr, *verbose)

	var err error
	switch mode {
	case modeD.FullCommand():
		err = render(os.Stdout, options{
			file:        *file,
			types:       *types,
			format:      *formatArg,
			fieldMapper: *fieldMapper,
			precision:   *precision,
			scale:       *scale,
			cache:       *cacheArg,
			verbose:     *verbose,
		}, logger)
	case modeL.FullCommand():
		err = list(os.Stdout, *file)
	}
	if err != nil {
		logger.Error("derivation failed", "error", err)
		os.Exit(1)
	}
}
