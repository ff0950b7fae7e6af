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

package derive

import (
	"errors"
	"log/slog"

	"github.com/sv3ndk/avro4s/naming"
)

// Config is used to pass the ambient options of a derivation. It is read
// only while a derivation runs.
type Config struct {
	// DecimalPrecision is the precision of decimals without an override
	DecimalPrecision int
	// DecimalScale is the scale of decimals without an override
	DecimalScale int
	// FieldMapper maps declared field labels to schema field names
	FieldMapper naming.FieldMapper
	// Registry resolves primitive types
	Registry *Registry
	// Logger receives debug entries for derived types and warnings for
	// accepted but suspicious annotations
	Logger *slog.Logger
	// CacheCapacity caches derived schemas across passes: 0 disables the
	// cache, a positive value bounds an LRU cache, -1 means unbounded
	CacheCapacity int
}

// NewConfig returns a new configuration instance with sane defaults.
func NewConfig() *Config {
	c := &Config{}

	c.DecimalPrecision = 8
	c.DecimalScale = 2
	c.FieldMapper = naming.Identity
	c.Registry = NewRegistry()
	c.Logger = slog.New(discardHandler)
	c.CacheCapacity = 0

	return c
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.DecimalPrecision < 1 {
		return errors.New("decimal precision must be a positive integer")
	}
	if c.DecimalScale < 0 || c.DecimalScale > c.DecimalPrecision {
		return errors.New("decimal scale must be between 0 and the precision")
	}
	if c.FieldMapper == nil {
		return errors.New("field mapper must not be nil")
	}
	if c.Registry == nil {
		return errors.New("registry must not be nil")
	}
	if c.CacheCapacity < -1 {
		return errors.New("cache capacity must be -1, 0 or a positive integer")
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(discardHandler)
	}
	return c.Logger
}
