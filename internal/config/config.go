// Package config provides Viper-based configuration loading for battlecore.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/battlecore/internal/game/combat"
)

// EnvPrefix prefixes every environment override, e.g. BATTLECORE_BATTLE_SEED.
const EnvPrefix = "BATTLECORE"

// DatabaseConfig holds PostgreSQL connection settings for the audit store.
type DatabaseConfig struct {
	// Enabled turns on event persistence. The other fields are only
	// validated when it is set.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the YAML content tree.
type ContentConfig struct {
	// Dir holds dex/, rulesets/, conditions/ and ai/ subdirectories.
	Dir string `mapstructure:"dir"`
}

// Subdir returns Dir joined with name.
func (c ContentConfig) Subdir(name string) string {
	return filepath.Join(c.Dir, name)
}

// BattleConfig holds batch-run settings.
type BattleConfig struct {
	Ruleset string `mapstructure:"ruleset"`
	// Seed is the base seed; battle i uses Seed+i. 0 draws a random seed.
	Seed     int64 `mapstructure:"seed"`
	MaxTurns int   `mapstructure:"max_turns"`
	Battles  int   `mapstructure:"battles"`
	Workers  int   `mapstructure:"workers"`
	// Policies name the chooser per side: "random", "greedy", "script" or
	// an HTN domain ID.
	PolicyA string `mapstructure:"policy_a"`
	PolicyB string `mapstructure:"policy_b"`
}

// MechanicsConfig mirrors combat.Mechanics.
type MechanicsConfig struct {
	OneIn256Miss          bool `mapstructure:"one_in_256_miss"`
	FocusEnergyQuirk      bool `mapstructure:"focus_energy_quirk"`
	ToxicResetOnSwitch    bool `mapstructure:"toxic_reset_on_switch"`
	ParalysisSpeedDivisor int  `mapstructure:"paralysis_speed_divisor"`
	ParalysisSkipChance   int  `mapstructure:"paralysis_skip_chance"`
	SleepWakeChance       int  `mapstructure:"sleep_wake_chance"`
	CritMultiplier        int  `mapstructure:"crit_multiplier"`
}

// ToCombat converts m to the engine's toggle set.
func (m MechanicsConfig) ToCombat() combat.Mechanics {
	return combat.Mechanics{
		OneIn256Miss:          m.OneIn256Miss,
		FocusEnergyQuirk:      m.FocusEnergyQuirk,
		ToxicResetOnSwitch:    m.ToxicResetOnSwitch,
		ParalysisSpeedDivisor: m.ParalysisSpeedDivisor,
		ParalysisSkipChance:   m.ParalysisSkipChance,
		SleepWakeChance:       m.SleepWakeChance,
		CritMultiplier:        m.CritMultiplier,
	}
}

// ScriptingConfig holds Lua policy settings.
type ScriptingConfig struct {
	// InstructionLimit caps the VM instructions of one hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// SideA and SideB are policy script paths, used by the "script" policy
	// and as the precondition scripts of HTN domains.
	SideA string `mapstructure:"side_a"`
	SideB string `mapstructure:"side_b"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Content   ContentConfig   `mapstructure:"content"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Mechanics MechanicsConfig `mapstructure:"mechanics"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Content.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Mechanics.ToCombat().Validate(); err != nil {
		errs = append(errs, strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.Ruleset == "" {
		errs = append(errs, "battle.ruleset must not be empty")
	}
	if b.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_turns must be >= 0, got %d", b.MaxTurns))
	}
	if b.Battles < 1 {
		errs = append(errs, fmt.Sprintf("battle.battles must be >= 1, got %d", b.Battles))
	}
	if b.Workers < 1 {
		errs = append(errs, fmt.Sprintf("battle.workers must be >= 1, got %d", b.Workers))
	}
	if b.PolicyA == "" || b.PolicyB == "" {
		errs = append(errs, "battle.policy_a and battle.policy_b must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battlecore")
	v.SetDefault("database.password", "battlecore")
	v.SetDefault("database.name", "battlecore")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.dir", "content")

	v.SetDefault("battle.ruleset", "standard")
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.max_turns", 1000)
	v.SetDefault("battle.battles", 1)
	v.SetDefault("battle.workers", 4)
	v.SetDefault("battle.policy_a", "greedy")
	v.SetDefault("battle.policy_b", "random")

	m := combat.DefaultMechanics()
	v.SetDefault("mechanics.one_in_256_miss", m.OneIn256Miss)
	v.SetDefault("mechanics.focus_energy_quirk", m.FocusEnergyQuirk)
	v.SetDefault("mechanics.toxic_reset_on_switch", m.ToxicResetOnSwitch)
	v.SetDefault("mechanics.paralysis_speed_divisor", m.ParalysisSpeedDivisor)
	v.SetDefault("mechanics.paralysis_skip_chance", m.ParalysisSkipChance)
	v.SetDefault("mechanics.sleep_wake_chance", m.SleepWakeChance)
	v.SetDefault("mechanics.crit_multiplier", m.CritMultiplier)

	v.SetDefault("scripting.instruction_limit", 100000)
	v.SetDefault("scripting.side_a", "")
	v.SetDefault("scripting.side_b", "")
}
