package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "rasim.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend and its periodic dump.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig selects and configures the session event backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds the InfluxDB v2 connection used for tick metrics.
type InfluxConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Token   string `json:"token" mapstructure:"token"`
	Org     string `json:"org" mapstructure:"org"`
	Bucket  string `json:"bucket" mapstructure:"bucket"`
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// SessionConfig describes how the headless game is started.
type SessionConfig struct {
	Type          string         `json:"type" mapstructure:"type"`
	Scenario      string         `json:"scenario" mapstructure:"scenario"`
	ScenarioDir   string         `json:"scenarioDir" mapstructure:"scenarioDir"`
	RulesFile     string         `json:"rulesFile" mapstructure:"rulesFile"`
	AftermathFile string         `json:"aftermathFile" mapstructure:"aftermathFile"`
	MissionFile   string         `json:"missionFile" mapstructure:"missionFile"`
	Difficulty    string         `json:"difficulty" mapstructure:"difficulty"`
	UnitCount     int            `json:"unitCount" mapstructure:"unitCount"`
	Credits       int            `json:"credits" mapstructure:"credits"`
	BuildLevel    int            `json:"buildLevel" mapstructure:"buildLevel"`
	Bases         bool           `json:"bases" mapstructure:"bases"`
	Tiberium      bool           `json:"tiberium" mapstructure:"tiberium"`
	Goodies       bool           `json:"goodies" mapstructure:"goodies"`
	AIPlayers     int            `json:"aiPlayers" mapstructure:"aiPlayers"`
	Seed          uint32         `json:"seed" mapstructure:"seed"`
	Aftermath     bool           `json:"aftermath" mapstructure:"aftermath"`
	Counterstrike bool           `json:"counterstrike" mapstructure:"counterstrike"`
	Players       []PlayerConfig `json:"players" mapstructure:"players"`
}

// PlayerConfig is one human seat of a skirmish or network session.
type PlayerConfig struct {
	Name  string `json:"name" mapstructure:"name"`
	House string `json:"house" mapstructure:"house"`
	Color int    `json:"color" mapstructure:"color"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("dataDir", "./data")

	viper.SetDefault("session.type", "normal")
	viper.SetDefault("session.scenario", "SCG01EA.INI")
	viper.SetDefault("session.scenarioDir", "./data")
	viper.SetDefault("session.rulesFile", "RULES.INI")
	viper.SetDefault("session.aftermathFile", "AFTRMATH.INI")
	viper.SetDefault("session.missionFile", "MISSION.INI")
	viper.SetDefault("session.difficulty", "normal")
	viper.SetDefault("session.unitCount", 10)
	viper.SetDefault("session.credits", 10000)
	viper.SetDefault("session.buildLevel", 10)
	viper.SetDefault("session.bases", true)
	viper.SetDefault("session.tiberium", true)
	viper.SetDefault("session.goodies", true)
	viper.SetDefault("session.aiPlayers", 0)
	viper.SetDefault("session.seed", 0)
	viper.SetDefault("session.aftermath", false)
	viper.SetDefault("session.counterstrike", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./reports")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "rasim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.url", "http://localhost:8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "rasim")
	viper.SetDefault("influx.bucket", "rasim")

	viper.SetDefault("session.ticks", 0)
	viper.SetDefault("session.outcome", "")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.tag", "")

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("db.timescale", false)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "rasim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: strings.ToLower(viper.GetString("storage.type")),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL:     viper.GetString("influx.url"),
		Token:   viper.GetString("influx.token"),
		Org:     viper.GetString("influx.org"),
		Bucket:  viper.GetString("influx.bucket"),
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetSessionConfig returns the headless session settings. Players are decoded from the
// "session.players" array.
func GetSessionConfig() (SessionConfig, error) {
	sc := SessionConfig{
		Type:          strings.ToLower(viper.GetString("session.type")),
		Scenario:      viper.GetString("session.scenario"),
		ScenarioDir:   viper.GetString("session.scenarioDir"),
		RulesFile:     viper.GetString("session.rulesFile"),
		AftermathFile: viper.GetString("session.aftermathFile"),
		MissionFile:   viper.GetString("session.missionFile"),
		Difficulty:    strings.ToLower(viper.GetString("session.difficulty")),
		UnitCount:     viper.GetInt("session.unitCount"),
		Credits:       viper.GetInt("session.credits"),
		BuildLevel:    viper.GetInt("session.buildLevel"),
		Bases:         viper.GetBool("session.bases"),
		Tiberium:      viper.GetBool("session.tiberium"),
		Goodies:       viper.GetBool("session.goodies"),
		AIPlayers:     viper.GetInt("session.aiPlayers"),
		Seed:          viper.GetUint32("session.seed"),
		Aftermath:     viper.GetBool("session.aftermath"),
		Counterstrike: viper.GetBool("session.counterstrike"),
	}
	if err := viper.UnmarshalKey("session.players", &sc.Players); err != nil {
		return SessionConfig{}, fmt.Errorf("decoding session players: %w", err)
	}
	return sc, nil
}
