package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "drone_fleet.cfg.json"

// SimConfig holds the simulator loop settings.
type SimConfig struct {
	TickPeriod        time.Duration `json:"tickPeriod" mapstructure:"tickPeriod"`
	InitialSteps      int           `json:"initialSteps" mapstructure:"initialSteps"`
	MaxSteps          int           `json:"maxSteps" mapstructure:"maxSteps"`
	TickBudget        time.Duration `json:"tickBudget" mapstructure:"tickBudget"`
	CollisionDistance float64       `json:"collisionDistance" mapstructure:"collisionDistance"`
}

// Options converts the settings into simulator options. Unset fields keep
// the simulator defaults.
func (c SimConfig) Options() []fleet.Option {
	var opts []fleet.Option
	if c.MaxSteps > 0 {
		opts = append(opts, fleet.WithSteps(c.InitialSteps, c.MaxSteps))
	}
	if c.TickBudget > 0 {
		opts = append(opts, fleet.WithTickBudget(c.TickBudget))
	}
	if c.CollisionDistance > 0 {
		opts = append(opts, fleet.WithCollisionDistance(c.CollisionDistance))
	}
	return opts
}

// ViewerConfig holds window settings.
type ViewerConfig struct {
	Width  int    `json:"width" mapstructure:"width"`
	Height int    `json:"height" mapstructure:"height"`
	Title  string `json:"title" mapstructure:"title"`
	Shaded bool   `json:"shaded" mapstructure:"shaded"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage settings. An empty path keeps the
// database in memory until the session ends.
type SQLiteConfig struct {
	Path     string `json:"path" mapstructure:"path"`
	DumpPath string `json:"dumpPath" mapstructure:"dumpPath"`
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the recording backend.
type StorageConfig struct {
	Type        string       `json:"type" mapstructure:"type"`
	SampleEvery int          `json:"sampleEvery" mapstructure:"sampleEvery"`
	Memory      MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite      SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	DB          DBConfig     `json:"-" mapstructure:"-"`
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Host      string `json:"host" mapstructure:"host"`
	Port      string `json:"port" mapstructure:"port"`
	Protocol  string `json:"protocol" mapstructure:"protocol"`
	Token     string `json:"token" mapstructure:"token"`
	Org       string `json:"org" mapstructure:"org"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
	BackupDir string `json:"backupDir" mapstructure:"backupDir"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file
// leaves the defaults in place.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./fleetlogs")
	viper.SetDefault("scenario", "")

	viper.SetDefault("sim.tickPeriod", "100ms")
	viper.SetDefault("sim.initialSteps", fleet.DefaultInitialSteps)
	viper.SetDefault("sim.maxSteps", fleet.DefaultMaxSteps)
	viper.SetDefault("sim.tickBudget", "90ms")
	viper.SetDefault("sim.collisionDistance", fleet.DroneCollisionDistance)

	viper.SetDefault("viewer.width", 1000)
	viper.SetDefault("viewer.height", 800)
	viper.SetDefault("viewer.title", "Drone Fleet")
	viper.SetDefault("viewer.shaded", true)

	viper.SetDefault("storage.type", "none")
	viper.SetDefault("storage.sampleEvery", 10)
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/fleet.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "fleet")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "fleet-metrics")
	viper.SetDefault("influx.bucket", "fleet")
	viper.SetDefault("influx.backupDir", "./recordings")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
}

// Bind makes the named command-line flags override config keys when set.
// bindings maps flag name to config key.
func Bind(flags *pflag.FlagSet, bindings map[string]string) error {
	for name, key := range bindings {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	return nil
}

// Sim returns the simulator settings.
func Sim() SimConfig {
	return SimConfig{
		TickPeriod:        viper.GetDuration("sim.tickPeriod"),
		InitialSteps:      viper.GetInt("sim.initialSteps"),
		MaxSteps:          viper.GetInt("sim.maxSteps"),
		TickBudget:        viper.GetDuration("sim.tickBudget"),
		CollisionDistance: viper.GetFloat64("sim.collisionDistance"),
	}
}

// Viewer returns the window settings.
func Viewer() ViewerConfig {
	return ViewerConfig{
		Width:  viper.GetInt("viewer.width"),
		Height: viper.GetInt("viewer.height"),
		Title:  viper.GetString("viewer.title"),
		Shaded: viper.GetBool("viewer.shaded"),
	}
}

// Storage returns the recording backend settings.
func Storage() StorageConfig {
	return StorageConfig{
		Type:        viper.GetString("storage.type"),
		SampleEvery: viper.GetInt("storage.sampleEvery"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:     viper.GetString("storage.sqlite.path"),
			DumpPath: viper.GetString("storage.sqlite.dumpPath"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// Influx returns the InfluxDB settings.
func Influx() InfluxConfig {
	return InfluxConfig{
		Enabled:   viper.GetBool("influx.enabled"),
		Host:      viper.GetString("influx.host"),
		Port:      viper.GetString("influx.port"),
		Protocol:  viper.GetString("influx.protocol"),
		Token:     viper.GetString("influx.token"),
		Org:       viper.GetString("influx.org"),
		Bucket:    viper.GetString("influx.bucket"),
		BackupDir: viper.GetString("influx.backupDir"),
	}
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
