// Package config reads command-line flags, falling back to environment
// variables and then to defaults.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server configures cmd/server.
type Server struct {
	Addr           string
	EngineURL      string
	AllowOrigins   string
	DataDir        string
	LogLevel       string
	PrettyLogs     bool
	HealthInterval time.Duration
	HumanColor     string
}

// Engine configures cmd/engined.
type Engine struct {
	Addr         string
	EnginePath   string
	MoveTime     time.Duration
	SkillLevel   int
	AllowOrigins string
	LogLevel     string
	PrettyLogs   bool
}

func LoadServer(args []string) (Server, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var cfg Server
	fs.StringVar(&cfg.Addr, "addr", envString("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.EngineURL, "engine-url", envString("ENGINE_URL", "http://localhost:5000"), "base URL of the engine service")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", envString("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), "comma separated CORS origins")
	fs.StringVar(&cfg.DataDir, "data-dir", envString("CHESS_DATA_DIR", ""), "game archive directory, empty keeps it in memory")
	fs.StringVar(&cfg.LogLevel, "log-level", envString("CHESS_LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&cfg.PrettyLogs, "pretty", envBool("CHESS_PRETTY_LOGS", false), "human readable logs")
	fs.DurationVar(&cfg.HealthInterval, "health-interval", envDuration("CHESS_HEALTH_INTERVAL", 30*time.Second), "engine health check interval")
	fs.StringVar(&cfg.HumanColor, "human-color", envString("CHESS_HUMAN_COLOR", "white"), "side played by the human")
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func LoadEngine(args []string) (Engine, error) {
	fs := flag.NewFlagSet("engined", flag.ContinueOnError)
	var cfg Engine
	fs.StringVar(&cfg.Addr, "addr", envString("ENGINE_ADDR", ":5000"), "listen address")
	fs.StringVar(&cfg.EnginePath, "engine", envString("STOCKFISH_PATH", "stockfish"), "path to a UCI engine binary")
	fs.DurationVar(&cfg.MoveTime, "move-time", envDuration("ENGINE_MOVE_TIME", 2*time.Second), "thinking time per move")
	fs.IntVar(&cfg.SkillLevel, "skill", envInt("ENGINE_SKILL", 20), "engine Skill Level option, negative to leave unset")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", envString("ENGINE_ALLOW_ORIGINS", "*"), "comma separated CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", envString("ENGINE_LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&cfg.PrettyLogs, "pretty", envBool("ENGINE_PRETTY_LOGS", false), "human readable logs")
	if err := fs.Parse(args); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
