package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by FIREFLY_ENV (or .env by default).
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("FIREFLY_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing file is fine; defaults apply.
	_ = godotenv.Load(envFile)

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// ScenePath returns the YAML scene file sampled for world geometry.
func ScenePath() string {
	p := os.Getenv("SCENE_PATH")
	if p == "" {
		return "scene.yaml"
	}
	return p
}

// AgentCount returns the desired population size.
func AgentCount() int {
	n, err := strconv.Atoi(os.Getenv("AGENT_COUNT"))
	if err != nil || n <= 0 {
		return 8
	}
	return n
}

// FrameInterval returns the high-frequency (navigation) tick period.
func FrameInterval() time.Duration {
	return durationMS("FRAME_INTERVAL_MS", 16*time.Millisecond)
}

// PerceptInterval returns the low-frequency (perception/belief) period.
func PerceptInterval() time.Duration {
	return durationMS("PERCEPT_INTERVAL_MS", 350*time.Millisecond)
}

func SensorRadius() float64 {
	return floatVar("SENSOR_RADIUS", 140)
}

// FOVHalfAngleDeg returns the field-of-view half angle in degrees.
func FOVHalfAngleDeg() float64 {
	return floatVar("FOV_HALF_ANGLE_DEG", 70)
}

func CellSize() float64 {
	return floatVar("CELL_SIZE", 10)
}

// Seed returns the deterministic seed for population placement and wander.
func Seed() int64 {
	s, err := strconv.ParseInt(os.Getenv("SIM_SEED"), 10, 64)
	if err != nil {
		return 1
	}
	return s
}

// RateLimitRPS returns requests per second limit for the debug API.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func durationMS(key string, def time.Duration) time.Duration {
	ms, err := strconv.Atoi(os.Getenv(key))
	if err != nil || ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func floatVar(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
