package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime settings for the server.
type Config struct {
	Addr         string
	DatabasePath string
	UploadDir    string
	ConvertedDir string
	FFmpegPath   string
	FFprobePath  string
	WorkerCount  int
	QueueSize    int
	LogLevel     string
	LogFormat    string
}

// Load reads environment variables and returns normalized runtime config.
func Load() Config {
	return Config{
		Addr:         getEnv("ADDR", "0.0.0.0:5577"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/history.db"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		ConvertedDir: getEnv("CONVERTED_DIR", "./converted"),
		FFmpegPath:   getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:  getEnv("FFPROBE_PATH", "ffprobe"),
		WorkerCount:  getEnvInt("WORKER_COUNT", 4),
		QueueSize:    getEnvInt("QUEUE_SIZE", 32),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	out, err := strconv.Atoi(value)
	if err != nil || out <= 0 {
		return fallback
	}
	return out
}
