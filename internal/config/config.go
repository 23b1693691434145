package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/attendance.db"

	// Card reader
	ReaderType   string // "auto" | "serial" | "mock"
	ReaderDevice string // e.g. "/dev/serial0"
	ReaderBaud   int

	// Scan loop
	PollInterval   time.Duration // sleep between reader polls
	ReadTimeout    time.Duration // per-poll read timeout; keeps Stop responsive
	DebounceWindow time.Duration // repeat scans of the same UID inside this window are dropped

	// MQTT check-in publishing (disabled when host is empty)
	MQTTHost  string
	MQTTPort  int
	MQTTTopic string

	// Scan log retention
	LogRetentionDays   int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

func FromEnv() Config {
	addr := getenvDefault("ATTENDANCE_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("ATTENDANCE_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("ATTENDANCE_DB_PATH", "./data/attendance.db")

	readerType := strings.ToLower(getenvDefault("ATTENDANCE_READER_TYPE", "auto"))
	switch readerType {
	case "auto", "serial", "mock":
	default:
		readerType = "auto"
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		DBPath:   dbPath,

		ReaderType:   readerType,
		ReaderDevice: getenvDefault("ATTENDANCE_READER_DEVICE", "/dev/serial0"),
		ReaderBaud:   getenvInt("ATTENDANCE_READER_BAUD", 115200),

		PollInterval:   time.Duration(getenvInt("ATTENDANCE_POLL_INTERVAL_MS", 500)) * time.Millisecond,
		ReadTimeout:    time.Duration(getenvInt("ATTENDANCE_READ_TIMEOUT_MS", 100)) * time.Millisecond,
		DebounceWindow: time.Duration(getenvInt("ATTENDANCE_DEBOUNCE_SECONDS", 5)) * time.Second,

		MQTTHost:  strings.TrimSpace(os.Getenv("ATTENDANCE_MQTT_HOST")),
		MQTTPort:  getenvInt("ATTENDANCE_MQTT_PORT", 8883),
		MQTTTopic: getenvDefault("ATTENDANCE_MQTT_TOPIC", "attendance/checkins"),

		LogRetentionDays:   getenvInt("ATTENDANCE_LOG_RETENTION_DAYS", 30),
		PruneIntervalHours: getenvInt("ATTENDANCE_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
