package config

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string

	// Topics
	TopicGPSPosition string

	// GPS serial port
	GPSSerialPort    string
	GPSBaudRate      int
	GPSSerialDriver  string // jacobsa, bugst or termios
	GPSReadTimeoutMS int    // how long an idle read may block

	// GPS sentence handling
	GPSFrameBufferSize int  // max bytes per framed sentence
	GPSMaxSentences    int  // per polling cycle, 0 = unlimited
	GPSFlushFinalGroup bool // also keep the last sentence of a cycle

	// GPS retry
	GPSMaxRetries   int
	GPSRetryDelayMS int
	GPSPollInterval int // milliseconds between GetPos calls

	// Replay (bench runs without a receiver)
	GPSReplayFile string

	// Servers
	MetricsPort   int // 0 disables /metrics on the producer
	WebServerPort int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify config without proper locking.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseInt(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_GPS_POSITION":
		c.TopicGPSPosition = value

	// GPS serial port
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_SERIAL_DRIVER":
		switch strings.ToLower(value) {
		case "jacobsa", "bugst", "termios":
			c.GPSSerialDriver = strings.ToLower(value)
		default:
			return fmt.Errorf("GPS_SERIAL_DRIVER must be jacobsa, bugst or termios, got %q", value)
		}
	case "GPS_READ_TIMEOUT_MS":
		c.GPSReadTimeoutMS, err = parseInt(key, value, 1, 25500)

	// GPS sentence handling
	case "GPS_FRAME_BUFFER_SIZE":
		c.GPSFrameBufferSize, err = parseInt(key, value, 2, 4096)
	case "GPS_MAX_SENTENCES":
		c.GPSMaxSentences, err = parseInt(key, value, 0, 100000)
	case "GPS_FLUSH_FINAL_GROUP":
		b, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid GPS_FLUSH_FINAL_GROUP %q: %w", value, perr)
		}
		c.GPSFlushFinalGroup = b

	// GPS retry
	case "GPS_MAX_RETRIES":
		c.GPSMaxRetries, err = parseInt(key, value, 1, 1000)
	case "GPS_RETRY_DELAY_MS":
		c.GPSRetryDelayMS, err = parseInt(key, value, 1, 60000)
	case "GPS_POLL_INTERVAL":
		c.GPSPollInterval, err = parseInt(key, value, 1, 3600000)

	// Replay
	case "GPS_REPLAY_FILE":
		c.GPSReplayFile = value

	// Servers
	case "METRICS_PORT":
		c.MetricsPort, err = parseInt(key, value, 0, 65535)
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value, 1, 65535)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// applyDefaults fills in optional values left out of the file.
func (c *Config) applyDefaults() {
	if c.MQTTClientIDGPS == "" {
		c.MQTTClientIDGPS = "gps-fix-producer"
	}
	if c.MQTTClientIDConsole == "" {
		c.MQTTClientIDConsole = "gps-fix-console"
	}
	if c.MQTTClientIDWeb == "" {
		c.MQTTClientIDWeb = "gps-fix-web"
	}
	if c.TopicGPSPosition == "" {
		c.TopicGPSPosition = "gps/position"
	}
	if c.GPSBaudRate == 0 {
		c.GPSBaudRate = 9600
	}
	if c.GPSSerialDriver == "" {
		c.GPSSerialDriver = defaultSerialDriver()
	}
	if c.GPSReadTimeoutMS == 0 {
		c.GPSReadTimeoutMS = 100
	}
	if c.GPSFrameBufferSize == 0 {
		c.GPSFrameBufferSize = 256
	}
	if c.GPSMaxRetries == 0 {
		c.GPSMaxRetries = 10
	}
	if c.GPSRetryDelayMS == 0 {
		c.GPSRetryDelayMS = 100
	}
	if c.GPSPollInterval == 0 {
		c.GPSPollInterval = 1000
	}
	if c.WebServerPort == 0 {
		c.WebServerPort = 8080
	}
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.GPSSerialPort == "" && c.GPSReplayFile == "" {
		return fmt.Errorf("GPS_SERIAL_PORT or GPS_REPLAY_FILE is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// defaultSerialDriver prefers termios where it exists; its availability
// check asks the kernel instead of waiting out a read timeout.
func defaultSerialDriver() string {
	if runtime.GOOS == "linux" {
		return "termios"
	}
	return "jacobsa"
}
