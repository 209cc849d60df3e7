// Package config loads the KEY=VALUE configuration file that supplies
// the calibration profile, serial port parameters, and sink endpoints.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Serial port
	SerialPort     string
	SerialBaudRate int

	// Calibration: accelerometer
	AccBiasX, AccBiasY, AccBiasZ float64
	AccGainX, AccGainY, AccGainZ float64

	// Calibration: magnetometer
	MagBiasX, MagBiasY, MagBiasZ float64
	MagGainX, MagGainY, MagGainZ float64
	// MagRot is a 9-entry row-major rotation applied after bias/gain,
	// e.g. "1,0,0,0,1,0,0,0,1" for the identity.
	MagRot [9]float64

	// Calibration: gyroscope
	RotBiasX, RotBiasY, RotBiasZ float64

	// Record sink
	RecordDir string

	// Telemetry sink (optional: empty broker disables it)
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Viewport sink
	ViewportAddr string

	// Metrics
	MetricsAddr string
}

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

	cfg := &Config{MagRot: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setValue(key, value string) error {
	switch key {
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = v

	case "ACC_BIAS_X":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_BIAS_X %q: %w", value, err)
		}
		c.AccBiasX = v
	case "ACC_BIAS_Y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_BIAS_Y %q: %w", value, err)
		}
		c.AccBiasY = v
	case "ACC_BIAS_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_BIAS_Z %q: %w", value, err)
		}
		c.AccBiasZ = v
	case "ACC_GAIN_X":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_GAIN_X %q: %w", value, err)
		}
		c.AccGainX = v
	case "ACC_GAIN_Y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_GAIN_Y %q: %w", value, err)
		}
		c.AccGainY = v
	case "ACC_GAIN_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACC_GAIN_Z %q: %w", value, err)
		}
		c.AccGainZ = v

	case "MAG_BIAS_X":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_BIAS_X %q: %w", value, err)
		}
		c.MagBiasX = v
	case "MAG_BIAS_Y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_BIAS_Y %q: %w", value, err)
		}
		c.MagBiasY = v
	case "MAG_BIAS_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_BIAS_Z %q: %w", value, err)
		}
		c.MagBiasZ = v
	case "MAG_GAIN_X":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_GAIN_X %q: %w", value, err)
		}
		c.MagGainX = v
	case "MAG_GAIN_Y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_GAIN_Y %q: %w", value, err)
		}
		c.MagGainY = v
	case "MAG_GAIN_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid MAG_GAIN_Z %q: %w", value, err)
		}
		c.MagGainZ = v
	case "MAG_ROT":
		parts := strings.Split(value, ",")
		if len(parts) != 9 {
			return fmt.Errorf("MAG_ROT must have 9 comma-separated entries, got %d", len(parts))
		}
		var rot [9]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return fmt.Errorf("invalid MAG_ROT entry %q: %w", p, err)
			}
			rot[i] = v
		}
		c.MagRot = rot

	case "ROT_BIAS_X":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ROT_BIAS_X %q: %w", value, err)
		}
		c.RotBiasX = v
	case "ROT_BIAS_Y":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ROT_BIAS_Y %q: %w", value, err)
		}
		c.RotBiasY = v
	case "ROT_BIAS_Z":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ROT_BIAS_Z %q: %w", value, err)
		}
		c.RotBiasZ = v

	case "RECORD_DIR":
		c.RecordDir = value

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_TOPIC":
		c.MQTTTopic = value

	case "VIEWPORT_ADDR":
		c.ViewportAddr = value

	case "METRICS_ADDR":
		c.MetricsAddr = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func (c *Config) validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.SerialBaudRate == 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE is required")
	}
	if c.AccGainX == 0 || c.AccGainY == 0 || c.AccGainZ == 0 {
		return fmt.Errorf("ACC_GAIN_X/Y/Z must be non-zero")
	}
	if c.MagGainX == 0 || c.MagGainY == 0 || c.MagGainZ == 0 {
		return fmt.Errorf("MAG_GAIN_X/Y/Z must be non-zero")
	}
	if c.RecordDir == "" {
		return fmt.Errorf("RECORD_DIR is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so repeated calls after the first are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must run
// first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
