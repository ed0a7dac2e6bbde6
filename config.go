package sera

import (
	"os"
	"strconv"
	"time"
)

// Config хранит модель конфигурации приложения.
// Все значения задаются при старте процесса и далее не меняются.
type Config struct {
	PLCAddress         string
	Rack               int
	Slot               int
	PLCTimeout         time.Duration
	MonitoringInterval time.Duration
	Model              string
	APIKey             string
	BaseURL            string
	AdvisorTimeout     time.Duration
	LogLevel           string
}

// Load загружает конфигурацию из переменных окружения.
func Load() *Config {
	addr := os.Getenv("PLC_IP")
	if addr == "" {
		addr = "192.168.0.1"
	}

	rack, err := strconv.Atoi(os.Getenv("PLC_RACK"))
	if err != nil || rack < 0 {
		rack = 0
	}

	slot, err := strconv.Atoi(os.Getenv("PLC_SLOT"))
	if err != nil || slot < 0 {
		slot = 1
	}

	timeoutMs, err := strconv.Atoi(os.Getenv("PLC_TIMEOUT"))
	if err != nil || timeoutMs <= 0 {
		timeoutMs = 5000
	}

	intervalSec, err := strconv.Atoi(os.Getenv("MONITORING_INTERVAL"))
	if err != nil || intervalSec <= 0 {
		intervalSec = 60
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "deepseek-chat"
	}

	advisorSec, err := strconv.Atoi(os.Getenv("ADVISOR_TIMEOUT"))
	if err != nil || advisorSec <= 0 {
		advisorSec = 90
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		PLCAddress:         addr,
		Rack:               rack,
		Slot:               slot,
		PLCTimeout:         time.Duration(timeoutMs) * time.Millisecond,
		MonitoringInterval: time.Duration(intervalSec) * time.Second,
		Model:              model,
		APIKey:             os.Getenv("GEMINI_API_KEY"),
		BaseURL:            os.Getenv("BASE_URL"),
		AdvisorTimeout:     time.Duration(advisorSec) * time.Second,
		LogLevel:           logLevel,
	}
}
