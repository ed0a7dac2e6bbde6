package sera

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/iwtcode/seraAdapter/agent"
	"github.com/iwtcode/seraAdapter/control"
	"github.com/iwtcode/seraAdapter/models"
	"github.com/iwtcode/seraAdapter/s7"
)

// Client является основной точкой входа для взаимодействия с библиотекой:
// он связывает соединение с ПЛК, советника и цикл управления.
type Client struct {
	link   *s7.Link
	agent  *agent.Agent
	loop   *control.Loop
	config *Config
	logger *logrus.Logger
}

// New создает и возвращает новый экземпляр клиента.
// Первое подключение к ПЛК выполняется в лучшем случае: недоступный на
// старте контроллер не мешает запуску, соединение поднимется при первом
// обращении цикла.
func New(cfg *Config) (*Client, error) {
	logger := logrus.New()

	if cfg.LogLevel == "off" || cfg.LogLevel == "none" {
		logger.SetOutput(io.Discard)
	} else {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
		logger.SetOutput(os.Stdout)
	}

	// Настраиваем форматтер с понятным форматом времени
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	link := s7.NewLink(cfg.PLCAddress, cfg.Rack, cfg.Slot, cfg.PLCTimeout, logger)
	if err := link.Connect(); err != nil {
		logger.WithError(err).Warn("Initial PLC connection failed, will retry on first use")
	}

	advisor := agent.New(cfg.Model, cfg.APIKey, cfg.BaseURL, cfg.AdvisorTimeout, logger)

	cycle := control.NewCycle(link, advisor, logger)
	loop := control.NewLoop(cycle, cfg.MonitoringInterval, logger)

	return &Client{
		link:   link,
		agent:  advisor,
		loop:   loop,
		config: cfg,
		logger: logger,
	}, nil
}

// Start запускает цикл мониторинга и управления.
func (c *Client) Start() {
	c.loop.Start()
}

// Stop кооперативно останавливает цикл, не прерывая текущую операцию.
func (c *Client) Stop() {
	c.loop.Stop()
}

// Close останавливает цикл и закрывает соединение с ПЛК.
func (c *Client) Close() {
	c.loop.Stop()
	c.link.Close()
}

// GetLogger возвращает используемый логгер.
func (c *Client) GetLogger() *logrus.Logger {
	return c.logger
}

// ReadSensors возвращает текущий снимок всех датчиков теплицы.
func (c *Client) ReadSensors() models.SensorSnapshot {
	return c.link.ReadAllSensors()
}

// SetEquipment вручную переключает оборудование по логическому имени,
// минуя советника. Возвращает false для неизвестного имени или ошибки записи.
func (c *Client) SetEquipment(name string, state bool) bool {
	addr, ok := models.ResolveEquipment(name)
	if !ok {
		c.logger.Warnf("Bilinmeyen ekipman: %s", name)
		return false
	}
	return c.link.WriteOutputBit(addr, state)
}
