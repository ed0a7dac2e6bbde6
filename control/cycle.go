package control

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iwtcode/seraAdapter/models"
	"github.com/iwtcode/seraAdapter/s7"
)

// Plc — операции контроллера, необходимые одному циклу управления.
type Plc interface {
	Connect() error
	Connected() bool
	ReadAllSensors() models.SensorSnapshot
	WriteOutputBit(addr models.OutputBit, value bool) bool
	WriteTextBlock(db, offset int, text string) bool
}

// Advisor — внешний советник, превращающий снимок датчиков в рекомендацию.
// Реализация обязана сама ограничивать длительность вызова.
type Advisor interface {
	Analyze(snapshot models.SensorSnapshot, timeContext string) (models.Recommendation, error)
}

// Разметка дисплея в блоках данных: сводка анализа занимает DB1–DB3
// кусками по 100/100/50 символов, предупреждения — DB4–DB8.
var summaryBlocks = [3]struct {
	DB   int
	Size int
}{
	{DB: 1, Size: 100},
	{DB: 2, Size: 100},
	{DB: 3, Size: 50},
}

const (
	alertBlockFirst = 4
	alertBlockCount = 5
	alertMaxLen     = 100
)

// Cycle выполняет одну итерацию управления: чтение датчиков, запрос
// рекомендации, вывод на дисплей и применение команд к выходам.
type Cycle struct {
	plc     Plc
	advisor Advisor
	logger  *logrus.Logger
	now     func() time.Time
}

// NewCycle собирает цикл из контроллера и советника.
func NewCycle(plc Plc, advisor Advisor, logger *logrus.Logger) *Cycle {
	return &Cycle{
		plc:     plc,
		advisor: advisor,
		logger:  logger,
		now:     time.Now,
	}
}

// Run выполняет один цикл. Отказы отдельных шагов деградируют, а не
// прерывают цикл; единственный ранний выход — полная недоступность ПЛК.
func (c *Cycle) Run() {
	// 1. Снимок датчиков: отдельные поля деградируют до 0.0.
	snapshot := c.plc.ReadAllSensors()

	// 2. Ранний выход, только если соединение так и не удалось установить.
	// Сессия, сброшенная последним чтением, не повод выбрасывать снимок:
	// перед решением выполняется ещё одна попытка подключения.
	if !c.plc.Connected() {
		if err := c.plc.Connect(); err != nil {
			c.logger.Error("Sensor data unavailable: PLC connection could not be established")
			return
		}
	}

	// 3. Контекст времени суток — информативный вход советника.
	timeContext := timeOfDayContext(c.now())

	// 4. Рекомендация советника; при ошибке — деградированная замена.
	rec, err := c.advisor.Analyze(snapshot, timeContext)
	if err != nil {
		c.logger.WithError(err).Error("Advisor call failed, continuing with degraded recommendation")
		rec = models.Recommendation{Summary: fmt.Sprintf("Hata oluştu: %v", err)}
	} else {
		c.logger.Infof("AI analizi: %s", rec.Summary)
	}

	// 5. Сводка анализа на дисплей, все три блока пишутся всегда.
	c.writeSummary(rec.Summary)

	// 6–7. Предупреждения: блоки очищаются целиком, затем пишутся заново.
	c.writeAlerts(rec.Alerts)

	// 8. Применение команд строго в порядке получения.
	c.applyCommands(rec.Commands)
}

// timeOfDayContext делит сутки на три интервала: утро 06:00–11:59,
// день 12:00–17:59, вечер/ночь — всё остальное.
func timeOfDayContext(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 12:
		return "Şu an sabah vakti."
	case hour >= 12 && hour < 18:
		return "Şu an öğleden sonra/öğle vakti."
	default:
		return "Şu an akşam/gece vakti."
	}
}

// truncateRunes усекает строку до n символов, не разрывая руны.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// writeSummary раскладывает сводку последовательными кусками по блокам DB1–DB3.
// Транслитерация выполняется до усечения, пустые остатки тоже записываются,
// чтобы затереть текст предыдущего цикла.
func (c *Cycle) writeSummary(summary string) {
	text := []rune(s7.Transliterate(summary))

	pos := 0
	for _, block := range summaryBlocks {
		end := pos + block.Size
		if end > len(text) {
			end = len(text)
		}
		chunk := ""
		if pos < len(text) {
			chunk = string(text[pos:end])
			pos = end
		}
		c.plc.WriteTextBlock(block.DB, 0, chunk)
	}
}

// writeAlerts очищает все пять блоков предупреждений и записывает до пяти
// предупреждений с порядковым префиксом. Лишние предупреждения только логируются.
func (c *Cycle) writeAlerts(alerts []string) {
	for i := 0; i < alertBlockCount; i++ {
		c.plc.WriteTextBlock(alertBlockFirst+i, 0, "")
	}

	for i, alert := range alerts {
		c.logger.Warnf("UYARI: %s", alert)

		if i >= alertBlockCount {
			c.logger.Warnf("Alert #%d not displayed, only %d display blocks available", i+1, alertBlockCount)
			continue
		}

		message := fmt.Sprintf("%d.UYARI: %s", i+1, truncateRunes(s7.Transliterate(alert), alertMaxLen))
		c.plc.WriteTextBlock(alertBlockFirst+i, 0, message)
	}
}

// applyCommands применяет команды советника к выходам. Неизвестное
// оборудование пропускается, остальные команды выполняются дальше.
func (c *Cycle) applyCommands(commands []models.ActuatorCommand) {
	for _, cmd := range commands {
		addr, ok := models.ResolveEquipment(cmd.Equipment)
		if !ok {
			c.logger.Warnf("Bilinmeyen ekipman: %s", cmd.Equipment)
			continue
		}

		c.logger.Infof("Eylem uygulanıyor: %s = %v (%s)", cmd.Equipment, cmd.State, cmd.Reason)
		if !c.plc.WriteOutputBit(addr, cmd.State) {
			c.logger.Errorf("Eylem uygulanamadı: %s = %v", cmd.Equipment, cmd.State)
		}
	}
}
