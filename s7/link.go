package s7

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robinson/gos7"
	"github.com/sirupsen/logrus"

	"github.com/iwtcode/seraAdapter/models"
)

// ErrNotConnected возвращается, когда соединение с ПЛК не удалось установить
// даже после повторной попытки подключения.
var ErrNotConnected = errors.New("not connected to PLC")

// Смещения датчиков в области MD (слова по 2 байта, REAL занимает 4 байта).
const (
	offsetIsik       = 0
	offsetCO2        = 2
	offsetToprakNemi = 4
	offsetNem        = 6
	offsetSicaklik   = 8
)

// areaClient — подмножество операций gos7.Client, используемое Link.
// Выделено в интерфейс, чтобы тесты могли подставить транспорт в памяти.
type areaClient interface {
	AGReadMB(start int, size int, buffer []byte) error
	AGReadAB(start int, size int, buffer []byte) error
	AGWriteAB(start int, size int, buffer []byte) error
	AGWriteDB(dbNumber int, start int, size int, buffer []byte) error
}

type dialFunc func(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error)

// dialS7 устанавливает ISO-on-TCP сессию с контроллером через gos7.
func dialS7(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error) {
	handler := gos7.NewTCPClientHandler(addr, rack, slot)
	handler.Timeout = timeout
	if err := handler.Connect(); err != nil {
		return nil, nil, err
	}
	return gos7.NewClient(handler), handler, nil
}

// Link инкапсулирует соединение с одним ПЛК и типизированные операции
// чтения/записи поверх областей MD, Q и блоков данных.
// Состояние соединения принадлежит только Link и меняется исключительно
// методами Connect/Close и автоматическим переподключением.
type Link struct {
	addr    string
	rack    int
	slot    int
	timeout time.Duration
	logger  *logrus.Logger

	mu        sync.Mutex
	client    areaClient
	closer    io.Closer
	connected bool

	dial dialFunc
}

// NewLink создает Link для контроллера (addr, rack, slot) без установки соединения.
// Соединение откроется при первом обращении или явном вызове Connect.
func NewLink(addr string, rack, slot int, timeout time.Duration, logger *logrus.Logger) *Link {
	return &Link{
		addr:    addr,
		rack:    rack,
		slot:    slot,
		timeout: timeout,
		logger:  logger,
		dial:    dialS7,
	}
}

// Connect устанавливает сессию с ПЛК. Вызов идемпотентен: при живом
// соединении просто подтверждает состояние. Ошибка фиксируется в состоянии
// и возвращается, паники не допускаются.
func (l *Link) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked()
}

func (l *Link) connectLocked() error {
	if l.connected {
		return nil
	}

	client, closer, err := l.dial(l.addr, l.rack, l.slot, l.timeout)
	if err != nil {
		l.logger.WithError(err).Errorf("Failed to connect to PLC %s (rack %d, slot %d)", l.addr, l.rack, l.slot)
		return fmt.Errorf("plc connect to %s failed: %w", l.addr, err)
	}

	l.client = client
	l.closer = closer
	l.connected = true
	l.logger.Infof("Successfully connected to PLC %s (rack %d, slot %d)", l.addr, l.rack, l.slot)
	return nil
}

// ensureConnected — защитный вызов перед каждой операцией: одна попытка
// переподключения, затем быстрый отказ с ErrNotConnected.
func (l *Link) ensureConnected() (areaClient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		if err := l.connectLocked(); err != nil {
			return nil, ErrNotConnected
		}
	}
	return l.client, nil
}

// dropConnection сбрасывает сессию после транспортной ошибки,
// чтобы следующая операция попыталась переподключиться.
func (l *Link) dropConnection() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		_ = l.closer.Close()
	}
	l.client = nil
	l.closer = nil
	l.connected = false
}

// Connected сообщает, установлена ли сессия с ПЛК.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Close закрывает соединение.
func (l *Link) Close() {
	l.dropConnection()
}

// ReadFloat читает REAL по смещению слова в области MD.
// Любая ошибка транспорта или декодирования логируется, а метод возвращает 0.0:
// неудачное чтение датчика не должно останавливать цикл.
func (l *Link) ReadFloat(wordOffset int) float32 {
	client, err := l.ensureConnected()
	if err != nil {
		l.logger.Errorf("Error reading from MD%d: %v", wordOffset, err)
		return 0
	}

	buf := make([]byte, 4)
	if err := client.AGReadMB(wordOffset, 4, buf); err != nil {
		l.logger.Errorf("Error reading from MD%d: %v", wordOffset, err)
		l.dropConnection()
		return 0
	}

	value, err := DecodeFloat(buf)
	if err != nil {
		l.logger.Errorf("Error decoding MD%d: %v", wordOffset, err)
		return 0
	}
	return value
}

// WriteOutputBit выставляет дискретный выход через чтение-модификацию-запись
// полного байта области Q. Возвращает false при любой ошибке транспорта.
// Операция не атомарна относительно внешних писателей того же байта:
// система рассчитана на единственного владельца выходов.
func (l *Link) WriteOutputBit(addr models.OutputBit, value bool) bool {
	client, err := l.ensureConnected()
	if err != nil {
		l.logger.Errorf("Error writing to Q%d.%d: %v", addr.Byte, addr.Bit, err)
		return false
	}

	buf := make([]byte, 1)
	if err := client.AGReadAB(addr.Byte, 1, buf); err != nil {
		l.logger.Errorf("Error reading output byte Q%d: %v", addr.Byte, err)
		l.dropConnection()
		return false
	}

	buf[0] = EncodeBit(buf[0], addr.Bit, value)

	if err := client.AGWriteAB(addr.Byte, 1, buf); err != nil {
		l.logger.Errorf("Error writing to Q%d.%d: %v", addr.Byte, addr.Bit, err)
		l.dropConnection()
		return false
	}

	l.logger.Infof("Successfully wrote %v to Q%d.%d", value, addr.Byte, addr.Bit)
	return true
}

// WriteTextBlock кодирует текст в формат S7 STRING и записывает буфер целиком
// в блок данных db по смещению offset. Возвращает false при ошибке.
func (l *Link) WriteTextBlock(db, offset int, text string) bool {
	client, err := l.ensureConnected()
	if err != nil {
		l.logger.Errorf("Error writing to DB%d: %v", db, err)
		return false
	}

	buf := EncodeTextBlock(text, DefaultStringCapacity)
	if err := client.AGWriteDB(db, offset, len(buf), buf); err != nil {
		l.logger.Errorf("Error writing to DB%d: %v", db, err)
		l.dropConnection()
		return false
	}
	return true
}

// ReadAllSensors читает пять датчиков в фиксированном порядке и собирает
// полный снимок. Отказ отдельного чтения оставляет в поле 0.0 по контракту
// ReadFloat, снимок в целом не прерывается.
func (l *Link) ReadAllSensors() models.SensorSnapshot {
	snapshot := models.SensorSnapshot{
		Isik:       l.ReadFloat(offsetIsik),
		CO2:        l.ReadFloat(offsetCO2),
		ToprakNemi: l.ReadFloat(offsetToprakNemi),
		Nem:        l.ReadFloat(offsetNem),
		Sicaklik:   l.ReadFloat(offsetSicaklik),
	}

	l.logger.WithFields(logrus.Fields{
		"isik":        snapshot.Isik,
		"co2":         snapshot.CO2,
		"toprak_nemi": snapshot.ToprakNemi,
		"nem":         snapshot.Nem,
		"sicaklik":    snapshot.Sicaklik,
	}).Info("Sensor data read")

	return snapshot
}
