package s7

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iwtcode/seraAdapter/models"
)

// fakeArea — транспорт в памяти, реализующий областные операции gos7.
// Значения MD хранятся по смещению начала чтения: соседние REAL в MD0,
// MD2, MD4... перекрываются побайтово, плоский массив их бы исказил.
type fakeArea struct {
	merker  map[int][]byte
	outputs []byte
	dbs     map[int][]byte

	failMB map[int]bool
	failAB bool

	writeABErr error
	writeDBErr error
}

func newFakeArea() *fakeArea {
	return &fakeArea{
		merker:  make(map[int][]byte),
		outputs: make([]byte, 8),
		dbs:     make(map[int][]byte),
		failMB:  make(map[int]bool),
	}
}

func (f *fakeArea) AGReadMB(start, size int, buffer []byte) error {
	if f.failMB[start] {
		return errors.New("transport error")
	}
	copy(buffer, f.merker[start])
	return nil
}

func (f *fakeArea) AGReadAB(start, size int, buffer []byte) error {
	if f.failAB {
		return errors.New("transport error")
	}
	copy(buffer, f.outputs[start:start+size])
	return nil
}

func (f *fakeArea) AGWriteAB(start, size int, buffer []byte) error {
	if f.writeABErr != nil {
		return f.writeABErr
	}
	copy(f.outputs[start:start+size], buffer[:size])
	return nil
}

func (f *fakeArea) AGWriteDB(dbNumber, start, size int, buffer []byte) error {
	if f.writeDBErr != nil {
		return f.writeDBErr
	}
	stored := make([]byte, size)
	copy(stored, buffer[:size])
	f.dbs[dbNumber] = stored
	return nil
}

func (f *fakeArea) Close() error { return nil }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestLink(fake *fakeArea) *Link {
	link := NewLink("192.168.0.1", 0, 1, time.Second, testLogger())
	link.dial = func(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error) {
		return fake, fake, nil
	}
	return link
}

func TestReadFloat(t *testing.T) {
	fake := newFakeArea()
	fake.merker[8] = EncodeFloat(25.5)

	link := newTestLink(fake)
	require.Equal(t, float32(25.5), link.ReadFloat(8))
	require.True(t, link.Connected())
}

func TestReadFloatTransportErrorDegradesToZero(t *testing.T) {
	fake := newFakeArea()
	fake.merker[0] = EncodeFloat(880)
	fake.failMB[0] = true

	link := newTestLink(fake)
	require.Equal(t, float32(0), link.ReadFloat(0))

	// Транспортная ошибка сбрасывает сессию, следующая операция переподключается
	require.False(t, link.Connected())
	fake.failMB[0] = false
	require.Equal(t, float32(880), link.ReadFloat(0))
	require.True(t, link.Connected())
}

func TestReadAllSensorsDegradesPerField(t *testing.T) {
	fake := newFakeArea()
	fake.merker[0] = EncodeFloat(750)  // Isik
	fake.merker[2] = EncodeFloat(950)  // CO2
	fake.merker[4] = EncodeFloat(80)   // ToprakNemi
	fake.merker[6] = EncodeFloat(65)   // Nem
	fake.merker[8] = EncodeFloat(24.5) // Sicaklik
	fake.failMB[4] = true

	link := newTestLink(fake)
	snapshot := link.ReadAllSensors()

	require.Equal(t, float32(750), snapshot.Isik)
	require.Equal(t, float32(950), snapshot.CO2)
	require.Equal(t, float32(0), snapshot.ToprakNemi)
	require.Equal(t, float32(65), snapshot.Nem)
	require.Equal(t, float32(24.5), snapshot.Sicaklik)
}

func TestReadAllSensorsRecoverableAfterLastReadFails(t *testing.T) {
	fake := newFakeArea()
	fake.merker[0] = EncodeFloat(750)
	fake.merker[2] = EncodeFloat(950)
	fake.merker[4] = EncodeFloat(80)
	fake.merker[6] = EncodeFloat(65)
	fake.failMB[8] = true

	link := newTestLink(fake)
	snapshot := link.ReadAllSensors()

	// Отказ последнего чтения сбрасывает сессию, но снимок остаётся валидным
	require.Equal(t, float32(750), snapshot.Isik)
	require.Equal(t, float32(65), snapshot.Nem)
	require.Equal(t, float32(0), snapshot.Sicaklik)
	require.False(t, link.Connected())

	// Доступный ПЛК переподключается первой же попыткой
	require.NoError(t, link.Connect())
	require.True(t, link.Connected())
}

func TestWriteOutputBitReadModifyWrite(t *testing.T) {
	fake := newFakeArea()
	fake.outputs[0] = 0b10100000

	link := newTestLink(fake)

	require.True(t, link.WriteOutputBit(models.OutputBit{Byte: 0, Bit: 1}, true))
	require.Equal(t, byte(0b10100010), fake.outputs[0])

	require.True(t, link.WriteOutputBit(models.OutputBit{Byte: 0, Bit: 5}, false))
	require.Equal(t, byte(0b10000010), fake.outputs[0])
}

func TestWriteOutputBitLastWriteWins(t *testing.T) {
	fake := newFakeArea()
	link := newTestLink(fake)

	sulama := models.OutputBit{Byte: 0, Bit: 4}
	require.True(t, link.WriteOutputBit(sulama, true))
	require.True(t, link.WriteOutputBit(sulama, false))

	require.Equal(t, byte(0), fake.outputs[0]&(1<<4))
}

func TestWriteOutputBitFailure(t *testing.T) {
	fake := newFakeArea()
	fake.writeABErr = errors.New("transport error")

	link := newTestLink(fake)
	require.False(t, link.WriteOutputBit(models.OutputBit{Byte: 0, Bit: 0}, true))
	require.False(t, link.Connected())
}

func TestWriteTextBlock(t *testing.T) {
	fake := newFakeArea()
	link := newTestLink(fake)

	require.True(t, link.WriteTextBlock(1, 0, "HELLO"))

	buf := fake.dbs[1]
	require.Len(t, buf, DefaultStringCapacity+2)
	require.Equal(t, byte(DefaultStringCapacity), buf[0])
	require.Equal(t, byte(5), buf[1])
	require.Equal(t, "HELLO", string(buf[2:7]))
}

func TestOperationsFailFastWithoutConnection(t *testing.T) {
	link := NewLink("192.168.0.1", 0, 1, time.Second, testLogger())
	link.dial = func(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error) {
		return nil, nil, errors.New("connection refused")
	}

	require.Error(t, link.Connect())
	require.False(t, link.Connected())

	// Чтения возвращают нулевое значение, записи — отказ, без паник
	require.Equal(t, float32(0), link.ReadFloat(0))
	require.False(t, link.WriteOutputBit(models.OutputBit{Byte: 0, Bit: 0}, true))
	require.False(t, link.WriteTextBlock(1, 0, "text"))

	snapshot := link.ReadAllSensors()
	require.Equal(t, float32(0), snapshot.Sicaklik)
}

func TestConnectRecoversAfterFailure(t *testing.T) {
	fake := newFakeArea()
	fake.merker[8] = EncodeFloat(21)

	attempts := 0
	link := NewLink("192.168.0.1", 0, 1, time.Second, testLogger())
	link.dial = func(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error) {
		attempts++
		if attempts == 1 {
			return nil, nil, errors.New("connection refused")
		}
		return fake, fake, nil
	}

	// Первая операция: одна попытка подключения, быстрый отказ
	require.Equal(t, float32(0), link.ReadFloat(8))

	// Следующая операция переподключается и читает значение
	require.Equal(t, float32(21), link.ReadFloat(8))
	require.True(t, link.Connected())
}

func TestConnectIdempotent(t *testing.T) {
	fake := newFakeArea()
	attempts := 0

	link := NewLink("192.168.0.1", 0, 1, time.Second, testLogger())
	link.dial = func(addr string, rack, slot int, timeout time.Duration) (areaClient, io.Closer, error) {
		attempts++
		return fake, fake, nil
	}

	require.NoError(t, link.Connect())
	require.NoError(t, link.Connect())
	require.Equal(t, 1, attempts)
}
