package s7

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// DefaultStringCapacity — ёмкость текстового блока дисплея (STRING[230]).
const DefaultStringCapacity = 230

// ErrShortBuffer возвращается, если для типизированного чтения не хватает байт.
var ErrShortBuffer = errors.New("buffer too short for REAL value")

// DecodeFloat интерпретирует 4 байта big-endian как IEEE-754 float32 (S7 REAL).
func DecodeFloat(b []byte) (float32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: got %d bytes, need 4", ErrShortBuffer, len(b))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b[:4])), nil
}

// EncodeFloat кодирует float32 в 4 байта big-endian (обратная операция к DecodeFloat).
func EncodeFloat(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// EncodeBit устанавливает или сбрасывает бит bit (0 = младший) в байте b.
// Функция чистая: полный байт читается до вызова, результат записывается
// обратно вызывающей стороной.
func EncodeBit(b byte, bit uint, value bool) byte {
	mask := byte(1) << (bit & 7)
	if value {
		return b | mask
	}
	return b &^ mask
}

// translitReplacer транслитерирует турецкие буквы в ближайший ASCII-эквивалент.
var translitReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "C",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ö", "o", "Ö", "O",
	"ş", "s", "Ş", "S",
	"ü", "u", "Ü", "U",
)

// Transliterate заменяет турецкие символы на ASCII-эквиваленты.
// Применяется до усечения текста: усечение после транслитерации
// не меняет длину результата.
func Transliterate(s string) string {
	return translitReplacer.Replace(s)
}

// EncodeTextBlock строит буфер S7 STRING: байт 0 — ёмкость (максимум 255),
// байт 1 — фактическая длина, далее данные. Текст транслитерируется,
// прочие не-ASCII символы отбрасываются без ошибки. Хвост буфера
// заполняется нулями для детерминированности.
func EncodeTextBlock(text string, capacity int) []byte {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > 255 {
		capacity = 255
	}

	buf := make([]byte, capacity+2)
	buf[0] = byte(capacity)

	n := 0
	for _, r := range Transliterate(text) {
		if r > unicode.MaxASCII {
			continue
		}
		if n == capacity {
			break
		}
		buf[2+n] = byte(r)
		n++
	}
	buf[1] = byte(n)

	return buf
}
