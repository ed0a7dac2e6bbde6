package models

// Equipment перечисляет оборудование теплицы, закреплённое за выходами Q0.0–Q0.7.
type Equipment int

const (
	EquipmentHavalandirma Equipment = iota // вентиляция
	EquipmentGolgelendirme                 // затенение
	EquipmentIsitici                       // обогреватель
	EquipmentNemlendirici                  // увлажнитель
	EquipmentSulama                        // полив
	EquipmentDrenaj                        // дренаж
	EquipmentCO2Tupu                       // баллон CO2
	EquipmentLed                           // досветка

	equipmentCount
)

// actuatorMap — фиксированная таблица соответствия имени оборудования
// физическому выходу. Имена совпадают с теми, что возвращает советник.
var actuatorMap = [equipmentCount]struct {
	Name string
	Addr OutputBit
}{
	EquipmentHavalandirma:  {"Havalandırma", OutputBit{Byte: 0, Bit: 0}},
	EquipmentGolgelendirme: {"Gölgelendirme", OutputBit{Byte: 0, Bit: 1}},
	EquipmentIsitici:       {"Isıtıcı", OutputBit{Byte: 0, Bit: 2}},
	EquipmentNemlendirici:  {"Nemlendirici", OutputBit{Byte: 0, Bit: 3}},
	EquipmentSulama:        {"Sulama", OutputBit{Byte: 0, Bit: 4}},
	EquipmentDrenaj:        {"Drenaj", OutputBit{Byte: 0, Bit: 5}},
	EquipmentCO2Tupu:       {"CO2_Tupu", OutputBit{Byte: 0, Bit: 6}},
	EquipmentLed:           {"Led", OutputBit{Byte: 0, Bit: 7}},
}

// String возвращает логическое имя оборудования.
func (e Equipment) String() string {
	if e < 0 || e >= equipmentCount {
		return "Unknown"
	}
	return actuatorMap[e].Name
}

// Address возвращает физический адрес выхода для оборудования.
func (e Equipment) Address() OutputBit {
	return actuatorMap[e].Addr
}

// ResolveEquipment ищет выход по имени оборудования из ответа советника.
// Для неизвестного имени возвращает false; вызывающая сторона решает,
// пропустить команду или сообщить об ошибке.
func ResolveEquipment(name string) (OutputBit, bool) {
	for _, entry := range actuatorMap {
		if entry.Name == name {
			return entry.Addr, true
		}
	}
	return OutputBit{}, false
}

// EquipmentNames возвращает все известные имена оборудования в порядке выходов.
func EquipmentNames() []string {
	names := make([]string, 0, len(actuatorMap))
	for _, entry := range actuatorMap {
		names = append(names, entry.Name)
	}
	return names
}
