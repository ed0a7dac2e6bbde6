package models

// SensorSnapshot содержит полный набор показаний датчиков теплицы.
// Все пять полей присутствуют всегда: неудачное чтение оставляет 0.0.
type SensorSnapshot struct {
	Isik       float32 `json:"isik"`        // освещённость
	CO2        float32 `json:"co2"`         // уровень CO2, ppm
	ToprakNemi float32 `json:"toprak_nemi"` // влажность почвы, %
	Nem        float32 `json:"nem"`         // влажность воздуха, %
	Sicaklik   float32 `json:"sicaklik"`    // температура, °C
}

// OutputBit описывает физический адрес дискретного выхода в области Q.
type OutputBit struct {
	Byte int  `json:"byte"`
	Bit  uint `json:"bit"` // 0..7, 0 = младший бит
}

// ActuatorCommand содержит одну рекомендацию советника по переключению оборудования.
// Имена json-полей соответствуют формату ответа модели.
type ActuatorCommand struct {
	Equipment string `json:"ekipman"`
	State     bool   `json:"durum"`
	Reason    string `json:"neden"`
}

// Recommendation содержит структурированный ответ советника за один цикл.
type Recommendation struct {
	Summary  string            `json:"analiz"`
	Commands []ActuatorCommand `json:"eylemler"`
	Alerts   []string          `json:"uyarılar"`
}
