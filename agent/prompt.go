package agent

import (
	"fmt"

	"github.com/iwtcode/seraAdapter/models"
)

// systemPrompt задает роль ассистента автоматизации теплицы.
const systemPrompt = "Sen bir sera otomasyonu asistanısın. Sera sensör verilerini analiz ederek " +
	"en iyi büyüme koşullarını sağlamak için ekipmanların kontrolünü önerirsin."

// promptTemplate — пользовательский запрос с показаниями датчиков, контекстом
// времени суток, оптимальными диапазонами и ожидаемым JSON-форматом ответа.
const promptTemplate = `Sera Sensör Verileri:
Işık Değeri: %.2f
CO2 Seviyesi: %.2f
Toprak Nemi: %.2f
Nem Seviyesi: %.2f
Sıcaklık: %.2f

Ek Bilgiler:
%s

Bir serada optimal koşullar:
- Sıcaklık: 20-28°C arası olmalı
- Nem: %%60-80 arası olmalı
- Toprak Nemi: %%70-90 arası olmalı
- CO2: 800-1200 ppm arası olmalı
- Işık: Sabah/öğlen saatlerinde yüksek, akşam düşük olmalı

Yukarıdaki sera verilerine göre, seranın durumunu analiz et ve uygun eylemleri öner.
Aşağıdaki ekipmanları kontrol edebilirsin (true=açık, false=kapalı):
- Havalandırma (%%Q0.0): Sıcaklık/nem/CO2 kontrolü için
- Gölgelendirme (%%Q0.1): Işık kontrolü için
- Isıtıcı (%%Q0.2): Sıcaklık kontrolü için
- Nemlendirici (%%Q0.3): Nem kontrolü için
- Sulama (%%Q0.4): Toprak nemi kontrolü için
- Drenaj (%%Q0.5): Fazla su kontrolü için
- CO2_Tupu (%%Q0.6): CO2 seviyesi kontrolü için
- Led (%%Q0.7): Ek ışık kontrolü için

Yanıtını aşağıdaki JSON formatında ver:
{
    "analiz": "mevcut durum analizi",
    "eylemler": [
        {"ekipman": "ekipman_adı(Örn: Havalandırma,Gölgelendirme,Isıtıcı,Nemlendirici,Sulama,Drenaj,CO2_Tupu,Led)", "durum": true/false, "neden": "bu eylemin nedeni"}
    ],
    "uyarılar": [
        "serada oluşabilecek sorunlar ile ilgili uyarılar"
    ]
}`

// buildPrompt подставляет снимок датчиков и контекст в шаблон запроса.
func buildPrompt(snapshot models.SensorSnapshot, timeContext string) string {
	return fmt.Sprintf(promptTemplate,
		snapshot.Isik,
		snapshot.CO2,
		snapshot.ToprakNemi,
		snapshot.Nem,
		snapshot.Sicaklik,
		timeContext,
	)
}
