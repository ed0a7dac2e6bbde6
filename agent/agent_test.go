package agent

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iwtcode/seraAdapter/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newChatServer эмулирует совместимую с OpenAI конечную точку chat completions.
func newChatServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []any{
				map[string]any{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestAnalyzeParsesRecommendation(t *testing.T) {
	rec := models.Recommendation{
		Summary: "Sera durumu normal",
		Commands: []models.ActuatorCommand{
			{Equipment: "Sulama", State: true, Reason: "toprak kuru"},
		},
		Alerts: []string{"CO2 seviyesi düşük"},
	}
	content, err := json.Marshal(rec)
	require.NoError(t, err)

	var captured map[string]any
	server := newChatServer(t, string(content), &captured)
	defer server.Close()

	a := New("test-model", "test-key", server.URL+"/v1", time.Second, testLogger())

	snapshot := models.SensorSnapshot{Isik: 750, CO2: 650, ToprakNemi: 40, Nem: 65, Sicaklik: 24.5}
	got, err := a.Analyze(snapshot, "Şu an sabah vakti.")
	require.NoError(t, err)
	require.Equal(t, rec, got)

	// Запрос несет выбранную модель и требует JSON-ответ
	require.Equal(t, "test-model", captured["model"])
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json_object", format["type"])

	// Показания датчиков и контекст попадают в текст запроса
	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)["content"].(string)
	require.Contains(t, user, "24.50")
	require.Contains(t, user, "Şu an sabah vakti.")
	require.Contains(t, user, "Sulama")
}

func TestAnalyzeMalformedContent(t *testing.T) {
	server := newChatServer(t, "bu gecerli bir json degil", nil)
	defer server.Close()

	a := New("test-model", "test-key", server.URL+"/v1", time.Second, testLogger())

	_, err := a.Analyze(models.SensorSnapshot{}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse")
}

func TestAnalyzeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	a := New("test-model", "test-key", server.URL+"/v1", time.Second, testLogger())

	_, err := a.Analyze(models.SensorSnapshot{}, "")
	require.Error(t, err)
}

func TestBuildPromptListsEquipment(t *testing.T) {
	prompt := buildPrompt(models.SensorSnapshot{Sicaklik: 31.5}, "Şu an akşam/gece vakti.")

	require.Contains(t, prompt, "31.50")
	require.Contains(t, prompt, "Şu an akşam/gece vakti.")
	for _, name := range models.EquipmentNames() {
		require.Contains(t, prompt, name)
	}
}
