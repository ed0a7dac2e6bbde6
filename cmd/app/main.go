package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	sera "github.com/iwtcode/seraAdapter"
)

func main() {
	// 1) Загрузка конфигурации
	err := godotenv.Load("./.env")
	if err != nil {
		log.Printf("Warning: Could not load .env file. Using default values or environment variables: %v", err)
	}

	cfg := sera.Load()

	// 2) Создание клиента: соединение с ПЛК и советник
	client, err := sera.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create sera client: %v", err)
	}
	defer client.Close()

	logger := client.GetLogger()
	logger.Infof("Configuration loaded: PLC=%s rack=%d slot=%d, interval=%s, model=%s",
		cfg.PLCAddress, cfg.Rack, cfg.Slot, cfg.MonitoringInterval, cfg.Model)

	// 3) Запуск цикла мониторинга и управления
	client.Start()
	logger.Info("Sera kontrol sistemi başlatıldı")

	// 4) Кооперативная остановка по сигналу
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received, stopping control loop")
	client.Stop()
	logger.Info("Sera kontrol sistemi durduruldu")
}
