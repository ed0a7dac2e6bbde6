package control

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// cycleRunner позволяет подменить цикл в тестах планировщика.
type cycleRunner interface {
	Run()
}

// Loop — планировщик циклов управления с двумя состояниями: остановлен
// и запущен. Ровно один рабочий goroutine выполняет циклы строго
// последовательно; остановка кооперативная и срабатывает между циклами.
type Loop struct {
	cycle    cycleRunner
	interval time.Duration
	logger   *logrus.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop создает остановленный планировщик с заданным интервалом.
func NewLoop(cycle cycleRunner, interval time.Duration, logger *logrus.Logger) *Loop {
	return &Loop{
		cycle:    cycle,
		interval: interval,
		logger:   logger,
	}
}

// Start переводит планировщик в состояние Running и запускает рабочий
// goroutine. Повторный вызов при работающем планировщике игнорируется.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)
	l.logger.Infof("Control loop started, interval %s", l.interval)
}

// Stop сигнализирует рабочему goroutine завершиться после текущего цикла
// или ожидания и дожидается выхода. Текущая операция не прерывается.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.cancel == nil {
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.done = nil
	l.mu.Unlock()

	cancel()
	<-done
	l.logger.Info("Control loop stopped")
}

// Running сообщает текущее состояние планировщика.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		l.runCycle()

		// Полный интервал ожидания после завершения цикла, сколько бы
		// цикл ни длился: затянувшийся советник не схлопывает паузу.
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.interval)

		// При одновременной готовности отмены и таймера выход детерминирован
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// runCycle изолирует отказ одного цикла: паника логируется на границе
// планировщика, после чего выдерживается полный интервал до повтора.
func (l *Loop) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("Control cycle failed: %v", r)
		}
	}()

	l.cycle.Run()
}
