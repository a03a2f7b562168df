// Package shutdown предоставляет функциональность для корректного завершения приложения
// путем ожидания и обработки сигналов SIGINT и SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notesflow/pkg/logger"
)

// Hook - действие, выполняемое при завершении.
type Hook func(context.Context) error

const (
	logSignalReceived = "shutdown signal received"
	logHookFailed     = "shutdown hook failed"
	logTimeout        = "shutdown timeout exceeded"
)

// Wait блокирует выполнение до получения сигнала SIGINT/SIGTERM или отмены ctx,
// затем выполняет все хуки параллельно в рамках заданного timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Log(ctx).Info(ctx, logSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	Run(ctx, timeout, hooks...)
}

// Run выполняет хуки параллельно и ждет их завершения не дольше timeout.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	log := logger.Log(ctx)

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(hookCtx); err != nil {
				log.Error(hookCtx, logHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-hookCtx.Done():
		log.Warn(ctx, logTimeout, zap.Duration("timeout", timeout))
	}
}
