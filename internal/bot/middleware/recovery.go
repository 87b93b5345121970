package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// RecoverFromPanic вызывается через defer. onPanic (если не nil) получает
// значение паники, например чтобы увеличить счётчик.
func RecoverFromPanic(onPanic func(any)) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{
			"component": "panic_recovery",
			"panic":     fmt.Sprintf("%v", r),
			"stack":     string(debug.Stack()),
		}).Error("ПАНИКА в обработчике — восстановлено")
		if onPanic != nil {
			onPanic(r)
		}
	}
}
