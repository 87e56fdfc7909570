package infra

import (
	"fmt"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
)

// GoRecoverable runs job and restarts it after a panic until the retry
// budget is spent. A negative budget restarts forever; a spent budget is
// fatal to the process.
func GoRecoverable(retries int, name string, job func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		entry := log.WithFields(log.Fields{
			"job":    name,
			"origin": panicOrigin(),
		})
		if retries == 0 {
			entry.Fatalf("job panics with message: %v, retry budget exhausted", r)
		}
		if retries > 0 {
			retries--
		}
		entry.WithField("retries_left", retries).Errorf("job panics with message: %v, restarting", r)
		go GoRecoverable(retries, name, job)
	}()
	job()
}

func panicOrigin() string {
	var pc [16]uintptr
	n := runtime.Callers(3, pc[:])
	for _, frame := range pc[:n] {
		fn := runtime.FuncForPC(frame)
		if fn == nil {
			continue
		}
		name := fn.Name()
		if strings.HasPrefix(name, "runtime.") {
			continue
		}
		_, line := fn.FileLine(frame)
		return fmt.Sprintf("%s:%d", name, line)
	}
	return "unknown"
}
