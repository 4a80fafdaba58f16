package api

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"runtime/debug"

	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkLogger "gamelink-suite/utils/logger"

	"github.com/gofiber/fiber/v2"
)

func megabytes(b uint64) string {
	return fmt.Sprintf("%.1f", float64(b)/1024/1024)
}

// RegisterDebugRoutes exposes runtime stats under /api/debug and, when
// pprofAddr is set, starts a pprof listener on it.
func RegisterDebugRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers, pprofAddr string) {
	logger := gamelinkLogger.NewLogger("Debug", "debug", nil)

	if pprofAddr != "" {
		go func() {
			logger.Infof("Starting pprof server on %s", pprofAddr)
			if err := http.ListenAndServe(pprofAddr, nil); err != nil {
				logger.Errorf("pprof server failed: %v", err)
			}
		}()
	}

	r := apiHelper.Router.Group("/api/debug")
	r.Get("/memstats", func(c *fiber.Ctx) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return c.JSON(fiber.Map{
			"alloc_mb":        megabytes(m.Alloc),
			"sys_mb":          megabytes(m.Sys),
			"heap_alloc_mb":   megabytes(m.HeapAlloc),
			"heap_inuse_mb":   megabytes(m.HeapInuse),
			"heap_objects":    m.HeapObjects,
			"goroutines":      runtime.NumGoroutine(),
			"num_gc":          m.NumGC,
			"gc_cpu_fraction": fmt.Sprintf("%.4f", m.GCCPUFraction),
		})
	})

	r.Post("/freemem", func(c *fiber.Ctx) error {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		runtime.GC()
		debug.FreeOSMemory()
		runtime.ReadMemStats(&after)

		var freed uint64
		if before.HeapAlloc > after.HeapAlloc {
			freed = before.HeapAlloc - after.HeapAlloc
		}
		return c.JSON(fiber.Map{
			"before_heap_mb": megabytes(before.HeapAlloc),
			"after_heap_mb":  megabytes(after.HeapAlloc),
			"freed_mb":       megabytes(freed),
		})
	})
}
