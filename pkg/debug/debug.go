package debug

import (
	"errors"
	"net/http"
	"net/http/pprof"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var errNotReady = errors.New("not ready")

var (
	ready atomic.Bool

	readyCheckMu sync.RWMutex
	readyCheck   func() error

	// Extra metrics served next to the default registry
	registry = prometheus.NewRegistry()
)

func SetReady() {
	ready.Store(true)
}

func SetNotReady() {
	ready.Store(false)
}

// SetReadyCheck registers a check consulted by IsReady after SetReady was
// called. A non-nil error marks the process as not ready and is written as
// the /ready response body.
func SetReadyCheck(check func() error) {
	readyCheckMu.Lock()
	defer readyCheckMu.Unlock()
	readyCheck = check
}

func IsReady() bool {
	return checkReady() == nil
}

func checkReady() error {
	if !ready.Load() {
		return errNotReady
	}

	readyCheckMu.RLock()
	check := readyCheck
	readyCheckMu.RUnlock()

	if check != nil {
		return check()
	}
	return nil
}

// Registry returns the registry whose metrics are exported on /metrics
// alongside the default ones.
func Registry() prometheus.Registerer {
	return registry
}

// GetMux returns the debug mux: /metrics, /health, /ready and pprof under /debug/.
func GetMux() *http.ServeMux {
	mux := http.NewServeMux()

	gatherers := prometheus.Gatherers{
		prometheus.DefaultGatherer,
		registry,
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	mux.Handle("/debug/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/allocs/", pprof.Handler("allocs"))
	mux.Handle("/debug/goroutine/", pprof.Handler("goroutine"))
	mux.Handle("/debug/heap/", pprof.Handler("heap"))
	mux.Handle("/debug/cmdline", http.HandlerFunc(pprof.Cmdline))
	mux.Handle("/debug/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/symbol", http.HandlerFunc(pprof.Symbol))
	mux.Handle("/debug/trace", http.HandlerFunc(pprof.Trace))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := checkReady(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
