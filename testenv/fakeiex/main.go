// Fake IEX Cloud server for end-to-end testing of iexc.
// It serves the latestPrice endpoint for a fixed set of symbols over plain HTTP.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	prices = map[string]float64{
		"AAPL":  189.84,
		"MSFT":  402.56,
		"BRK.B": 408.12,
		"TSLA":  175.34,
	}
)

func main() {
	token := os.Getenv("IEX_TOKEN")
	if token == "" {
		token = "Tsk_e2e"
	}
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	http.HandleFunc("/stable/stock/", func(w http.ResponseWriter, r *http.Request) {
		quoteHandler(w, r, token)
	})

	// Sleeps for ?d=<duration> before answering. Used for timeout tests.
	http.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		d, err := time.ParseDuration(r.URL.Query().Get("d"))
		if err != nil {
			d = 5 * time.Second
		}
		time.Sleep(d)
		fmt.Fprint(w, "slow")
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		fmt.Fprint(w, "OK")
	})

	log.Printf("Fake IEX server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

// quoteHandler serves /stable/stock/<SYMBOL>/quote/latestPrice?token=<token>.
// Every successful request drifts the price a little so repeated fetches
// produce distinct history records.
func quoteHandler(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Get("token") != token {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "Forbidden")
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/stable/stock/"), "/"), "/")
	if len(parts) != 3 || parts[1] != "quote" || parts[2] != "latestPrice" {
		http.NotFound(w, r)
		return
	}

	symbol := strings.ToUpper(parts[0])
	mu.Lock()
	price, ok := prices[symbol]
	if ok {
		prices[symbol] = price * 1.0001
	}
	mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Unknown symbol")
		return
	}

	log.Printf("[quote] %s = %.4f", symbol, price)
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, strconv.FormatFloat(price, 'f', -1, 64))
}
