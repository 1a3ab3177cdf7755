package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	config.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	root := http.NewServeMux()
	root.HandleFunc("/api/health", healthCheck)
	root.Handle("/", routes.RegisterRoutes())

	handler := enableCORS(root)
	logrus.WithField("port", port).Info("server starting")
	logrus.Fatal(http.ListenAndServe(":"+port, handler))
}

// healthCheck reports liveness by exercising the connection pool, not
// just process uptime.
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "connected"
	code := http.StatusOK
	if config.DB == nil {
		status = "not initialized"
		code = http.StatusServiceUnavailable
	} else if err := config.DB.Exec("SELECT 1").Error; err != nil {
		status = "unreachable"
		code = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if code != http.StatusOK {
		overall = "unhealthy"
	}
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q,"database_status":%q}`, overall, status)
}

// enableCORS allows the configured frontend origin only. A wildcard
// would let any site drive the admin API with a stolen token.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", config.FrontendURL())
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
