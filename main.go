package main

import (
	auth "HeatExchange/internal/auth"
	exchanger "HeatExchange/internal/calc/exchanger"
	history "HeatExchange/internal/calc/history"
	importer "HeatExchange/internal/calc/importer"
	config "HeatExchange/internal/config"
	live "HeatExchange/internal/live"
	repo "HeatExchange/internal/repo"
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, db *sql.DB, cfg config.Config, defaults exchanger.Input) {
	store := repo.NewPostgresUserDB(db)

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store}
	limiter := auth.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()

	// the limiter guards credential endpoints only; calculations are cheap
	authApi := api.NewRoute().Subrouter()
	authApi.Use(limiter.LimitMiddleware)
	authApi.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	authApi.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	exchangerH := &exchanger.Handler{}
	secureApi.HandleFunc("/heat-exchanger/calc", exchangerH.Calc).Methods("POST")
	secureApi.HandleFunc("/heat-exchanger/batch", exchangerH.Batch).Methods("POST")

	liveS := live.NewServer(defaults.Parameters)
	secureApi.HandleFunc("/heat-exchanger/ws", liveS.ServeWS).Methods("GET")

	service := history.NewService(store, cfg.HistoryLimit)
	historyH := &history.Handler{Service: service, Defaults: defaults, FontPath: cfg.PDFFontPath}
	importH := &importer.Handler{Service: service, Defaults: defaults}
	secureApi.HandleFunc("/calculations/import", importH.Import).Methods("POST")
	history.Routes(secureApi, historyH)

	authFileServer := http.FileServer(http.Dir("./static/auth"))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	mainFileServer := http.FileServer(http.Dir("./static/main"))
	mux.PathPrefix("/").
		Handler(mainFileServer)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Ошибка конфигурации: ", err)
	}
	defaults, err := config.LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		log.Fatal("Ошибка чтения значений по умолчанию: ", err)
	}

	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("База не отвечает: ", err)
	}
	defer db.Close()
	if err := repo.NewPostgresUserDB(db).EnsureSchema(ctx); err != nil {
		log.Fatal("Ошибка создания схемы: ", err)
	}

	mux := mux.NewRouter()
	HandleList(mux, db, cfg, defaults)
	handler := CORS(mux)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithField("addr", cfg.Addr).Info("Starting server")
		if err := server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Ошибка при остановке сервера: %v", err)
	}
	log.Info("Сервер успешно остановлен")

	wg.Wait()
}
