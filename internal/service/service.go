package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"github.com/Cleo-Systems/elevate-scr/internal/service/logging"
	"github.com/Cleo-Systems/elevate-scr/internal/service/runtime"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7"
	scrHTTP "github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/http"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/commands"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/queries"
)

type Service struct {
	logger     *zap.Logger
	httpServer *http.Server
}

func NewSCRService() (*Service, error) {
	appConfig, err := config.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig)
	if err != nil {
		return nil, err
	}

	// outbound adapter and inbound mapper set
	spineClient := spine.NewClient(appConfig)
	registry := hl7.NewRegistry()

	// init commands
	uploadHandler := commands.NewUploadSummaryHandler(spineClient, appConfig)
	setPermissionsHandler := commands.NewSetPermissionsHandler(spineClient)
	cmdBus := app.NewCommandBus(uploadHandler, setPermissionsHandler)

	// init queries
	getRecordHandler := queries.NewGetRecordQueryHandler(spineClient, registry)
	getPermissionsHandler := queries.NewGetPermissionsQueryHandler(spineClient)
	queryBus := app.NewQueryBus(getRecordHandler, getPermissionsHandler)

	// init http handler
	scrHTTPServer := scrHTTP.NewServer(cmdBus, queryBus)

	httpServer, err := runtime.NewHTTPServer(appConfig, logger, scrHTTPServer)
	if err != nil {
		return nil, err
	}

	return &Service{
		logger:     logger,
		httpServer: httpServer,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait for SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		return err
	}

	s.logger.Info("server stopped")
	_ = s.logger.Sync()

	return nil
}
