package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/comms"
	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	stdLogger := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(stdLogger)
	} else {
		logger = logsvc.NewRollbarLogger(stdLogger, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	userRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(userRepo)
	schSvc := school.NewService(sqlxrepos.NewSchoolRepository(db), userRepo)
	acadSvc := academics.NewService(
		sqlxrepos.NewAcademicsRepository(db),
		usrSvc, usrSvc, schSvc, mailSvc,
		conf.Reporting.AveragePrecision,
	)
	finSvc := finance.NewService(sqlxrepos.NewFinanceRepository(db), usrSvc)
	commsSvc := comms.NewService(sqlxrepos.NewCommsRepository(db))
	dashSvc := dashboard.NewService(usrSvc, schSvc, acadSvc, finSvc, commsSvc)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:         ":" + conf.Server.Port,
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			SchoolSvc:    schSvc,
			AcademicsSvc: acadSvc,
			FinanceSvc:   finSvc,
			CommsSvc:     commsSvc,
			DashboardSvc: dashSvc,
		},
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErrs := make(chan error, 1)
	go func() {
		logger.Info("server listening on :" + conf.Server.Port)
		serverErrs <- app.Start()
	}()

	select {
	case err := <-serverErrs:
		logger.Fatal("server error", err)
	case sig := <-shutdown:
		logger.Info("shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Fatal("graceful shutdown failed", err)
		}
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}
