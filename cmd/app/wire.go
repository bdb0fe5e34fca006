//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/roofbook/internal/bootstrap"
	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/lead"
	"github.com/yanqian/roofbook/internal/infra/config"
	"github.com/yanqian/roofbook/internal/infra/notify"
	httpiface "github.com/yanqian/roofbook/internal/interface/http"
	"github.com/yanqian/roofbook/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTelemetry,
		provideWeeklyHours,
		provideResolver,
		provideBookingConfig,
		provideAuthConfig,
		providePostgres,
		provideValkey,
		provideAppointmentRepository,
		provideLeadRepository,
		providePaymentRepository,
		provideStaffRepository,
		provideHoldStore,
		provideQueue,
		provideDispatcher,
		provideReceiptStore,
		provideBookingLeads,
		provideBookingService,
		providePaymentService,
		provideReminderScheduler,
		provideCleanup,
		booking.NewOperations,
		lead.NewService,
		auth.NewService,
		wire.Bind(new(booking.Notifier), new(*notify.Dispatcher)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
