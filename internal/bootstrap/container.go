package bootstrap

import (
	"context"
	"log"
	"os"

	"delivery-scheduler-be/internal/config"
	"delivery-scheduler-be/internal/controller"
	"delivery-scheduler-be/internal/pkg/idempotency"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/repository/unitofwork"
	"delivery-scheduler-be/internal/scheduler"
	"delivery-scheduler-be/internal/service"
	adminEvents "delivery-scheduler-be/pkg/admin/events"
	"delivery-scheduler-be/pkg/admin/pause"
	"delivery-scheduler-be/pkg/admin/reactivation"
	"delivery-scheduler-be/pkg/admin/schedule"
	"delivery-scheduler-be/pkg/delivery"
	"delivery-scheduler-be/pkg/events"
	"delivery-scheduler-be/pkg/subscription"

	pktNats "delivery-scheduler-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ScheduleController     controller.IScheduleController
	PauseController        controller.IPauseController
	SubscriptionController controller.ISubscriptionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Scheduler       *scheduler.Scheduler

	Logger  logger.ILogger
	closers []func()
}

// Close releases broker connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	jobLogger := logger.NewIsolatedLogger(cfg.App.JobLogFilePath)
	calendar := delivery.NewCalendar(cfg.Schedule.Location(), cfg.Schedule.Weekday(), cfg.Schedule.CutoffHour)

	container := &Container{Logger: sysLogger}

	// 2. Event Bus: NATS when both directions connect, in-process channel otherwise
	var bus events.Bus
	var subscriber events.Subscriber

	natsPub, pubErr := pktNats.NewPublisher(cfg.Bus.NatsURL)
	natsSub, subErr := pktNats.NewSubscriber(cfg.Bus.NatsURL)
	if pubErr == nil && subErr == nil {
		bus = natsPub
		subscriber = natsSub.Broadcast()
		container.closers = append(container.closers, natsPub.Close, natsSub.Close)
		log.Printf("[INFO] Using NATS event bus (%s)", cfg.Bus.NatsURL)
	} else {
		log.Printf("[WARN] NATS unavailable (publisher: %v, subscriber: %v). Using in-process bus", pubErr, subErr)
		if natsPub != nil {
			natsPub.Close()
		}
		if natsSub != nil {
			natsSub.Close()
		}
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		channelBus := events.NewChannelBus(pubSub)
		bus = channelBus
		subscriber = channelBus
		container.closers = append(container.closers, func() { _ = pubSub.Close() })
	}

	// 3. Redis: idempotency keys and the scheduler lock, with local fallbacks
	var idemStore idempotency.Store
	var locker scheduler.Locker

	opt, err := redis.ParseURL(cfg.Bus.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Bus.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Idempotency and job lock are local only", err)
		_ = rdb.Close()
		idemStore = idempotency.NewMemoryStore()
		locker = scheduler.NewLocalLocker(nil)
	} else {
		idemStore = idempotency.NewRedisStore(rdb)
		locker = scheduler.NewRedisLocker(rdb, instanceName())
		container.closers = append(container.closers, func() { _ = rdb.Close() })
	}

	// 4. Domain Components
	publisher := adminEvents.NewBusPublisher(bus, sysLogger)
	policyCache := delivery.NewPolicyCache(uowFactory.NewUnitOfWork(context.Background()).SchedulePolicyRepository(), sysLogger)
	pauseCfg := pause.Config{
		PoolSize:   cfg.Schedule.PausePoolSize,
		RowTimeout: cfg.Schedule.PauseRowTimeout,
	}

	scheduleManager := schedule.NewManager(sysLogger, policyCache, calendar, publisher, nil)
	pauser := pause.NewOrchestrator(uowFactory, publisher, sysLogger, pauseCfg, nil)
	reactivator := reactivation.NewOrchestrator(uowFactory, policyCache, calendar, publisher, sysLogger, pauseCfg, nil)
	subscriptionManager := subscription.NewManager(sysLogger, policyCache, calendar, publisher, nil)

	// 5. Services
	adminService := service.NewAdminService(uowFactory, sysLogger, calendar, scheduleManager, pauser, reactivator)
	subscriptionService := service.NewSubscriptionService(uowFactory, subscriptionManager, calendar)

	container.ConsumerService = service.NewConsumerService(subscriber, policyCache, sysLogger)
	container.Scheduler = scheduler.New(reactivator, locker, jobLogger, scheduler.Config{
		Spec:     cfg.Schedule.ReactivationCronSpec,
		Location: calendar.Location,
	})

	// 6. Controllers
	guard := idempotency.New(idemStore, sysLogger, idempotency.Config{TTL: cfg.Schedule.IdempotencyTTL})
	container.ScheduleController = controller.NewScheduleController(adminService)
	container.PauseController = controller.NewPauseController(adminService, guard)
	container.SubscriptionController = controller.NewSubscriptionController(subscriptionService)

	return container
}

func instanceName() string {
	host, err := os.Hostname()
	if err != nil {
		return "delivery-scheduler"
	}
	return host
}
