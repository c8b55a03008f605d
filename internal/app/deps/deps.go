package deps

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
	"waterreminder/internal/config"
	"waterreminder/internal/core/domain/alarm"
	"waterreminder/internal/core/domain/alert"
	dl "waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	duow "waterreminder/internal/core/domain/unit_of_work"
	"waterreminder/internal/db/kv"
	"waterreminder/internal/db/migrations"
	reminderstore "waterreminder/internal/db/reminder_store"
	uow "waterreminder/internal/db/unit_of_work"
	alarmclock "waterreminder/internal/implementations/alarm_clock"
	alarmscheduler "waterreminder/internal/implementations/alarm_scheduler"
	alertnotifier "waterreminder/internal/implementations/alert_notifier"
	alertsound "waterreminder/internal/implementations/alert_sound"
	"waterreminder/internal/implementations/email"
	idgenerator "waterreminder/internal/implementations/id_generator"
	"waterreminder/internal/implementations/logging"
	"waterreminder/internal/implementations/permissions"
	"waterreminder/internal/implementations/ringer"
	sseevents "waterreminder/internal/implementations/sse_events"
	telegramnotifier "waterreminder/internal/implementations/telegram_notifier"
	"waterreminder/internal/rabbitmq"
	rabbitmqalarms "waterreminder/internal/rabbitmq/publishers/alarm_scheduler"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jmhodges/clock"
	"github.com/r3labs/sse/v2"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger
	Location  *time.Location
	Clock     clock.Clock
	Now       func() time.Time

	Store       kv.Store
	Rabbitmq    *rabbitmq.Connection
	SseServer   *sse.Server
	TelegramBot *bot.Bot

	UnitOfWork          duow.UnitOfWork
	ReminderIDGenerator reminder.IDGenerator
	Permissions         *permissions.Static

	AlarmClock     *alarmclock.Clock
	AlarmScheduler alarm.Scheduler

	Notifier alert.Notifier
	Ringer   *ringer.Ringer
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	closeLogger := deps.initLogger()
	flushSentry := deps.initSentry()
	deps.initLocation()

	deps.Clock = clock.New()
	deps.Now = func() time.Time { return deps.Clock.Now() }
	deps.Permissions = permissions.NewStatic(deps.Config.ExactAlarmsAllowed, deps.Config.NotificationsAllowed)

	closeStore := deps.initStore()
	closeSseServer := deps.initSseServer()
	closeRabbitmqConn := deps.initRabbitmqConnection()

	deps.UnitOfWork = uow.NewStoreUnitOfWork(reminderstore.New(deps.Logger, deps.Store, deps.Config.StoreKey))
	deps.ReminderIDGenerator = idgenerator.NewSequence()

	closeAlarmScheduler := deps.initAlarmScheduler()

	deps.initTelegramBot()
	deps.initNotifier()
	deps.Ringer = ringer.New(
		deps.Logger,
		alertsound.NewCommandPlayer(deps.Logger, deps.Config.AlertSoundCommand),
		sseevents.NewVibrator(deps.Logger, deps.SseServer, deps.Config.SseStream),
		deps.Notifier,
		deps.Permissions,
		deps.Clock,
		deps.Config.AlertTimeout,
	)

	return deps, func() {
		closeFuncs := []func(){
			closeAlarmScheduler,
			closeSseServer,
			closeRabbitmqConn,
			closeStore,
			closeLogger,
			flushSentry,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.LogDevelopment)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initLocation() {
	loc, err := deps.Config.Location()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not load time zone.", dl.Entry("err", err))
		panic(err)
	}
	deps.Location = loc
}

func (deps *Deps) initStore() func() {
	switch deps.Config.StoreBackend {
	case config.StoreRedis:
		return deps.initRedisStore()
	case config.StorePostgres:
		return deps.initPgxStore()
	default:
		return deps.initSqliteStore()
	}
}

func (deps *Deps) initSqliteStore() func() {
	db, err := kv.OpenSQLite(deps.Config.SqlitePath)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not open SQLite DB.", dl.Entry("err", err))
		panic(err)
	}
	store, err := kv.NewGorm(db)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not migrate SQLite DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.Store = store
	deps.Logger.Info(context.Background(), "Using SQLite store.", dl.Entry("path", deps.Config.SqlitePath))
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SQLite DB.")
		store.Close()
		deps.Logger.Info(context.Background(), "SQLite DB shut down.")
	}
}

func (deps *Deps) initRedisStore() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Store = kv.NewRedis(redisClient)
	deps.Logger.Info(context.Background(), "Using Redis store.")
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initPgxStore() func() {
	if err := migrations.Apply(deps.Config.PostgresqlURL); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.Store = kv.NewPgx(db)
	deps.Logger.Info(context.Background(), "Using PostgreSQL store.")
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	if !deps.Config.IsRabbitmqEnabled() {
		deps.Logger.Info(context.Background(), "RabbitMQ is disabled.")
		return func() {}
	}

	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

// initAlarmScheduler arms exact alarms on the in-process clock. Best-effort
// alarms go through the RabbitMQ delayed exchange when it is configured.
func (deps *Deps) initAlarmScheduler() func() {
	deps.AlarmClock = alarmclock.New(deps.Logger, deps.Clock)

	var bestEffort alarm.Backend = deps.AlarmClock
	closeBestEffort := func() {}
	if deps.Rabbitmq != nil {
		rabbitmqChannel, err := deps.Rabbitmq.Channel()
		if err != nil {
			deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
			panic(err)
		}
		err = rabbitmqChannel.DeclareDelayedQueue(
			deps.Config.RabbitmqDelayedExchange,
			deps.Config.RabbitmqAlarmQueue,
		)
		if err != nil {
			deps.Logger.Error(context.Background(), "Could not declare RabbitMQ alarm queue.", dl.Entry("err", err))
			panic(err)
		}
		bestEffort = rabbitmqalarms.NewRabbitMQ(
			deps.Logger,
			rabbitmqChannel,
			deps.Config.RabbitmqDelayedExchange,
			deps.Config.RabbitmqAlarmQueue,
			deps.Now,
		)
		closeBestEffort = func() { rabbitmqChannel.Close() }
	}

	deps.AlarmScheduler = alarmscheduler.New(
		deps.Logger,
		deps.AlarmClock,
		bestEffort,
		deps.Permissions,
		idgenerator.NewUUIDTokens(),
		deps.Now,
		deps.Location,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down alarm scheduler.")
		deps.AlarmClock.Close()
		closeBestEffort()
		deps.Logger.Info(context.Background(), "Alarm scheduler shut down.")
	}
}

func (deps *Deps) initSseServer() func() {
	deps.SseServer = sse.New()
	deps.SseServer.AutoStream = true
	deps.SseServer.AutoReplay = false
	deps.SseServer.CreateStream(deps.Config.SseStream)
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SSE server.")
		deps.SseServer.Close()
		deps.Logger.Info(context.Background(), "SSE server shut down.")
	}
}

func (deps *Deps) initTelegramBot() {
	if !deps.Config.IsTelegramEnabled() {
		deps.Logger.Info(context.Background(), "Telegram is disabled.")
		return
	}

	timeout := deps.Config.TelegramRequestTimeout
	b, err := bot.New(
		deps.Config.TelegramToken,
		bot.WithHTTPClient(timeout, &http.Client{Timeout: 2 * timeout}),
	)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create Telegram bot.", dl.Entry("err", err))
		panic(err)
	}
	deps.TelegramBot = b
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initNotifier() {
	notifiers := []alert.Notifier{
		sseevents.NewNotifier(deps.Logger, deps.SseServer, deps.Config.SseStream),
	}
	if deps.TelegramBot != nil {
		notifiers = append(
			notifiers,
			telegramnotifier.New(deps.Logger, deps.TelegramBot, deps.Config.TelegramChatID),
		)
	}
	if deps.Config.IsEmailEnabled() {
		deps.initAwsConfig()
		notifiers = append(notifiers, email.NewAlertSender(
			deps.AwsConfig,
			deps.Config.AwsEmailSender,
			deps.Config.AwsEmailRecipient,
			deps.Config.AwsEmailAlertTemplate,
			deps.Config.BaseURL,
		))
	}

	composite := alertnotifier.NewComposite(notifiers...)
	deps.Notifier = composite
	deps.Logger.Info(context.Background(), "Alert notifiers are ready.", dl.Entry("count", composite.Len()))
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDsn != nil {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDsn.String(),
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger = logging.NewSentryLogger(deps.Logger, sentry.CurrentHub())
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
