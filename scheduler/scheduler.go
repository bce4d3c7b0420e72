package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/fanbase-app/fanbase-api/membership"
	"github.com/fanbase-app/fanbase-api/tasks"
	"github.com/redis/go-redis/v9"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	lg := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(lg)

	slog.Info("🚀 Starting scheduler ✅")

	if len(os.Getenv("PORT")) > 0 {
		time.Sleep(4 * time.Second)
	}

	godotenv.Load("../.env")

	db, err := sqlx.Connect("mysql", os.Getenv("DATABASE_URL"))

	if err != nil {
		slog.Error("Unable to connect to db",
			slog.String("error", err.Error()))

		panic(err)
	}

	defer db.Close()

	subs := membership.NewStore(db)

	writeRedisOpts, err := redis.ParseURL(os.Getenv("WRITE_REDIS_URL"))

	if err != nil {
		slog.Error("Unable to read redis database",
			slog.String("error", err.Error()))

		panic(err)
	}

	redisOpt := asynq.RedisClientOpt{
		Network:  writeRedisOpts.Network,
		Addr:     writeRedisOpts.Addr,
		Username: writeRedisOpts.Username,
		Password: writeRedisOpts.Password,
		DB:       writeRedisOpts.DB,
	}

	queue := asynq.NewClient(redisOpt)

	defer queue.Close()

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()

	mux.HandleFunc(tasks.TypeEmailDelivery, tasks.HandleEmailDeliveryTask)

	mux.HandleFunc(tasks.TypeNewPostFanout, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleNewPostFanoutTask(ctx, t, db, subs, queue)
	})

	mux.HandleFunc(tasks.TypeExpireSubscriptions, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleExpireSubscriptionsTask(ctx, t, subs)
	})

	periodic := asynq.NewScheduler(redisOpt, nil)

	if _, err := periodic.Register("@every 10m", tasks.NewExpireSubscriptionsTask()); err != nil {
		slog.Error("Unable to register expiry sweep",
			slog.String("error", err.Error()))

		panic(err)
	}

	go func() {
		if err := periodic.Run(); err != nil {
			slog.Error("Periodic scheduler crashed",
				slog.String("error", err.Error()))
		}
	}()

	if err := srv.Run(mux); err != nil {
		slog.Error("Scheduler crashed",
			slog.String("error", err.Error()))
	}
}
