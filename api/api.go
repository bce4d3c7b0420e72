package main

import (
	"context"
	"time"

	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/fanbase-app/fanbase-api/handlers"
	"github.com/fanbase-app/fanbase-api/internal_handlers"
	"github.com/fanbase-app/fanbase-api/membership"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	jwtware "github.com/gofiber/contrib/jwt"
)

func main() {
	lg := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(lg)

	slog.Info("🚀 Starting api ✅")

	if len(os.Getenv("PORT")) > 0 {
		time.Sleep(4 * time.Second)
	}

	ctx := context.Background()

	godotenv.Load("../.env")

	readRedisOpts, err := redis.ParseURL(os.Getenv("READ_REDIS_URL"))

	if err != nil {
		slog.Error("Unable to read redis database",
			slog.String("error", err.Error()))

		panic(err)
	}

	writeRedisOpts, err := redis.ParseURL(os.Getenv("WRITE_REDIS_URL"))

	if err != nil {
		slog.Error("Unable to read redis database",
			slog.String("error", err.Error()))

		panic(err)
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{
		Network:  writeRedisOpts.Network,
		Addr:     writeRedisOpts.Addr,
		Username: writeRedisOpts.Username,
		Password: writeRedisOpts.Password,
		DB:       writeRedisOpts.DB,
	})

	defer queue.Close()

	db, err := sqlx.Connect("mysql", os.Getenv("DATABASE_URL"))

	if err != nil {
		slog.Error("Unable to connect to db",
			slog.String("error", err.Error()))

		panic(err)
	}

	defer db.Close()

	subs := membership.NewStore(db)

	rRdb := redis.NewClient(&redis.Options{
		Addr:     readRedisOpts.Addr,
		Username: readRedisOpts.Username,
		Password: readRedisOpts.Password,
		DB:       readRedisOpts.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			slog.Info("Read Connected")
			return nil
		},
	})

	if err := rRdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Read Redis Error",
			slog.String("error", err.Error()))
	}

	wRdb := redis.NewClient(&redis.Options{
		Addr:     writeRedisOpts.Addr,
		Username: writeRedisOpts.Username,
		Password: writeRedisOpts.Password,
		DB:       writeRedisOpts.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			slog.Info("Write Connected")
			return nil
		},
	})

	if err := wRdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Write Redis Error",
			slog.String("error", err.Error()))
	}

	app := fiber.New(fiber.Config{
		Network:   "tcp",
		BodyLimit: 209715200,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New())
	app.Use(idempotency.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		DisableColors: false,
		Format:        "${pid} ${locals:requestid} ${status} - ${method} ${path}​",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("I'm healthy!")
	})

	app.Get("/metrics", monitor.New(monitor.Config{Title: "Metrics"}))

	internal := fiber.New()

	app.Mount("/internal", internal)

	internal.Get("/sitemap", func(c *fiber.Ctx) error {
		return internal_handlers.Sitemap(c, ctx, db)
	})

	if len(os.Getenv("ENABLE_SEED_ENDPOINT")) > 0 {
		slog.Info("Seed endpoint enabled 👀")

		internal.Post("/seed", func(c *fiber.Ctx) error {
			return internal_handlers.Seed(c, ctx, db)
		})
	}

	api := fiber.New()

	app.Mount("/api", api)

	api.Use(func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		return c.Next()
	})

	api.Use(jwtware.New(jwtware.Config{
		SuccessHandler: func(c *fiber.Ctx) error {
			lg.Info("jwt authorized ✅")
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, h error) error {
			lg.Info("jwt unauthorized 👀")
			return c.Next()
		},
		SigningKey: jwtware.SigningKey{Key: []byte(os.Getenv("JWT_SECRET"))},
	}))

	api.Use(func(c *fiber.Ctx) error {
		return handlers.AuthorizationREST(c, ctx, db, wRdb, rRdb)
	})

	api.Get("/communities", func(c *fiber.Ctx) error {
		return handlers.Communities(c, ctx, db)
	})

	api.Get("/communities/:slug", func(c *fiber.Ctx) error {
		return handlers.Community(c, ctx, db, subs)
	})

	api.Get("/communities/:slug/posts", func(c *fiber.Ctx) error {
		return handlers.CommunityPosts(c, ctx, db, subs)
	})

	api.Get("/posts/:id", func(c *fiber.Ctx) error {
		return handlers.Post(c, ctx, db, subs)
	})

	api.Get("/posts/:id/comments", func(c *fiber.Ctx) error {
		return handlers.PostComments(c, ctx, db, subs)
	})

	api.Post("/communities", func(c *fiber.Ctx) error {
		return handlers.CreateCommunity(c, ctx, db)
	})

	api.Post("/communities/:id/join", func(c *fiber.Ctx) error {
		return handlers.JoinCommunity(c, ctx, db, subs, queue)
	})

	api.Post("/communities/:id/cancel", func(c *fiber.Ctx) error {
		return handlers.CancelSubscription(c, ctx, db, subs)
	})

	api.Post("/communities/:id/posts", func(c *fiber.Ctx) error {
		return handlers.CreatePost(c, ctx, db, queue)
	})

	api.Post("/posts/:id/comments", func(c *fiber.Ctx) error {
		return handlers.CreateComment(c, ctx, db, subs)
	})

	api.Post("/posts/:id/like", func(c *fiber.Ctx) error {
		return handlers.LikePost(c, ctx, db, subs)
	})

	api.Post("/posts/:id/unlike", func(c *fiber.Ctx) error {
		return handlers.UnlikePost(c, ctx, db, subs)
	})

	api.Get("/me", func(c *fiber.Ctx) error {
		return handlers.Me(c, ctx, db)
	})

	api.Put("/me/profile", func(c *fiber.Ctx) error {
		return handlers.UpdateProfile(c, ctx, db)
	})

	api.Post("/uploads", func(c *fiber.Ctx) error {
		return handlers.CreateUpload(c, ctx)
	})

	port := ":3001"

	if envPort := os.Getenv("PORT"); envPort != "" {
		port = ":" + envPort
	}

	app.Listen(port)
}
