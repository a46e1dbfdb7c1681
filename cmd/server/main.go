package main

import (
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordduel/internal/room"
	"wordduel/internal/words"
	"wordduel/internal/ws"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", words.Count()).Msg("word list loaded")

	reg := room.NewRegistry()
	router := ws.NewRouter(reg)

	sweeper := room.NewSweeper(reg)
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New()
	app.Use(cors.New())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		ws.Serve(router, c)
	}))

	app.Get("/stats", func(c *fiber.Ctx) error {
		rooms, players := reg.Stats()
		return c.JSON(fiber.Map{
			"activeRooms":  rooms,
			"totalPlayers": players,
		})
	})

	app.Get("/rooms/:code", func(c *fiber.Ctx) error {
		info, ok := reg.Snapshot(c.Params("code"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "room not found"})
		}
		return c.JSON(info)
	})

	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	port := getEnv("PORT", "3000")
	log.Info().Str("port", port).Msg("starting wordduel server")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
