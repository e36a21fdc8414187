package api

type Config struct {
	// AppURL is the public origin used for checkout and portal return links.
	AppURL          string `env:"APP_URL" envDefault:"http://localhost:3000"`
	MaxWebhookBytes int64  `env:"WEBHOOK_MAX_BYTES" envDefault:"1048576"`
}
