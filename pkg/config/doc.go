// Package config loads typed configuration structs from environment variables.
//
// Structs declare their variables with caarlos0/env tags; a .env file is read
// once via godotenv before the first parse. Parsed values are cached per type so
// packages can call Load for their own config without threading it through main.
//
//	var cfg billing.Config
//	config.MustLoad(&cfg)
package config
