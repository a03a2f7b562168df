package config

// JWTConfig содержит настройки проверки JWT токенов.
// Токены выпускает внешний провайдер аутентификации, сервис только проверяет подпись.
type JWTConfig struct {
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
}
