package config

// IdentityConfig holds the identity provider admin API configuration
type IdentityConfig struct {
	BaseURL  string `env:"IDENTITY_BASE_URL" env-default:"http://localhost:8080"`
	Realm    string `env:"IDENTITY_REALM" env-default:"advicehub"`
	ClientID string `env:"IDENTITY_CLIENT_ID" env-default:"admin-cli"`
	Username string `env:"IDENTITY_ADMIN_USERNAME" env-default:"admin"`
	Password string `env:"IDENTITY_ADMIN_PASSWORD" env-default:"pwd"`
}

// ChatConfig holds the chat backend API configuration. The client logs in as
// the technical user; its chat user id is resolved at startup when the
// override is left empty.
type ChatConfig struct {
	BaseURL           string `env:"CHAT_BASE_URL" env-default:"http://localhost:3000"`
	TechnicalUsername string `env:"CHAT_TECHNICAL_USERNAME" env-default:"technical"`
	TechnicalPassword string `env:"CHAT_TECHNICAL_PASSWORD" env-default:"pwd"`
	TechnicalUserID   string `env:"CHAT_TECHNICAL_USER_ID" env-default:""`
}

// AppointmentConfig holds the appointment service API configuration
type AppointmentConfig struct {
	BaseURL string `env:"APPOINTMENT_BASE_URL" env-default:"http://localhost:9000"`
	APIKey  string `env:"APPOINTMENT_API_KEY" env-default:""`
}
