package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`
	MaxUploadSize   string `envconfig:"MAX_UPLOAD_SIZE" default:"10MB"`

	// Populated from MaxUploadSize by the config loader
	MaxUploadSizeBytes int64 `ignored:"true"`

	// Data API
	DataAPIURL       string `envconfig:"DM_DATA_API_URL"`
	DataAPIAuthToken string `envconfig:"DM_DATA_API_AUTH_TOKEN"`
	DataAPITimeout   uint   `envconfig:"DM_DATA_API_TIMEOUT_SEC" default:"15"`

	// S3 Buckets
	AgreementsBucket     string `envconfig:"DM_AGREEMENTS_BUCKET"`
	CommunicationsBucket string `envconfig:"DM_COMMUNICATIONS_BUCKET"`
	AssetsURL            string `envconfig:"DM_ASSETS_URL"`
	SignedURLExpirySec   uint   `envconfig:"DM_SIGNED_URL_EXPIRY_SEC" default:"30"`

	// Declaration manifests. Embedded manifests are used when empty.
	ManifestsDir string `envconfig:"DM_MANIFESTS_DIR"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// or `dmadmin keys` to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Supplier user invitations
	SharedEmailKey     string `envconfig:"SHARED_EMAIL_KEY"`
	InviteEmailSalt    string `envconfig:"INVITE_EMAIL_SALT" default:"InviteEmailSalt"`
	CreateUserPath     string `envconfig:"CREATE_USER_PATH" default:"suppliers/create-user"`
	InviteEmailSubject string `envconfig:"INVITE_EMAIL_SUBJECT" default:"Your Digital Marketplace invitation"`
	InviteEmailFrom    string `envconfig:"INVITE_EMAIL_FROM" default:"enquiries@digitalmarketplace.service.gov.uk"`
	InviteEmailName    string `envconfig:"INVITE_EMAIL_NAME" default:"Digital Marketplace Admin"`
}
