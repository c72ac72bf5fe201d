package internal

const (
	COOKIE_ID_TOKEN_NAME = "dmadmin_id_token"
	COOKIE_REDIRECT_NAME = "dmadmin_redirect"
	COOKIE_FLASH_NAME    = "dmadmin_flash"
)
