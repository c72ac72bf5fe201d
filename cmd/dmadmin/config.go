package main

import (
	"context"
	"fmt"

	"dmadmin/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/docker/go-units"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	required := map[string]string{
		"DM_DATA_API_URL":          c.DataAPIURL,
		"DM_DATA_API_AUTH_TOKEN":   c.DataAPIAuthToken,
		"DM_AGREEMENTS_BUCKET":     c.AgreementsBucket,
		"DM_COMMUNICATIONS_BUCKET": c.CommunicationsBucket,
		"COGNITO_CLIENT_ID":        c.CognitoClientID,
		"COGNITO_ISSUER_URL":       c.CognitoIssuerURL,
		"COOKIE_HASH_KEY":          c.CookieHashKey,
		"COOKIE_BLOCK_KEY":         c.CookieBlockKey,
		"SHARED_EMAIL_KEY":         c.SharedEmailKey,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("set %s", name)
		}
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("parse MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %q", c.MaxUploadSize)
	}
	c.MaxUploadSizeBytes = size

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 30
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
