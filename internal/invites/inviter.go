package invites

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"dmadmin/internal/mailer"
	"dmadmin/pkg/types"

	"github.com/sirupsen/logrus"
)

//go:embed templates
var templateFS embed.FS

type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type AuditAPI interface {
	CreateAuditEvent(ctx context.Context, event types.AuditEvent) error
}

// Inviter emails supplier users a link to create their account.
type Inviter struct {
	logger    *logrus.Logger
	tokens    *Tokens
	sender    Sender
	api       AuditAPI
	templates *template.Template

	createUserPath string
	subject        string
	from           string
	fromName       string
}

func New(config *types.Config, logger *logrus.Logger, api AuditAPI, sender Sender) (*Inviter, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invite templates: %w", err)
	}

	return &Inviter{
		logger:         logger,
		tokens:         NewTokens(config.SharedEmailKey, config.InviteEmailSalt),
		sender:         sender,
		api:            api,
		templates:      templates,
		createUserPath: strings.Trim(config.CreateUserPath, "/"),
		subject:        config.InviteEmailSubject,
		from:           config.InviteEmailFrom,
		fromName:       config.InviteEmailName,
	}, nil
}

// URL is the account creation link for a token. rootURL is the site root
// including its trailing slash.
func (i *Inviter) URL(rootURL, token string) string {
	if !strings.HasSuffix(rootURL, "/") {
		rootURL += "/"
	}
	return fmt.Sprintf("%s%s/%s", rootURL, i.createUserPath, token)
}

// Invite sends an invitation to join supplier and records it in the audit
// log. A failure to send matches types.ErrServiceUnavailable.
func (i *Inviter) Invite(ctx context.Context, supplier *types.Supplier, emailAddress, rootURL string, actor types.Actor) error {
	token, err := i.tokens.Generate(Invite{
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		EmailAddress: emailAddress,
	})
	if err != nil {
		return err
	}

	var body bytes.Buffer
	err = i.templates.ExecuteTemplate(&body, "email.invite_user", map[string]any{
		"URL":          i.URL(rootURL, token),
		"SupplierName": supplier.Name,
		"ValidDays":    int(TokenValidity.Hours() / 24),
	})
	if err != nil {
		return fmt.Errorf("failed to render invite email: %w", err)
	}

	err = i.sender.Send(ctx, mailer.Message{
		To:       emailAddress,
		From:     i.from,
		FromName: i.fromName,
		Subject:  i.subject,
		HTML:     body.String(),
		Tags:     []string{"user-invite"},
	})
	if err != nil {
		i.logger.WithError(err).WithFields(logrus.Fields{
			"email":         emailAddress,
			"supplier_id":   supplier.ID,
			"supplier_name": supplier.Name,
		}).Error("invitation email failed to send")
		return fmt.Errorf("failed to send user invite: %w: %w", types.ErrServiceUnavailable, err)
	}

	err = i.api.CreateAuditEvent(ctx, types.AuditEvent{
		Type:       types.AuditInviteUser,
		User:       actor.Email,
		ObjectType: "suppliers",
		ObjectID:   strconv.Itoa(supplier.ID),
		Data:       map[string]any{"invitedEmail": emailAddress},
	})
	if err != nil {
		return fmt.Errorf("failed to audit user invite: %w", err)
	}

	return nil
}
