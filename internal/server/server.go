package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"dmadmin/internal/agreements"
	"dmadmin/internal/apiclient"
	"dmadmin/internal/declarations"
	"dmadmin/internal/documents"
	"dmadmin/internal/invites"
	"dmadmin/internal/storage"
	"dmadmin/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type cognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type objectStore interface {
	List(ctx context.Context, prefix string) ([]types.StoredObject, error)
	Save(ctx context.Context, path string, body io.Reader, opts storage.SaveOptions) error
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	api            *apiclient.Client
	agreements     *agreements.Manager
	declarations   *declarations.Editor
	inviter        *invites.Inviter
	communications objectStore

	cognitoClient cognitoAPI
	cookie        *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient *cognitoidentityprovider.Client,
	api *apiclient.Client,
	agreementManager *agreements.Manager,
	declarationEditor *declarations.Editor,
	inviter *invites.Inviter,
	communications *storage.Bucket,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		api:            api,
		agreements:     agreementManager,
		declarations:   declarationEditor,
		inviter:        inviter,
		communications: communications,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/", s.handleHome, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin, types.RoleAdminCCSCategory, types.RoleAdminCCSSourcing))
			r.HandleFunc("/suppliers", s.handleFindSuppliers, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin))

			r.HandleFunc("/communications/:framework", s.handleGetCommunications, http.MethodGet)
			r.HandleFunc("/communications/:framework", s.handlePostCommunications, http.MethodPost)

			r.HandleFunc("/suppliers/:supplierID/edit/name", s.handleGetSupplierName, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/edit/name", s.handlePostSupplierName, http.MethodPost)

			r.HandleFunc("/suppliers/users/:userID/unlock", s.handlePostUnlockUser, http.MethodPost)
			r.HandleFunc("/suppliers/users/:userID/activate", s.handlePostActivateUser, http.MethodPost)
			r.HandleFunc("/suppliers/users/:userID/deactivate", s.handlePostDeactivateUser, http.MethodPost)
			r.HandleFunc("/suppliers/:supplierID/move-existing-user", s.handlePostMoveUser, http.MethodPost)
			r.HandleFunc("/suppliers/:supplierID/invite-user", s.handlePostInviteUser, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin, types.RoleAdminCCSCategory))

			r.HandleFunc("/suppliers/users", s.handleGetSupplierUsers, http.MethodGet)
			r.HandleFunc("/suppliers/services", s.handleGetSupplierServices, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin, types.RoleAdminCCSSourcing))

			r.HandleFunc("/suppliers/:supplierID/agreements/:framework", s.handleGetSignedAgreement, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/agreements/:framework/:document", s.handleGetAgreementDocument, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/agreement/:framework", s.handleGetLegacyAgreement, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdminCCSSourcing))

			r.HandleFunc("/agreements/:framework/next", s.handleGetNextAgreement, http.MethodGet)
			r.HandleFunc("/suppliers/agreements/:agreementID/on-hold", s.handlePostAgreementOnHold, http.MethodPost)
			r.HandleFunc("/suppliers/agreements/:agreementID/approve", s.handlePostAgreementApprove, http.MethodPost)

			r.HandleFunc("/suppliers/:supplierID/countersigned-agreements/:framework", s.handleGetCountersignedAgreement, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/countersigned-agreements/:framework", s.handlePostCountersignedAgreement, http.MethodPost)
			r.HandleFunc("/suppliers/:supplierID/countersigned-agreements-remove/:framework", s.handleGetRemoveCountersignedAgreement, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/countersigned-agreements-remove/:framework", s.handlePostRemoveCountersignedAgreement, http.MethodPost)

			r.HandleFunc("/suppliers/:supplierID/edit/declarations/:framework", s.handleGetDeclaration, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/edit/declarations/:framework/:section", s.handleGetDeclarationSection, http.MethodGet)
			r.HandleFunc("/suppliers/:supplierID/edit/declarations/:framework/:section", s.handlePostDeclarationSection, http.MethodPost)
		})
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("Monday 2 January 2006 15:04")
		},
		"documentName": documents.DocumentName,
		"flashText":    flashText,
		"flashClass":   flashClass,
		"fieldError":   fieldError,
		"listItems": func(value any) []string {
			items, _ := value.([]any)
			out := make([]string, 0, len(items))
			for _, item := range items {
				out = append(out, fmt.Sprint(item))
			}
			return out
		},
		"answer": func(q declarations.Question, d types.Declaration) string {
			return q.Display(d[q.ID])
		},
		"value": func(q declarations.Question, d types.Declaration) any {
			return d[q.ID]
		},
		"selected": declarations.Selected,
		"hasRole": func(nav types.NavbarData, roles ...string) bool {
			for _, role := range roles {
				if string(nav.Role) == role {
					return true
				}
			}
			return false
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
