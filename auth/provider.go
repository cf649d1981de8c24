// Package auth acquires Microsoft Graph access tokens, either application-only (client
// credentials) or delegated (device code) with a persistent token cache.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const DefaultAuthority = "https://login.microsoftonline.com"

type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Authority    string
	Account      string
	CachePath    string
}

// Prompt presents a device code sign-in request to the user.
type Prompt func(*oauth2.DeviceAuthResponse)

// Provider hands out token sources for the configured strategies. Delegated acquisitions
// are collapsed so that concurrent callers share a single sign-in.
type Provider struct {
	config Config
	cache  *Cache
	client *http.Client
	prompt Prompt
	log    logrus.FieldLogger
	group  singleflight.Group
}

type Option func(*Provider)

// WithHTTPClient sets the client used for token endpoint requests.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.client = client
	}
}

func WithPrompt(prompt Prompt) Option {
	return func(p *Provider) {
		if prompt != nil {
			p.prompt = prompt
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

func NewProvider(config Config, options ...Option) *Provider {
	if config.Authority == "" {
		config.Authority = DefaultAuthority
	}

	p := Provider{
		config: config,
		cache:  NewCache(config.CachePath),
		log:    logrus.StandardLogger(),
	}

	p.prompt = p.defaultPrompt

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Strategies returns the authorization strategies in the order they should be tried.
func (p *Provider) Strategies() []Strategy {
	if p.config.ClientSecret != "" {
		return []Strategy{Application, Delegated}
	}

	return []Strategy{Delegated}
}

// Cache returns the delegated token cache.
func (p *Provider) Cache() *Cache {
	return p.cache
}

// TokenSource returns a token source for the strategy. Application tokens are requested
// lazily on first use. Delegated tokens are taken from the cache (refreshed if necessary) or
// acquired interactively with a device code.
func (p *Provider) TokenSource(ctx context.Context, strategy Strategy, purpose Purpose) (oauth2.TokenSource, error) {
	if p.config.ClientID == "" || p.config.TenantID == "" {
		return nil, fmt.Errorf("%v: missing tenant or client ID", strategy)
	}

	switch strategy {
	case Application:
		if p.config.ClientSecret == "" {
			return nil, fmt.Errorf("%v: missing client secret", strategy)
		}

		return p.application(ctx), nil

	case Delegated:
		return p.delegated(ctx, purpose)

	default:
		return nil, fmt.Errorf("unsupported authorization strategy (%v)", strategy)
	}
}

// SignIn always runs the device code flow and caches the resulting token, returning the
// signed in account.
func (p *Provider) SignIn(ctx context.Context, purpose Purpose) (string, error) {
	if p.config.ClientID == "" || p.config.TenantID == "" {
		return "", fmt.Errorf("missing tenant or client ID")
	}

	scopes := Scopes(purpose)
	config := p.oauth2Config(scopes)

	account, _, err := p.deviceCode(p.context(ctx), config, scopes)

	return account, err
}

func (p *Provider) application(ctx context.Context) oauth2.TokenSource {
	config := clientcredentials.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		TokenURL:     p.endpoint("token"),
		Scopes:       []string{GraphDefaultScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return config.TokenSource(p.context(ctx))
}

func (p *Provider) delegated(ctx context.Context, purpose Purpose) (oauth2.TokenSource, error) {
	scopes := Scopes(purpose)
	config := p.oauth2Config(scopes)
	ctx = p.context(ctx)

	type acquired struct {
		account string
		token   *oauth2.Token
	}

	v, err, _ := p.group.Do(strings.Join(scopes, " "), func() (any, error) {
		account, token, err := p.acquire(ctx, config, scopes)
		if err != nil {
			return nil, err
		}

		return acquired{account, token}, nil
	})

	if err != nil {
		return nil, err
	}

	a := v.(acquired)

	return &persisting{
		source: config.TokenSource(ctx, a.token),
		last:   a.token.AccessToken,
		save: func(token *oauth2.Token) error {
			return p.cache.Store(a.account, scopes, token)
		},
		log: p.log.WithField("account", a.account),
	}, nil
}

func (p *Provider) acquire(ctx context.Context, config *oauth2.Config, scopes []string) (string, *oauth2.Token, error) {
	account, cached, ok, err := p.cache.Lookup(p.config.Account, scopes)
	if err != nil {
		p.log.Warnf("%v", err)
	}

	if ok {
		token, err := config.TokenSource(ctx, cached).Token()
		if err == nil {
			if token.AccessToken != cached.AccessToken {
				if err := p.cache.Store(account, scopes, token); err != nil {
					p.log.Warnf("%v", err)
				}
			}

			p.log.WithField("account", account).Debugf("using cached delegated token")

			return account, token, nil
		}

		p.log.WithField("account", account).Warnf("cached token could not be refreshed (%v)", err)
	}

	return p.deviceCode(ctx, config, scopes)
}

func (p *Provider) deviceCode(ctx context.Context, config *oauth2.Config, scopes []string) (string, *oauth2.Token, error) {
	response, err := config.DeviceAuth(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("device code request failed (%w)", err)
	}

	p.prompt(response)

	token, err := config.DeviceAccessToken(ctx, response)
	if err != nil {
		return "", nil, fmt.Errorf("device code sign-in failed (%w)", err)
	}

	account := accountOf(token)
	if account == "" {
		account = p.config.Account
	}

	if account == "" {
		account = "default"
	}

	if err := p.cache.Store(account, scopes, token); err != nil {
		p.log.Warnf("%v", err)
	}

	p.log.WithField("account", account).Infof("signed in")

	return account, token, nil
}

func (p *Provider) oauth2Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: p.config.ClientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: p.endpoint("devicecode"),
			TokenURL:      p.endpoint("token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func (p *Provider) endpoint(name string) string {
	return fmt.Sprintf("%v/%v/oauth2/v2.0/%v", strings.TrimSuffix(p.config.Authority, "/"), p.config.TenantID, name)
}

func (p *Provider) context(ctx context.Context) context.Context {
	if p.client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}

	return ctx
}

func (p *Provider) defaultPrompt(response *oauth2.DeviceAuthResponse) {
	p.log.WithFields(logrus.Fields{
		"url":     response.VerificationURI,
		"code":    response.UserCode,
		"expires": response.Expiry.Format(time.RFC3339),
	}).Infof("waiting for device code sign-in")

	fmt.Fprintf(os.Stderr, "\n   To sign in, open %v in a web browser and enter the code %v\n\n", response.VerificationURI, response.UserCode)
}

// accountOf returns the signed in user name from the ID token returned with the access token.
// The ID token is only used as a cache key, so its signature is not verified.
func accountOf(token *oauth2.Token) string {
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}

	for _, claim := range []string{"preferred_username", "upn", "email", "oid"} {
		if v, ok := claims[claim].(string); ok && v != "" {
			return v
		}
	}

	return ""
}

// persisting writes refreshed tokens back to the cache.
type persisting struct {
	sync.Mutex
	source oauth2.TokenSource
	last   string
	save   func(*oauth2.Token) error
	log    logrus.FieldLogger
}

func (s *persisting) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.Lock()
	defer s.Unlock()

	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.save(token); err != nil {
			s.log.Warnf("%v", err)
		}
	}

	return token, nil
}
