// Package graph wraps the Microsoft Graph SDK for the drive item, site and workbook endpoints
// used to synchronise a worksheet.
package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoft/kiota-abstractions-go/serialization"
	kiotaauth "github.com/microsoft/kiota-authentication-azure-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client issues Graph requests authorised with the bearer token from the token source it was
// constructed with.
type Client struct {
	graph *msgraphsdk.GraphServiceClient
	log   logrus.FieldLogger
}

type settings struct {
	base    string
	http    *http.Client
	timeout time.Duration
	log     logrus.FieldLogger
}

type Option func(*settings)

// WithBaseURL overrides the Graph base URL e.g. for a national cloud or a test server.
func WithBaseURL(base string) Option {
	return func(s *settings) {
		if base != "" {
			s.base = strings.TrimSuffix(base, "/")
		}
	}
}

// WithHTTPClient sets the client used by the request adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.http = client
		}
	}
}

// WithTimeout sets the request timeout of the default client. Ignored if WithHTTPClient is used.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// NewClient creates a Graph service client whose requests carry tokens from the source. Tokens
// are only sent to the host of the base URL.
func NewClient(source oauth2.TokenSource, scopes []string, options ...Option) (*Client, error) {
	s := settings{
		base: DefaultBaseURL,
		log:  logrus.StandardLogger(),
	}

	for _, option := range options {
		option(&s)
	}

	hosts, err := validHosts(s.base)
	if err != nil {
		return nil, err
	}

	provider, err := kiotaauth.NewAzureIdentityAuthenticationProviderWithScopesAndValidHosts(&tokenCredential{source: source}, scopes, hosts)
	if err != nil {
		return nil, fmt.Errorf("error creating auth provider (%w)", err)
	}

	if s.http == nil {
		s.http = msgraphcore.GetDefaultClient(&msgraphcore.GraphClientOptions{})
		s.http.Timeout = s.timeout
	}

	adapter, err := msgraphsdk.NewGraphRequestAdapterWithParseNodeFactoryAndSerializationWriterFactoryAndHttpClient(provider, nil, nil, s.http)
	if err != nil {
		return nil, fmt.Errorf("error creating Graph adapter (%w)", err)
	}

	adapter.SetBaseUrl(s.base)

	return &Client{
		graph: msgraphsdk.NewGraphServiceClient(adapter),
		log:   s.log,
	}, nil
}

func validHosts(base string) ([]string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid Graph base URL '%v'", base)
	}

	hosts := []string{strings.ToLower(u.Hostname())}
	if u.Port() != "" {
		hosts = append(hosts, strings.ToLower(u.Host))
	}

	return hosts, nil
}

var errorMapping = abstractions.ErrorMappings{
	"XXX": odataerrors.CreateODataErrorFromDiscriminatorValue,
}

func (c *Client) debugf(op string, fields logrus.Fields) {
	c.log.WithFields(fields).Debugf("graph %v", op)
}

// raw sends a request built by an SDK request builder and returns the response body.
func (c *Client) raw(ctx context.Context, info *abstractions.RequestInformation) ([]byte, error) {
	reply, err := c.graph.GetAdapter().SendPrimitive(ctx, info, "[]byte", errorMapping)
	if err != nil {
		return nil, err
	}

	b, _ := reply.([]byte)

	return b, nil
}

// collect retrieves every item of a collection response, following @odata.nextLink.
func collect[T any](ctx context.Context, c *Client, response serialization.Parsable, factory serialization.ParsableFactory) ([]T, error) {
	iterator, err := msgraphcore.NewPageIterator[T](response, c.graph.GetAdapter(), factory)
	if err != nil {
		return nil, err
	}

	items := []T{}
	err = iterator.Iterate(ctx, func(item T) bool {
		items = append(items, item)
		return true
	})

	if err != nil {
		return nil, err
	}

	return items, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}

	return *v
}
