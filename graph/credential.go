package graph

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"
)

// tokenCredential presents an oauth2 token source as the credential used by the Graph request
// adapter. The requested scopes are ignored: the token source already carries its scopes.
type tokenCredential struct {
	source oauth2.TokenSource
}

func (c *tokenCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	token, err := c.source.Token()
	if err != nil {
		return azcore.AccessToken{}, fmt.Errorf("error getting token: %w", err)
	}

	return azcore.AccessToken{
		Token:     token.AccessToken,
		ExpiresOn: token.Expiry,
	}, nil
}
