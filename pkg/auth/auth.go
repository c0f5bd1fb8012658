// Package auth produces Authorization header values and stores them as
// environment variables so saved requests can reference them, e.g.
// -H "Authorization: {{token_header}}".
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/blackcoderx/callisto/pkg/storage"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2 grant types.
const (
	FlowClientCredentials = "client_credentials"
	FlowPassword          = "password"
)

// HeaderSuffix is appended to a token variable name to form the name of the
// variable holding the full "Bearer <token>" header value.
const HeaderSuffix = "_header"

// BasicHeader encodes username:password as an HTTP Basic header value.
func BasicHeader(username, password string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}
	if password == "" {
		return "", errors.New("password is required")
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + encoded, nil
}

// DecodeBasic returns the credentials inside a Basic header value. The
// "Basic " prefix is optional.
func DecodeBasic(header string) (username, password string, err error) {
	encoded := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Basic "))
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", fmt.Errorf("invalid base64 encoding: %w", err)
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return "", "", errors.New("invalid Basic credentials: expected username:password")
	}
	return username, password, nil
}

// BearerHeader wraps token as a Bearer header value.
func BearerHeader(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is required")
	}
	return "Bearer " + token, nil
}

// OAuth2Params configures a token request.
type OAuth2Params struct {
	Flow         string // FlowClientCredentials or FlowPassword
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Username     string // password flow only
	Password     string // password flow only
}

// FetchToken runs the OAuth2 flow named by p.Flow against p.TokenURL.
func FetchToken(ctx context.Context, p OAuth2Params) (*oauth2.Token, error) {
	if p.TokenURL == "" {
		return nil, errors.New("token URL is required")
	}
	if p.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if p.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}

	switch p.Flow {
	case FlowClientCredentials:
		config := clientcredentials.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			TokenURL:     p.TokenURL,
			Scopes:       p.Scopes,
		}
		token, err := config.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("OAuth2 client_credentials flow failed: %w", err)
		}
		return token, nil

	case FlowPassword:
		if p.Username == "" || p.Password == "" {
			return nil, errors.New("username and password are required for password flow")
		}
		config := oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: p.TokenURL},
			Scopes:       p.Scopes,
		}
		token, err := config.PasswordCredentialsToken(ctx, p.Username, p.Password)
		if err != nil {
			return nil, fmt.Errorf("OAuth2 password flow failed: %w", err)
		}
		return token, nil

	default:
		return nil, fmt.Errorf("unknown flow '%s' (supported: %s, %s)", p.Flow, FlowClientCredentials, FlowPassword)
	}
}

// TokenVariables returns the variables saved for an access token: the raw
// token under name and the Bearer header under name+HeaderSuffix.
func TokenVariables(name string, token *oauth2.Token) []storage.Variable {
	return []storage.Variable{
		{Key: name, Value: token.AccessToken},
		{Key: name + HeaderSuffix, Value: "Bearer " + token.AccessToken},
	}
}

// SetVariables returns vars with each of updates applied: an existing key
// has its value replaced in place, a new key is appended. vars is not
// modified.
func SetVariables(vars []storage.Variable, updates ...storage.Variable) []storage.Variable {
	out := append([]storage.Variable{}, vars...)
	for _, u := range updates {
		replaced := false
		for i := range out {
			if out[i].Key == u.Key {
				out[i].Value = u.Value
				replaced = true
			}
		}
		if !replaced {
			out = append(out, u)
		}
	}
	return out
}
