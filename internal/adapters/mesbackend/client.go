package mesbackend

// Package mesbackend implements the business-backend client: the user
// credential-validation call and the MES-envelope command channel.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/mesworks/mes-auth/internal/domain/auth"
	"github.com/mesworks/mes-auth/internal/domain/mes"
	apperrors "github.com/mesworks/mes-auth/internal/errors"
	"github.com/mesworks/mes-auth/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Config holds configuration for the backend client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client // optional; a 30s-timeout client is built when nil

	// Envelope header identity for command calls.
	SenderID string
	ClientID string
	Location string
}

// Client talks to the MES business backend. The user-info call is
// authorized by a service bearer token; every other call is authorized
// by the session's access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	senderID   string
	clientID   string
	location   string
}

var _ ports.UserDirectory = (*Client)(nil)

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		senderID:   cfg.SenderID,
		clientID:   cfg.ClientID,
		location:   cfg.Location,
	}, nil
}

// Wire types for the user-info call.

type userInfoRequest struct {
	ActionType string `json:"actionType"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type userInfoResponse struct {
	UserEmail    string `json:"useremail"`
	AccessLevel  string `json:"accesslevel"`
	TechID       string `json:"techId"`
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Error        string `json:"error"`
}

// GetUserInfo validates the user-supplied credential against the
// backend, authorized by the service bearer token. A rejection (error
// body or non-2xx status) is an invalid_credentials failure carrying
// the backend's wording; a network failure is a transport failure.
func (c *Client) GetUserInfo(ctx context.Context, bearer string, creds domainauth.Credentials) (ports.ValidatedUser, error) {
	body, err := json.Marshal(userInfoRequest{
		ActionType: "getUserInfo",
		Email:      creds.Username,
		Password:   creds.Password,
	})
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode user info request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user", bytes.NewReader(body))
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build user info request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "reach user api")
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ports.ValidatedUser{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode user api response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || parsed.Error != "" || parsed.UserEmail == "" {
		msg := parsed.Error
		if msg == "" {
			msg = apperrors.MsgInvalidCredentials
		}
		return ports.ValidatedUser{}, apperrors.InvalidCredentials(msg)
	}

	return ports.ValidatedUser{
		UserEmail:   parsed.UserEmail,
		AccessLevel: parsed.AccessLevel,
		TechID:      parsed.TechID,
		Tokens: domainauth.TokenBundle{
			IdentityToken: parsed.Token,
			AccessToken:   parsed.AccessToken,
			RefreshToken:  parsed.RefreshToken,
		},
	}, nil
}

// ScanRequest filters the router scan. Field names are the backend's
// wire contract.
type ScanRequest struct {
	PartNumber     string `json:"PartNumber,omitempty"`
	CurrentProcess string `json:"CurrentProcess,omitempty"`
}

// RouterRecord is one router/work-order row from a scan response.
type RouterRecord struct {
	PartNumber     string `json:"PartNumber"`
	RouterID       string `json:"RouterId"`
	Version        string `json:"Version"`
	CurrentProcess string `json:"CurrentProcess"`
	Quantity       string `json:"Quantity"`
	Status         string `json:"Status"`
	Description    string `json:"Description"`
	UserEmail      string `json:"Useremail"`
	PriorityLevel  string `json:"PriorityLevel"`
}

// Scan queries router records over the MES-envelope command channel,
// authorized by the session's access token. The envelope header and
// the "IoT,Scan" control string are fixed wire contracts.
func (c *Client) Scan(ctx context.Context, accessToken string, scan ScanRequest) ([]RouterRecord, error) {
	msg := mes.NewMessage(mes.Control(mes.TransportIoT, "Scan"), scan)
	msg.Header.SenderID = c.senderID
	msg.Header.ClientID = c.clientID
	msg.Header.Location = c.location

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode scan message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/routers", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build scan request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "reach routers api")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.InvalidCredentials("session is not authorized for router data")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Internalf("routers api returned status %d", resp.StatusCode)
	}

	var reply mes.Message[[]RouterRecord]
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransport, "decode scan response")
	}
	return reply.Data, nil
}
