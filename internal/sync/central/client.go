// Package central wraps the national registry's HTTP API. It is the only
// place that talks HTTP to the central node; adapters translate its typed
// outcomes into SyncResults.
package central

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hcen/internal/sync/models"
	id "hcen/pkg/domain"
)

// DefaultTimeout bounds every outbound call (connect plus body read). A call
// that exceeds it is a transient failure: the record stays pending.
const DefaultTimeout = 30 * time.Second

// StatusError carries the raw status and body of a non-200 central response
// so the adapter layer can classify it (duplicate vs. generic failure).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("central registry returned %d: %s", e.StatusCode, e.Body)
}

// CentralUser is the central registry's representation of a health user.
type CentralUser struct {
	Cedula       id.Cedula       `json:"cedula"`
	DocumentType id.DocumentType `json:"tipoDocumento"`
	FirstName    string          `json:"primerNombre"`
	FirstSurname string          `json:"primerApellido"`
	Email        string          `json:"email,omitempty"`
}

// Client is a thin HTTP client for the central registry endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a central registry client with the default timeout.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
}

// NewWithHTTPClient injects a custom http.Client; tests use it to force
// timeouts and transport failures.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// VerifyUserExists checks whether the central registry knows a cedula.
// Best effort: any communication failure or unexpected status yields false so
// a local registration attempt is allowed rather than blocked.
func (c *Client) VerifyUserExists(ctx context.Context, cedula id.Cedula) (bool, error) {
	url := fmt.Sprintf("%s/api/usuarios/verificar/%s", c.baseURL, cedula)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "central existence check unreachable, assuming not registered",
			"cedula", cedula,
			"error", err,
		)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "central existence check returned unexpected status, assuming not registered",
			"cedula", cedula,
			"status", resp.StatusCode,
		)
		return false, nil
	}

	var body struct {
		Exists bool `json:"existe"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WarnContext(ctx, "central existence check returned unparseable body, assuming not registered",
			"cedula", cedula,
			"error", err,
		)
		return false, nil
	}
	return body.Exists, nil
}

// RegisterUser pushes a user to the central registry. A 200 returns the
// registered entity; anything else returns a *StatusError (or a transport
// error) for the adapter to translate.
func (c *Client) RegisterUser(ctx context.Context, user models.UserSyncRequest) (*CentralUser, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal user sync request: %w", err)
	}

	url := c.baseURL + "/api/usuarios/registrar"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post user registration: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read register response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var registered CentralUser
	if err := json.Unmarshal(raw, &registered); err != nil || registered.Cedula.IsZero() {
		// A 200 that does not carry a user entity still carries the raw
		// text; the adapter may recognize an "already registered" message
		// in it.
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return &registered, nil
}

// GetUser fetches a central user by cedula. 404 yields (nil, nil): not found
// is an answer, not an error.
func (c *Client) GetUser(ctx context.Context, cedula id.Cedula) (*CentralUser, error) {
	url := fmt.Sprintf("%s/api/usuarios/%s", c.baseURL, cedula)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build get user request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get central user: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var user CentralUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("decode central user: %w", err)
		}
		return &user, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		raw, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
}

// UnlinkUserFromClinic removes the association between a user and a clinic.
// 200 reports the unlink happened, 404 reports there was nothing to unlink.
func (c *Client) UnlinkUserFromClinic(ctx context.Context, cedula id.Cedula, clinicRUT string) (bool, error) {
	url := fmt.Sprintf("%s/api/usuarios/%s/clinica/%s", c.baseURL, cedula, clinicRUT)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return false, fmt.Errorf("build unlink request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("unlink user from clinic: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		raw, _ := io.ReadAll(resp.Body)
		return false, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
}

// registerDocumentRequest is the wire form of the document registration call.
type registerDocumentRequest struct {
	Cedula     id.Cedula     `json:"cedula"`
	TenantID   id.TenantID   `json:"tenantId"`
	DocumentID id.DocumentID `json:"documentoId"`
}

// RegisterDocument registers a clinical document and returns the centrally
// assigned history id. 200 and 201 are both acceptance.
func (c *Client) RegisterDocument(ctx context.Context, cedula id.Cedula, tenantID id.TenantID, documentID id.DocumentID) (id.HistoryID, error) {
	payload, err := json.Marshal(registerDocumentRequest{
		Cedula:     cedula,
		TenantID:   tenantID,
		DocumentID: documentID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal document registration: %w", err)
	}

	url := c.baseURL + "/historia-clinica/documentos"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build document registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post document registration: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read document registration response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var body struct {
		HistoryID id.HistoryID `json:"historiaId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode document registration response: %w", err)
	}
	if body.HistoryID.IsZero() {
		return "", fmt.Errorf("document registration response missing history id")
	}
	return body.HistoryID, nil
}
