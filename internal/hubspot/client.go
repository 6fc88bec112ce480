package hubspot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ContactProperties is the property set the CRM stores per contact. Field
// names match the remote property names, including the custom ones provisioned
// for the volunteer pipeline.
type ContactProperties struct {
	Email          string `json:"email"`
	FirstName      string `json:"firstname"`
	LastName       string `json:"lastname"`
	Phone          string `json:"phone"`
	Lifecycle      string `json:"lifecyclestage,omitempty"`
	PreferredRole  string `json:"preferred_volunteer_role"`
	Availability   string `json:"availability"`
	ReferralSource string `json:"how_did_you_hear_about_us"`
}

// BatchResult pairs a created contact id with the email it was created for,
// so callers can reconcile ids back onto their own records.
type BatchResult struct {
	ID    string
	Email string
}

var ErrNotConfigured = errors.New("hubspot access token not configured")

// Client wraps the HubSpot CRM v3 Contacts API. It does not retry; every
// failure is returned to the caller as an error.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type contactInput struct {
	Properties ContactProperties `json:"properties"`
}

type contactResponse struct {
	ID         string            `json:"id"`
	Properties ContactProperties `json:"properties"`
}

type batchCreateRequest struct {
	Inputs []contactInput `json:"inputs"`
}

type batchCreateResponse struct {
	Status  string            `json:"status"`
	Results []contactResponse `json:"results"`
}

// CreateContact creates a single contact and returns its id.
func (c *Client) CreateContact(props ContactProperties) (string, error) {
	if c.token == "" {
		return "", ErrNotConfigured
	}

	var resp contactResponse
	if err := c.do(http.MethodPost, "/crm/v3/objects/contacts", contactInput{Properties: props}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("hubspot returned no contact id")
	}
	return resp.ID, nil
}

// BatchCreateContacts creates contacts in one request. The batch must report
// COMPLETE for its results to be trusted; any other status is an error. The
// results carry the email of each created contact so partial acceptance can be
// reconciled; rows the remote side rejected are simply absent from the result
// set.
func (c *Client) BatchCreateContacts(props []ContactProperties) ([]BatchResult, error) {
	if c.token == "" {
		return nil, ErrNotConfigured
	}
	if len(props) == 0 {
		return nil, nil
	}

	req := batchCreateRequest{Inputs: make([]contactInput, len(props))}
	for i, p := range props {
		req.Inputs[i] = contactInput{Properties: p}
	}

	var resp batchCreateResponse
	if err := c.do(http.MethodPost, "/crm/v3/objects/contacts/batch/create", req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "COMPLETE" {
		return nil, fmt.Errorf("hubspot batch create finished with status %q", resp.Status)
	}

	results := make([]BatchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, BatchResult{ID: r.ID, Email: r.Properties.Email})
	}
	return results, nil
}

// UpdateContact pushes new property values onto an existing contact.
func (c *Client) UpdateContact(contactID string, props ContactProperties) error {
	if c.token == "" {
		return ErrNotConfigured
	}
	return c.do(http.MethodPatch, "/crm/v3/objects/contacts/"+contactID, contactInput{Properties: props}, nil)
}

// ArchiveContact archives (soft-deletes) a contact.
func (c *Client) ArchiveContact(contactID string) error {
	if c.token == "" {
		return ErrNotConfigured
	}
	return c.do(http.MethodDelete, "/crm/v3/objects/contacts/"+contactID, nil, nil)
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(b)
	}

	httpReq, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("hubspot request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("hubspot API error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
