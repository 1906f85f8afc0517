package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pawhaven/pawhaven-tools/pawhaven"
)

type Client interface {
	ListPets(page, limit int, search, category string) (pawhaven.PetPage, error)
	FindPet(string) (pawhaven.Pet, error)
	SavePet(pawhaven.Pet) (pawhaven.Pet, error)
	SetPetAdopted(id string, adopted bool) error
	DeletePet(string) error
	ListAllPets() ([]pawhaven.Pet, error)
	ListPetsByOwner(string) ([]pawhaven.Pet, error)
	SubmitAdoptionRequest(pawhaven.AdoptionRequest) (pawhaven.AdoptionRequest, error)
	ListAdoptionRequests(string) ([]pawhaven.AdoptionRequest, error)
	ResolveAdoptionRequest(id, status string) error
	ListCampaigns(page, limit int) (pawhaven.CampaignPage, error)
	ListAllCampaigns() ([]pawhaven.Campaign, error)
	ListCampaignsByOwner(string) ([]pawhaven.Campaign, error)
	FindCampaign(string) (pawhaven.Campaign, error)
	FeaturedCampaigns(excludeID string) ([]pawhaven.Campaign, error)
	SaveCampaign(pawhaven.Campaign) (pawhaven.Campaign, error)
	SetCampaignPaused(id string, paused bool) error
	DeleteCampaign(string) error
	CreatePaymentIntent(amount float64) (pawhaven.PaymentIntent, error)
	SaveDonation(pawhaven.Donation) (pawhaven.Donation, error)
	ListDonationsByDonor(string) ([]pawhaven.Donation, error)
	ListDonationsByCampaign(string) ([]pawhaven.Donation, error)
	RequestRefund(donationID string) error
	DeleteDonation(string) error
	ApplyDonation(campaignID string, newTotal float64) error
	ListUsers(requesterEmail string) ([]pawhaven.User, error)
	PromoteUser(id string) error
	BanUser(id string) error
	Stats() (pawhaven.Stats, error)
}

// Session is the persisted sign-in the client attaches to every request
// and clears when the server rejects it.
type Session interface {
	Token() (string, error)
	Clear() error
}

// ErrSessionExpired is returned for every call after the server answered
// 401 or 403; the session has been cleared and the user must sign in again.
var ErrSessionExpired = errors.New("session expired, sign in again")

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error: %d (Raw Response: %s)", e.StatusCode, e.Body)
}

type pawhavenClient struct {
	baseURL       string
	client        *http.Client
	session       Session
	onAuthFailure func()

	mu      sync.Mutex
	expired bool
}

// NewPawHavenClient builds a client against PAWHAVEN_API_URL. onAuthFailure
// fires exactly once, the first time the server answers 401 or 403, after
// the persisted session has been cleared.
func NewPawHavenClient(session Session, onAuthFailure func()) (Client, error) {
	baseURL := os.Getenv("PAWHAVEN_API_URL")

	if baseURL == "" {
		return nil, errors.New("missing Paw Haven API URL")
	}

	return &pawhavenClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{},
		session:       session,
		onAuthFailure: onAuthFailure,
	}, nil
}

// expire clears the session and notifies exactly once, however many
// in-flight requests hit the auth failure.
func (c *pawhavenClient) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expired {
		return
	}
	c.expired = true

	if c.session != nil {
		if err := c.session.Clear(); err != nil {
			fmt.Println("failed to clear session:", err)
		}
	}

	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

func (c *pawhavenClient) isExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *pawhavenClient) makeRequest(method, endpoint string, body, out any) error {
	if c.isExpired() {
		return ErrSessionExpired
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.session != nil {
		token, err := c.session.Token()
		if err != nil {
			return fmt.Errorf("failed to read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	requestLine := fmt.Sprintf("%s %s %s", req.Method, req.URL.RequestURI(), req.Proto)

	fmt.Println("Issuing request", requestLine)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.expire()
		return ErrSessionExpired
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func (c *pawhavenClient) ListPets(page, limit int, search, category string) (pawhaven.PetPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	if search != "" {
		params.Set("search", search)
	}
	if category != "" {
		params.Set("category", category)
	}

	var petPage pawhaven.PetPage
	if err := c.makeRequest(http.MethodGet, "/pets?"+params.Encode(), nil, &petPage); err != nil {
		return pawhaven.PetPage{}, err
	}

	return petPage, nil
}

func (c *pawhavenClient) FindPet(id string) (pawhaven.Pet, error) {
	endpoint := fmt.Sprintf("/pets/%s", url.PathEscape(id))

	var pet pawhaven.Pet
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &pet); err != nil {
		return pawhaven.Pet{}, err
	}

	return pet, nil
}

func (c *pawhavenClient) SavePet(pet pawhaven.Pet) (pawhaven.Pet, error) {
	method := http.MethodPost
	endpoint := "/add-pet"

	if pet.ID != "" {
		method = http.MethodPut
		endpoint = fmt.Sprintf("/update-pet/%s", url.PathEscape(pet.ID))
	}

	var savedPet pawhaven.Pet
	if err := c.makeRequest(method, endpoint, pet, &savedPet); err != nil {
		return pawhaven.Pet{}, err
	}

	return savedPet, nil
}

func (c *pawhavenClient) SetPetAdopted(id string, adopted bool) error {
	endpoint := fmt.Sprintf("/pet/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodPatch, endpoint, map[string]bool{"status": adopted}, nil)
}

func (c *pawhavenClient) DeletePet(id string) error {
	endpoint := fmt.Sprintf("/pet/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodDelete, endpoint, nil, nil)
}

func (c *pawhavenClient) ListAllPets() ([]pawhaven.Pet, error) {
	var pets []pawhaven.Pet
	if err := c.makeRequest(http.MethodGet, "/all-pets", nil, &pets); err != nil {
		return nil, err
	}

	return pets, nil
}

func (c *pawhavenClient) ListPetsByOwner(email string) ([]pawhaven.Pet, error) {
	endpoint := fmt.Sprintf("/all-pets/%s", url.PathEscape(email))

	var pets []pawhaven.Pet
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &pets); err != nil {
		return nil, err
	}

	return pets, nil
}

func (c *pawhavenClient) SubmitAdoptionRequest(request pawhaven.AdoptionRequest) (pawhaven.AdoptionRequest, error) {
	request.Status = pawhaven.AdoptionPending

	var saved pawhaven.AdoptionRequest
	if err := c.makeRequest(http.MethodPost, "/adopted-pet", request, &saved); err != nil {
		return pawhaven.AdoptionRequest{}, err
	}

	return saved, nil
}

func (c *pawhavenClient) ListAdoptionRequests(email string) ([]pawhaven.AdoptionRequest, error) {
	endpoint := fmt.Sprintf("/adopted-pet/%s", url.PathEscape(email))

	var requests []pawhaven.AdoptionRequest
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &requests); err != nil {
		return nil, err
	}

	return requests, nil
}

func (c *pawhavenClient) ResolveAdoptionRequest(id, status string) error {
	endpoint := fmt.Sprintf("/adopted-pet/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodPatch, endpoint, map[string]string{"status": status}, nil)
}

func (c *pawhavenClient) ListCampaigns(page, limit int) (pawhaven.CampaignPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var campaignPage pawhaven.CampaignPage
	if err := c.makeRequest(http.MethodGet, "/allCampaigns?"+params.Encode(), nil, &campaignPage); err != nil {
		return pawhaven.CampaignPage{}, err
	}

	return campaignPage, nil
}

func (c *pawhavenClient) ListAllCampaigns() ([]pawhaven.Campaign, error) {
	var campaigns []pawhaven.Campaign
	if err := c.makeRequest(http.MethodGet, "/all-campaigns", nil, &campaigns); err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (c *pawhavenClient) ListCampaignsByOwner(email string) ([]pawhaven.Campaign, error) {
	endpoint := fmt.Sprintf("/all-campaigns/%s", url.PathEscape(email))

	var campaigns []pawhaven.Campaign
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &campaigns); err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (c *pawhavenClient) FindCampaign(id string) (pawhaven.Campaign, error) {
	endpoint := fmt.Sprintf("/donation-campaigns/%s", url.PathEscape(id))

	var campaign pawhaven.Campaign
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &campaign); err != nil {
		return pawhaven.Campaign{}, err
	}

	return campaign, nil
}

func (c *pawhavenClient) FeaturedCampaigns(excludeID string) ([]pawhaven.Campaign, error) {
	endpoint := "/limited-campaigns"

	if excludeID != "" {
		params := url.Values{}
		params.Set("id", excludeID)
		endpoint += "?" + params.Encode()
	}

	var campaigns []pawhaven.Campaign
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &campaigns); err != nil {
		return nil, err
	}

	return campaigns, nil
}

func (c *pawhavenClient) SaveCampaign(campaign pawhaven.Campaign) (pawhaven.Campaign, error) {
	method := http.MethodPost
	endpoint := "/donation-campaigns"

	if campaign.ID != "" {
		method = http.MethodPut
		endpoint = fmt.Sprintf("/update-campaign/%s", url.PathEscape(campaign.ID))
	}

	var savedCampaign pawhaven.Campaign
	if err := c.makeRequest(method, endpoint, campaign, &savedCampaign); err != nil {
		return pawhaven.Campaign{}, err
	}

	return savedCampaign, nil
}

func (c *pawhavenClient) SetCampaignPaused(id string, paused bool) error {
	endpoint := fmt.Sprintf("/donation-campaigns/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodPatch, endpoint, map[string]bool{"isPaused": paused}, nil)
}

func (c *pawhavenClient) DeleteCampaign(id string) error {
	endpoint := fmt.Sprintf("/donation-campaign/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodDelete, endpoint, nil, nil)
}

func (c *pawhavenClient) CreatePaymentIntent(amount float64) (pawhaven.PaymentIntent, error) {
	var intent pawhaven.PaymentIntent
	if err := c.makeRequest(http.MethodPost, "/create-payment-intent", map[string]float64{"amount": amount}, &intent); err != nil {
		return pawhaven.PaymentIntent{}, err
	}

	return intent, nil
}

func (c *pawhavenClient) SaveDonation(donation pawhaven.Donation) (pawhaven.Donation, error) {
	var savedDonation pawhaven.Donation
	if err := c.makeRequest(http.MethodPost, "/donations", donation, &savedDonation); err != nil {
		return pawhaven.Donation{}, err
	}

	return savedDonation, nil
}

func (c *pawhavenClient) ListDonationsByDonor(email string) ([]pawhaven.Donation, error) {
	return c.listDonations(email)
}

func (c *pawhavenClient) ListDonationsByCampaign(campaignID string) ([]pawhaven.Donation, error) {
	return c.listDonations(campaignID)
}

func (c *pawhavenClient) listDonations(key string) ([]pawhaven.Donation, error) {
	endpoint := fmt.Sprintf("/donations/%s", url.PathEscape(key))

	var donations []pawhaven.Donation
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &donations); err != nil {
		return nil, err
	}

	return donations, nil
}

func (c *pawhavenClient) RequestRefund(donationID string) error {
	endpoint := fmt.Sprintf("/donations/%s", url.PathEscape(donationID))
	return c.makeRequest(http.MethodPatch, endpoint, nil, nil)
}

func (c *pawhavenClient) DeleteDonation(id string) error {
	endpoint := fmt.Sprintf("/delete-donation/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodDelete, endpoint, nil, nil)
}

func (c *pawhavenClient) ApplyDonation(campaignID string, newTotal float64) error {
	endpoint := fmt.Sprintf("/donated-camp/%s", url.PathEscape(campaignID))
	return c.makeRequest(http.MethodPatch, endpoint, map[string]float64{"totalDonation": newTotal}, nil)
}

func (c *pawhavenClient) ListUsers(requesterEmail string) ([]pawhaven.User, error) {
	endpoint := fmt.Sprintf("/all-users/%s", url.PathEscape(requesterEmail))

	var users []pawhaven.User
	if err := c.makeRequest(http.MethodGet, endpoint, nil, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (c *pawhavenClient) PromoteUser(id string) error {
	endpoint := fmt.Sprintf("/user/role/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodPatch, endpoint, nil, nil)
}

func (c *pawhavenClient) BanUser(id string) error {
	endpoint := fmt.Sprintf("/user/ban/%s", url.PathEscape(id))
	return c.makeRequest(http.MethodPatch, endpoint, nil, nil)
}

func (c *pawhavenClient) Stats() (pawhaven.Stats, error) {
	var stats pawhaven.Stats
	if err := c.makeRequest(http.MethodGet, "/stats", nil, &stats); err != nil {
		return pawhaven.Stats{}, err
	}

	return stats, nil
}
