// Package api — HTTP-клиент оболочки к API Accountable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/billing"
	"github.com/magabrotheeeer/accountable/internal/session"
	"github.com/magabrotheeeer/accountable/internal/shell/store"
)

// APIKeyHeader — заголовок с публичным ключом API.
const APIKeyHeader = "apikey"

// DiscoveryTimeout ограничивает автонастройку по адресу сервера.
const DiscoveryTimeout = 5 * time.Second

// ErrUnexpectedStatus — сервер ответил кодом, который клиент не ожидает.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client вызывает API Accountable.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var (
	_ session.ProfileSource = (*Client)(nil)
	_ session.AdminVerifier = (*Client)(nil)
)

// NewClient создаёт клиента для сервера baseURL с ключом apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope — обёртка ответов /api/v1.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

type adminRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Action   string `json:"action"`
	TaskID   string `json:"taskId,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type adminError struct {
	Error string `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// call выполняет запрос к /api/v1 и раскладывает поле data в out.
func (c *Client) call(ctx context.Context, method, path, token string, body, out any) error {
	req, err := c.newRequest(ctx, method, "/api/v1"+path, token, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return session.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", models.ErrValidation, env.Error)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, resp.Status, env.Error)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// Profile читает профиль владельца токена. Нет профиля — models.ErrNotFound.
func (c *Client) Profile(ctx context.Context, token string) (models.Profile, error) {
	const op = "api.Profile"
	var p models.Profile
	if err := c.call(ctx, http.MethodGet, "/profile", token, nil, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Tasks возвращает задачи владельца токена.
func (c *Client) Tasks(ctx context.Context, token string) ([]models.Task, error) {
	const op = "api.Tasks"
	var tasks []models.Task
	if err := c.call(ctx, http.MethodGet, "/tasks", token, nil, &tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// CreateTask создаёт задачу.
func (c *Client) CreateTask(ctx context.Context, token string, t models.DummyTask) (models.Task, error) {
	const op = "api.CreateTask"
	var task models.Task
	if err := c.call(ctx, http.MethodPost, "/tasks", token, t, &task); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// Subscribe оформляет тариф.
func (c *Client) Subscribe(ctx context.Context, token string, tier models.Tier) (billing.Receipt, error) {
	const op = "api.Subscribe"
	var r billing.Receipt
	body := map[string]models.Tier{"tier": tier}
	if err := c.call(ctx, http.MethodPost, "/billing/subscribe", token, body, &r); err != nil {
		return billing.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// TopUp докупает звонки.
func (c *Client) TopUp(ctx context.Context, token string, calls int) (billing.Receipt, error) {
	const op = "api.TopUp"
	var r billing.Receipt
	body := map[string]int{"calls": calls}
	if err := c.call(ctx, http.MethodPost, "/billing/topup", token, body, &r); err != nil {
		return billing.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// Blog возвращает анонсы статей.
func (c *Client) Blog(ctx context.Context) ([]models.BlogPost, error) {
	const op = "api.Blog"
	var posts []models.BlogPost
	if err := c.call(ctx, http.MethodGet, "/blog", "", nil, &posts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// BlogPost возвращает статью с HTML.
func (c *Client) BlogPost(ctx context.Context, id int) (models.BlogPost, error) {
	const op = "api.BlogPost"
	var p models.BlogPost
	if err := c.call(ctx, http.MethodGet, "/blog/"+strconv.Itoa(id), "", nil, &p); err != nil {
		return models.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// admin вызывает admin RPC. Его ответы не обёрнуты в envelope.
func (c *Client) admin(ctx context.Context, a identity.AdminSession, req adminRequest, out any) error {
	req.Username, req.Password = a.Username, a.Password
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/functions/v1/get-admin-stats", a.Token, req)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return session.ErrUnauthorized
		}
		var body adminError
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("%w: %s (undecodable body: %v)", ErrUnexpectedStatus, resp.Status, err)
		}
		return fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, resp.Status, body.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// VerifyAdmin проверяет пару логин/пароль запросом статистики.
func (c *Client) VerifyAdmin(ctx context.Context, username, password string) error {
	const op = "api.VerifyAdmin"
	a := identity.AdminSession{Username: username, Password: password}
	if err := c.admin(ctx, a, adminRequest{Action: "stats"}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AdminStats возвращает статистику админ-панели.
func (c *Client) AdminStats(ctx context.Context, a identity.AdminSession) (models.AdminStats, error) {
	const op = "api.AdminStats"
	var stats models.AdminStats
	if err := c.admin(ctx, a, adminRequest{Action: "stats"}, &stats); err != nil {
		return models.AdminStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// AdminTasks возвращает задачи всех пользователей для оператора.
func (c *Client) AdminTasks(ctx context.Context, a identity.AdminSession) ([]models.TaskOverview, error) {
	const op = "api.AdminTasks"
	var tasks []models.TaskOverview
	if err := c.admin(ctx, a, adminRequest{Action: "tasks"}, &tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// VerifyTask подтверждает выполнение задачи.
func (c *Client) VerifyTask(ctx context.Context, a identity.AdminSession, taskID, notes string) (models.Task, error) {
	const op = "api.VerifyTask"
	var task models.Task
	req := adminRequest{Action: "verify_task", TaskID: taskID, Notes: notes}
	if err := c.admin(ctx, a, req, &task); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

type publicConfig struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

// Discover запрашивает у сервера публичные реквизиты {url, key}.
// Если сервер не вернул адрес, используется baseURL.
func Discover(ctx context.Context, baseURL string) (store.BackendConfig, error) {
	const op = "api.Discover"
	ctx, cancel := context.WithTimeout(ctx, DiscoveryTimeout)
	defer cancel()

	baseURL = strings.TrimRight(baseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/functions/v1/get-public-config", nil)
	if err != nil {
		return store.BackendConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return store.BackendConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return store.BackendConfig{}, fmt.Errorf("%s: %w: %s", op, ErrUnexpectedStatus, resp.Status)
	}
	var pc publicConfig
	if err := json.NewDecoder(resp.Body).Decode(&pc); err != nil {
		return store.BackendConfig{}, fmt.Errorf("%s: %w", op, err)
	}
	if pc.AnonKey == "" {
		return store.BackendConfig{}, fmt.Errorf("%s: server returned no key", op)
	}
	cfg := store.BackendConfig{URL: pc.URL, Key: pc.AnonKey}
	if cfg.URL == "" {
		cfg.URL = baseURL
	}
	return cfg, nil
}
