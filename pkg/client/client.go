package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/findyjobs/findy/pkg/domain"
)

// DefaultBaseURL is the loopback address the Findy API listens on in development.
const DefaultBaseURL = "http://localhost:8081"

// TokenSource supplies the bearer token at request time.
type TokenSource interface {
	Token() string
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

// Client is the Findy API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	timeout    *time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A nil client keeps the
// default.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the per-request timeout. Zero disables it. It applies to
// the HTTP client chosen by WithHTTPClient regardless of option order, and
// never modifies the caller's client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = &d }
}

// WithTokenSource makes the client read the bearer token from ts on every
// request instead of using a fixed token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  staticToken(token),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// --- Auth & users ---

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by both login endpoints.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user,omitempty"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := validatePayload(creds); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	var resp LoginResponse
	if err := c.post(ctx, "/api/auth/login", creds, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// AdminLogin logs in through the user-service endpoint used by the admin console.
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	if err := validatePayload(creds); err != nil {
		return nil, fmt.Errorf("client.AdminLogin: %w", err)
	}
	var resp LoginResponse
	if err := c.post(ctx, "/api/users/login", creds, &resp); err != nil {
		return nil, fmt.Errorf("client.AdminLogin: %w", err)
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validatePayload(req); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	var u domain.User
	if err := c.post(ctx, "/api/users/register", req, &u); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/users/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// UpdateUser replaces the profile of user id.
func (c *Client) UpdateUser(ctx context.Context, id int64, u domain.User) (*domain.User, error) {
	var updated domain.User
	path := "/api/users/" + strconv.FormatInt(id, 10)
	if err := c.doRequest(ctx, http.MethodPut, path, u, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	return &updated, nil
}

// --- Jobs ---

// JobQuery holds the server-side search parameters for ListJobs.
type JobQuery struct {
	Search          string
	Location        string
	Type            string
	ExperienceLevel string
}

// CreateJobRequest is the payload for posting a job.
type CreateJobRequest struct {
	Title               string   `json:"title" validate:"required"`
	Company             string   `json:"company" validate:"required"`
	Location            string   `json:"location" validate:"required"`
	Type                string   `json:"type" validate:"required"`
	Salary              string   `json:"salary,omitempty"`
	Description         string   `json:"description" validate:"required"`
	Requirements        string   `json:"requirements,omitempty"`
	Benefits            string   `json:"benefits,omitempty"`
	Skills              []string `json:"skills,omitempty"`
	ExperienceLevel     string   `json:"experienceLevel,omitempty"`
	Remote              bool     `json:"remote,omitempty"`
	Featured            bool     `json:"featured,omitempty"`
	Urgent              bool     `json:"urgent,omitempty"`
	ApplicationEmail    string   `json:"applicationEmail,omitempty" validate:"omitempty,email"`
	ApplicationDeadline string   `json:"applicationDeadline,omitempty"`
	AcceptApplications  bool     `json:"acceptApplications"`
}

// ListJobs fetches jobs matching q. Empty fields are omitted from the query.
func (c *Client) ListJobs(ctx context.Context, q JobQuery) ([]domain.Job, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.ExperienceLevel != "" {
		params.Set("experienceLevel", q.ExperienceLevel)
	}
	path := "/api/jobs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var jobs []domain.Job
	if err := c.get(ctx, path, &jobs); err != nil {
		return nil, fmt.Errorf("client.ListJobs: %w", err)
	}
	return jobs, nil
}

// FeaturedJobs fetches the featured listings.
func (c *Client) FeaturedJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := c.get(ctx, "/api/jobs/featured", &jobs); err != nil {
		return nil, fmt.Errorf("client.FeaturedJobs: %w", err)
	}
	return jobs, nil
}

// GetJob fetches a single job by ID.
func (c *Client) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	var job domain.Job
	if err := c.get(ctx, "/api/jobs/"+strconv.FormatInt(id, 10), &job); err != nil {
		return nil, fmt.Errorf("client.GetJob: %w", err)
	}
	return &job, nil
}

// CreateJob posts a new job.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*domain.Job, error) {
	if err := validatePayload(req); err != nil {
		return nil, fmt.Errorf("client.CreateJob: %w", err)
	}
	var created domain.Job
	if err := c.post(ctx, "/api/jobs", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateJob: %w", err)
	}
	return &created, nil
}

// --- Saved jobs ---

// SavedJobs returns the job IDs saved by userID.
func (c *Client) SavedJobs(ctx context.Context, userID string) ([]int64, error) {
	var rows []domain.SavedJob
	if err := c.get(ctx, "/api/saved-jobs/"+url.PathEscape(userID), &rows); err != nil {
		return nil, fmt.Errorf("client.SavedJobs: %w", err)
	}
	return savedIDs(rows), nil
}

// SaveJob adds jobID to userID's saved jobs. The returned list is the
// server's full membership after the change, or nil when the server did not
// send one.
func (c *Client) SaveJob(ctx context.Context, userID string, jobID int64) ([]int64, error) {
	ids, err := c.mutateSaved(ctx, http.MethodPost, userID, jobID)
	if err != nil {
		return nil, fmt.Errorf("client.SaveJob: %w", err)
	}
	return ids, nil
}

// UnsaveJob removes jobID from userID's saved jobs. The return value has the
// same meaning as for SaveJob.
func (c *Client) UnsaveJob(ctx context.Context, userID string, jobID int64) ([]int64, error) {
	ids, err := c.mutateSaved(ctx, http.MethodDelete, userID, jobID)
	if err != nil {
		return nil, fmt.Errorf("client.UnsaveJob: %w", err)
	}
	return ids, nil
}

func (c *Client) mutateSaved(ctx context.Context, method, userID string, jobID int64) ([]int64, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("jobId", strconv.FormatInt(jobID, 10))

	var raw json.RawMessage
	if err := c.doRequest(ctx, method, "/api/saved-jobs?"+params.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	return decodeIDList(raw), nil
}

// JobsByIDs fetches full records for ids in one call. An empty ids slice
// returns no jobs without contacting the server.
func (c *Client) JobsByIDs(ctx context.Context, ids []int64) ([]domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	params := url.Values{}
	params.Set("ids", strings.Join(parts, ","))

	var jobs []domain.Job
	if err := c.get(ctx, "/api/saved-jobs/jobs/by-ids?"+params.Encode(), &jobs); err != nil {
		return nil, fmt.Errorf("client.JobsByIDs: %w", err)
	}
	return jobs, nil
}

// --- Applied jobs ---

// AppliedJobs returns the job IDs userID has applied to.
func (c *Client) AppliedJobs(ctx context.Context, userID string) ([]int64, error) {
	var rows []domain.AppliedJob
	if err := c.get(ctx, "/api/applied-jobs/"+url.PathEscape(userID), &rows); err != nil {
		return nil, fmt.Errorf("client.AppliedJobs: %w", err)
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.JobID)
	}
	return ids, nil
}

// ApplyJob records an application. Re-applying succeeds without creating a
// second record.
func (c *Client) ApplyJob(ctx context.Context, userID string, jobID int64) error {
	body := struct {
		UserID string `json:"userId"`
		JobID  int64  `json:"jobId"`
	}{userID, jobID}
	if err := c.post(ctx, "/api/applied-jobs", body, nil); err != nil {
		return fmt.Errorf("client.ApplyJob: %w", err)
	}
	return nil
}

// --- Candidates ---

// ListCandidates fetches the talent board.
func (c *Client) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	var cands []domain.Candidate
	if err := c.get(ctx, "/api/candidates", &cands); err != nil {
		return nil, fmt.Errorf("client.ListCandidates: %w", err)
	}
	return cands, nil
}

// CreateCandidate adds a profile to the talent board.
func (c *Client) CreateCandidate(ctx context.Context, cand domain.Candidate) (*domain.Candidate, error) {
	var created domain.Candidate
	if err := c.post(ctx, "/api/candidates", cand, &created); err != nil {
		return nil, fmt.Errorf("client.CreateCandidate: %w", err)
	}
	return &created, nil
}

// --- Admin ---

// AdminDashboard returns the dashboard aggregates.
func (c *Client) AdminDashboard(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.get(ctx, "/api/admin/dashboard", &stats); err != nil {
		return nil, fmt.Errorf("client.AdminDashboard: %w", err)
	}
	return &stats, nil
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/api/admin/users", &users); err != nil {
		return nil, fmt.Errorf("client.AdminUsers: %w", err)
	}
	return users, nil
}

// AdminJobs lists every job, including inactive ones.
func (c *Client) AdminJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := c.get(ctx, "/api/admin/jobs", &jobs); err != nil {
		return nil, fmt.Errorf("client.AdminJobs: %w", err)
	}
	return jobs, nil
}

func savedIDs(rows []domain.SavedJob) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.JobID)
	}
	return ids
}

// decodeIDList accepts either [1,2,3] or [{"jobId":1},...]. Anything else,
// including an empty body, yields nil.
func decodeIDList(raw json.RawMessage) []int64 {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err == nil {
		if ids == nil {
			return nil
		}
		return ids
	}
	var rows []domain.SavedJob
	if err := json.Unmarshal(raw, &rows); err == nil && rows != nil {
		return savedIDs(rows)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.logger.Debug("request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out != nil {
		// 2xx with no body is valid for mutations.
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
