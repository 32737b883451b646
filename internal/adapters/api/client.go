package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

// TokenSource yields the current access token, or "" for guest requests.
type TokenSource func() string

// Client talks to the simulation service over JSON/HTTP and converts every
// failure into a domain.RemoteError.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Token          TokenSource
}

var _ ports.GameAPI = (*Client)(nil)

func (c *Client) CreateSession(ctx context.Context, profile domain.Profile) (domain.GameStart, error) {
	body := onboardingRequest{
		PlayerName:      profile.PlayerName,
		Age:             profile.Age,
		City:            profile.City,
		EducationPath:   string(profile.EducationPath),
		RiskAttitude:    string(profile.RiskAttitude),
		MonthlyIncome:   profile.MonthlyIncome,
		MonthlyExpenses: profile.MonthlyExpenses,
		StartingSavings: profile.StartingSavings,
		StartingDebt:    profile.StartingDebt,
		Aspirations:     profile.Aspirations,
	}

	var payload onboardingResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/onboarding", body, &payload); err != nil {
		return domain.GameStart{}, err
	}

	return domain.GameStart{
		State: payload.GameState.toDomain(),
		Initial: domain.NarrativeTurn{
			Narrative: payload.InitialNarrative,
			Options:   optionsToDomain(payload.InitialOptions),
		},
	}, nil
}

func (c *Client) GetState(ctx context.Context, session domain.SessionID) (domain.PlayerState, error) {
	var payload playerStatePayload
	path := "/api/game/" + url.PathEscape(string(session))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return domain.PlayerState{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) ApplyDecision(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
	body := decisionRequest{
		SessionID:     string(session),
		ChosenOption:  choice.Label,
		OptionIndex:   choice.Index,
		OptionEffects: effectsToPayload(choice.Effects),
	}

	var payload decisionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/game/decision", body, &payload); err != nil {
		return domain.DecisionOutcome{}, err
	}
	return payload.toDomain(), nil
}

func (c *Client) NextQuestion(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
	var payload nextQuestionResponse
	path := "/api/game/" + url.PathEscape(string(session)) + "/next-question"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return domain.NextQuestion{}, err
	}

	return domain.NextQuestion{
		Turn: domain.NarrativeTurn{
			Narrative: payload.NextNarrative,
			Options:   optionsToDomain(payload.NextOptions),
		},
		WasPrecomputed: payload.WasPrecomputed,
	}, nil
}

func (c *Client) UpdateExpenses(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error) {
	body := expenseUpdateRequest{
		SessionID:       string(session),
		RemovedIDs:      update.RemovedIDs,
		StatAdjustments: effectsToPayload(update.Adjustments),
	}

	var payload expenseUpdateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/game/expenses", body, &payload); err != nil {
		return domain.PlayerState{}, err
	}
	return payload.UpdatedState.toDomain(), nil
}

func (c *Client) FinishGame(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error) {
	body := finishRequest{SessionID: string(session), Nickname: nickname}

	var payload finishResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/game/finish", body, &payload); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	return payload.LeaderboardEntry.toDomain(), nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	path := "/api/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var payload []leaderboardEntryPayload
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(payload))
	for _, entry := range payload {
		entries = append(entries, entry.toDomain())
	}
	return entries, nil
}

func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var payload healthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &payload); err != nil {
		return domain.Health{}, err
	}
	return domain.Health{Status: payload.Status}, nil
}

// doJSON issues one request and decodes the response into out. Non-2xx
// statuses become RemoteError values keyed on the status class.
func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	endpoint, err := buildAPIURL(c.BaseURL, path)
	if err != nil {
		return &domain.RemoteError{Kind: domain.KindValidation, Detail: err.Error()}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &domain.RemoteError{Kind: domain.KindValidation, Detail: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return &domain.RemoteError{Kind: domain.KindValidation, Detail: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &domain.RemoteError{Kind: domain.KindTransport, Detail: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return &domain.RemoteError{Kind: domain.KindTransport, Detail: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func decodeAPIError(resp *http.Response) error {
	detail := fmt.Sprintf("status %d", resp.StatusCode)

	var payload apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	return &domain.RemoteError{
		Kind:   kindForStatus(resp.StatusCode),
		Detail: detail,
		Status: resp.StatusCode,
	}
}

func kindForStatus(status int) domain.ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindAuth
	case http.StatusNotFound:
		return domain.KindNotFound
	default:
		return domain.KindTransport
	}
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
