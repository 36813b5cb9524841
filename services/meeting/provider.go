package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mentorly/models"
	"mentorly/utils"

	"github.com/google/uuid"
)

// MeetingRequest describes the session a meeting is created for.
type MeetingRequest struct {
	HostRef          string
	ParticipantEmail string
	Topic            string
	StartTime        time.Time
	EndTime          time.Time
}

type Provider interface {
	CreateMeeting(ctx context.Context, req MeetingRequest) (*models.MeetingInfo, error)
}

// HTTPProvider talks to a Zoom-style REST API.
type HTTPProvider struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPProvider(baseURL, token string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

type createMeetingBody struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
	Invitee   string `json:"invitee,omitempty"`
}

type createMeetingResponse struct {
	ID       json.Number `json:"id"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
}

func (p *HTTPProvider) CreateMeeting(ctx context.Context, req MeetingRequest) (info *models.MeetingInfo, err error) {
	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		utils.ExternalCallDuration.WithLabelValues("meeting", "create", status).Observe(time.Since(started).Seconds())
	}()

	host := req.HostRef
	if host == "" {
		host = "me"
	}
	body, err := json.Marshal(createMeetingBody{
		Topic:     req.Topic,
		Type:      2,
		StartTime: req.StartTime.UTC().Format(time.RFC3339),
		Duration:  int(req.EndTime.Sub(req.StartTime).Minutes()),
		Timezone:  "UTC",
		Invitee:   req.ParticipantEmail,
	})
	if err != nil {
		return nil, &models.MeetingProviderError{Err: err}
	}

	endpoint := fmt.Sprintf("%s/users/%s/meetings", p.BaseURL, url.PathEscape(host))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &models.MeetingProviderError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.Token)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &models.MeetingProviderError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &models.MeetingProviderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("create meeting: %s", bytes.TrimSpace(snippet)),
		}
	}

	var out createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &models.MeetingProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.JoinURL == "" {
		return nil, &models.MeetingProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response has no join url")}
	}
	return &models.MeetingInfo{MeetingID: out.ID.String(), JoinURL: out.JoinURL, HostURL: out.StartURL}, nil
}

// LocalProvider hands out placeholder rooms. Used when no meeting API is configured.
type LocalProvider struct {
	BaseURL string
}

func (p *LocalProvider) CreateMeeting(_ context.Context, _ MeetingRequest) (*models.MeetingInfo, error) {
	base := p.BaseURL
	if base == "" {
		base = "https://meet.mentorly.local"
	}
	id := uuid.New().String()
	return &models.MeetingInfo{
		MeetingID: id,
		JoinURL:   base + "/j/" + id,
		HostURL:   base + "/s/" + id,
	}, nil
}
