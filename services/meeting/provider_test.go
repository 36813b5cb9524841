package meeting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mentorly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() MeetingRequest {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	return MeetingRequest{
		HostRef:          "host-1",
		ParticipantEmail: "ada@example.com",
		Topic:            "Consulting",
		StartTime:        start,
		EndTime:          start.Add(time.Hour),
	}
}

func TestHTTPProviderCreatesMeeting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/host-1/meetings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body createMeetingBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 60, body.Duration)
		assert.Equal(t, "2025-03-03T09:00:00Z", body.StartTime)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 8812345, "join_url": "https://zoom.example/j/8812345", "start_url": "https://zoom.example/s/8812345"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "secret", 2*time.Second)
	info, err := p.CreateMeeting(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "8812345", info.MeetingID)
	assert.Equal(t, "https://zoom.example/j/8812345", info.JoinURL)
	assert.Equal(t, "https://zoom.example/s/8812345", info.HostURL)
}

func TestHTTPProviderMapsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "secret", time.Second).CreateMeeting(context.Background(), sampleRequest())
	var mpe *models.MeetingProviderError
	require.ErrorAs(t, err, &mpe)
	assert.Equal(t, http.StatusTooManyRequests, mpe.StatusCode)
	assert.Equal(t, models.CodeMeetingProvider, models.ErrorCode(err))
}

func TestHTTPProviderHonoursTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPProvider(srv.URL, "secret", 5*time.Second).CreateMeeting(ctx, sampleRequest())
	var mpe *models.MeetingProviderError
	require.ErrorAs(t, err, &mpe)
	assert.Zero(t, mpe.StatusCode)
}

func TestLocalProvider(t *testing.T) {
	info, err := (&LocalProvider{}).CreateMeeting(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, info.MeetingID)
	assert.Contains(t, info.JoinURL, info.MeetingID)
}
