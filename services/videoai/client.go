package videoai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/video"
)

type (
	// Client relays recordings to the video analysis HTTP backend.
	Client struct {
		url    string
		client *http.Client
		logger core.Logger
	}

	analyzeRequest struct {
		VideoPath string `json:"video_path"` // base64-encoded video
		Scenario  string `json:"scenario"`
		Duration  int    `json:"duration"`
	}
)

var _ video.Analyzer = (*Client)(nil) // interface compliance check

func NewClient(logger core.Logger, conf *core.Config) *Client {
	return &Client{
		url:    conf.VideoAnalysis.ServiceURL,
		client: &http.Client{Timeout: conf.VideoAnalysis.Timeout},
		logger: logger,
	}
}

func (c *Client) Analyze(ctx context.Context, videoData []byte, scenario string, duration int) (video.AnalysisResult, error) {
	payload, err := json.Marshal(analyzeRequest{
		VideoPath: base64.StdEncoding.EncodeToString(videoData),
		Scenario:  scenario,
		Duration:  duration,
	})
	if err != nil {
		return video.AnalysisResult{}, errors.Wrap(err, "encoding analysis request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return video.AnalysisResult{}, errors.Wrap(err, "building analysis request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("video analysis backend unreachable", err)
		return video.AnalysisResult{}, errors.Wrap(err, "calling analysis backend")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("video analysis backend rejected request", map[string]interface{}{"status": res.StatusCode})
		return video.AnalysisResult{}, errors.Errorf("analysis backend status %d", res.StatusCode)
	}

	var result video.AnalysisResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return video.AnalysisResult{}, errors.Wrap(err, "decoding analysis response")
	}
	return result, nil
}
