package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"time"

	osimaging "github.com/otosight/otosight/internal/imaging"
)

// rawScoreFloor is the confidence floor requested from the weights server.
// It is near zero so the sidecar returns everything it saw and the local
// postprocess owns filtering and suppression; determinism then depends only
// on this process, not on sidecar configuration.
const rawScoreFloor = 0.001

// RemoteConfig configures a Remote engine.
type RemoteConfig struct {
	// URL is the base URL of the inference sidecar hosting the weights.
	URL string

	// Timeout bounds each inference round trip. Zero means 60s.
	Timeout time.Duration

	// Device is the compute device the sidecar reports running on,
	// surfaced verbatim through the info endpoint.
	Device string

	// ImgSize is the square inference resolution the model was exported
	// with.
	ImgSize int
}

// Remote adapts an inference sidecar speaking JSON over HTTP. The sidecar
// holds the trained weights; this adapter sends it the image and normalizes
// whatever comes back.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
}

// NewRemote connects to the inference sidecar and verifies it is serving.
// A sidecar that cannot be reached at startup is reported as an error so the
// caller can surface detector_loaded=false instead of failing requests one
// by one with no explanation.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("inference URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ImgSize == 0 {
		cfg.ImgSize = 640
	}
	if cfg.Device == "" {
		cfg.Device = "cpu"
	}

	r := &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}

	resp, err := r.client.Get(cfg.URL + "/health")
	if err != nil {
		return nil, fmt.Errorf("inference sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference sidecar unhealthy: status %d", resp.StatusCode)
	}

	return r, nil
}

// predictRequest is the sidecar wire request.
type predictRequest struct {
	Image     string  `json:"image"`
	ConfThres float64 `json:"conf_thres"`
}

// predictResponse is the sidecar wire response.
type predictResponse struct {
	Detections []RawCandidate `json:"detections"`
}

// Infer sends the image to the sidecar and normalizes the raw candidates it
// returns. The sidecar is asked for everything above a near-zero score; the
// caller's thresholds are applied locally by Postprocess.
func (r *Remote) Infer(ctx context.Context, img image.Image, confThres, iouThres float64) ([]Detection, error) {
	encoded, err := osimaging.EncodePNGBase64(img)
	if err != nil {
		return nil, fmt.Errorf("encode inference image: %w", err)
	}

	body, err := json.Marshal(predictRequest{
		Image:     encoded,
		ConfThres: rawScoreFloor,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status %d", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	bounds := img.Bounds()
	return Postprocess(result.Detections, confThres, iouThres, bounds.Dx(), bounds.Dy())
}

// Info reports the runtime metadata for the info endpoint.
func (r *Remote) Info() RuntimeInfo {
	return RuntimeInfo{Device: r.cfg.Device, ImgSize: r.cfg.ImgSize}
}

// Close releases idle connections to the sidecar.
func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
