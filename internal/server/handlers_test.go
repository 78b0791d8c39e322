package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/otosight/otosight/internal/engine"
	"github.com/otosight/otosight/internal/geometry"
	"github.com/otosight/otosight/internal/imaging"
)

// stubEngine honors the caller's confidence threshold over a canned
// candidate list, like the real postprocess does.
type stubEngine struct {
	detections []engine.Detection
}

func (s *stubEngine) Infer(ctx context.Context, img image.Image, confThres, iouThres float64) ([]engine.Detection, error) {
	var out []engine.Detection
	for _, d := range s.detections {
		if d.Confidence >= confThres {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubEngine) Info() engine.RuntimeInfo {
	return engine.RuntimeInfo{Device: "cpu", ImgSize: 640}
}

func (s *stubEngine) Close() error { return nil }

func encodedTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 30, A: 255})
		}
	}
	data, err := imaging.EncodePNGBase64(img)
	if err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return data
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsEngineState(t *testing.T) {
	rec := doJSON(t, New(nil), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: got %d", rec.Code)
	}
	var body struct {
		Status         string `json:"status"`
		DetectorLoaded bool   `json:"detector_loaded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.DetectorLoaded {
		t.Errorf("nil engine: got %+v", body)
	}

	rec = doJSON(t, New(&stubEngine{}), http.MethodGet, "/api/health", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.DetectorLoaded {
		t.Error("loaded engine must report detector_loaded=true")
	}
}

func TestInfo(t *testing.T) {
	rec := doJSON(t, New(&stubEngine{}), http.MethodGet, "/api/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("info status: got %d", rec.Code)
	}
	var body struct {
		Name           string   `json:"name"`
		Version        string   `json:"version"`
		Features       []string `json:"features"`
		DetectorLoaded bool     `json:"detector_loaded"`
		Classes        []string `json:"classes"`
		Device         string   `json:"device"`
		ImgSize        int      `json:"img_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Name != ServiceName || body.Version == "" {
		t.Errorf("identity: got %q %q", body.Name, body.Version)
	}
	if len(body.Classes) != 18 {
		t.Errorf("class vocabulary: got %d entries", len(body.Classes))
	}
	if body.Device != "cpu" || body.ImgSize != 640 {
		t.Errorf("runtime info: got %s/%d", body.Device, body.ImgSize)
	}
	if len(body.Features) == 0 {
		t.Error("features list must not be empty")
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	srv := New(&stubEngine{})
	img := encodedTestImage(t)

	bad := func(v float64) *float64 { return &v }
	frame := func(s string) *string { return &s }

	cases := []struct {
		name string
		body interface{}
		want string
	}{
		{"missing image", map[string]interface{}{"conf_thres": 0.5}, "image"},
		{"bad base64", map[string]interface{}{"image": "!!!not-base64!!!"}, "image"},
		{"not an image", map[string]interface{}{"image": "aGVsbG8gd29ybGQ="}, "image"},
		{"conf out of range", analyzeRequest{Image: img, ConfThres: bad(1.5)}, "conf_thres"},
		{"negative iou", analyzeRequest{Image: img, IoUThres: bad(-0.1)}, "iou_thres"},
		{"unknown frame", analyzeRequest{Image: img, CoordinateType: frame("rotated")}, "coordinate_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/analyze", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(body.Error, tc.want) {
				t.Errorf("error %q does not name field %q", body.Error, tc.want)
			}
		})
	}
}

func TestAnalyzeRejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	New(&stubEngine{}).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: got %d, want 400", rec.Code)
	}
}

func TestAnalyzeWithoutEngine(t *testing.T) {
	rec := doJSON(t, New(nil), http.MethodPost, "/api/analyze",
		map[string]interface{}{"image": encodedTestImage(t)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(body.Error, "not loaded") {
		t.Errorf("error body: got %q", body.Error)
	}
}

func TestAnalyzeHighThresholdFiltersEverything(t *testing.T) {
	// Best candidate sits at 0.85; a 0.9 threshold is a clean empty result,
	// not a failure.
	srv := New(&stubEngine{detections: []engine.Detection{{
		Box:        geometry.Box{X1: 5, Y1: 5, X2: 20, Y2: 20},
		Confidence: 0.85,
		ClassID:    0,
		ClassName:  "eardrum_perforation",
	}}})

	conf := 0.9
	rec := doJSON(t, srv, http.MethodPost, "/api/analyze",
		analyzeRequest{Image: encodedTestImage(t), ConfThres: &conf})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Detections []json.RawMessage `json:"detections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Detections == nil {
		t.Error("detections must be an empty array, not null")
	}
	if len(body.Detections) != 0 {
		t.Errorf("got %d detections, want 0", len(body.Detections))
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	srv := New(&stubEngine{detections: []engine.Detection{{
		Box:        geometry.Box{X1: 5, Y1: 5, X2: 20, Y2: 20},
		Confidence: 0.85,
		ClassID:    0,
		ClassName:  "eardrum_perforation",
	}}})

	rec := doJSON(t, srv, http.MethodPost, "/api/analyze",
		map[string]interface{}{"image": encodedTestImage(t)})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Detections []struct {
			BBox       [4]float64 `json:"bbox"`
			Confidence float64    `json:"confidence"`
			ClassID    int        `json:"class_id"`
			ClassName  string     `json:"class_name"`
		} `json:"detections"`
		CoordinateType string `json:"coordinate_type"`
		Parameters     struct {
			ConfThres         float64 `json:"conf_thres"`
			IoUThres          float64 `json:"iou_thres"`
			IncludeCropCoords bool    `json:"include_crop_coords"`
		} `json:"parameters"`
		CropInfo *struct {
			Success bool `json:"success"`
		} `json:"crop_info"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(body.Detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(body.Detections))
	}
	d := body.Detections[0]
	if d.BBox != [4]float64{5, 5, 20, 20} {
		t.Errorf("bbox wire format: got %v", d.BBox)
	}
	if d.ClassName != "eardrum_perforation" || d.Confidence != 0.85 {
		t.Errorf("detection fields: got %+v", d)
	}
	if body.CoordinateType != "original" {
		t.Errorf("default coordinate type: got %s", body.CoordinateType)
	}
	if body.Parameters.ConfThres != 0.25 || body.Parameters.IoUThres != 0.45 {
		t.Errorf("echoed defaults: got %+v", body.Parameters)
	}
	if !body.Parameters.IncludeCropCoords {
		t.Error("include_crop_coords defaults to true")
	}
	if body.CropInfo == nil {
		t.Error("crop_info must be present by default")
	}
}

func TestAnalyzeOmitsCropInfoOnRequest(t *testing.T) {
	srv := New(&stubEngine{})
	off := false
	rec := doJSON(t, srv, http.MethodPost, "/api/analyze",
		analyzeRequest{Image: encodedTestImage(t), IncludeCropCoords: &off})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := body["crop_info"]; present {
		t.Error("crop_info must be omitted when include_crop_coords=false")
	}
}

func TestAnalyzeDataURLPrefix(t *testing.T) {
	srv := New(&stubEngine{})
	rec := doJSON(t, srv, http.MethodPost, "/api/analyze",
		map[string]interface{}{"image": "data:image/png;base64," + encodedTestImage(t)})
	if rec.Code != http.StatusOK {
		t.Errorf("data-URL prefixed image: got %d, want 200", rec.Code)
	}
}
