package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinestudio/pkg/rig"
)

type fakeOps struct {
	analyzeCalls atomic.Int32
	analyzeErr   error
	refineErr    error
}

func (f *fakeOps) Analyze(_ context.Context, imagePath string) (*rig.Analysis, error) {
	f.analyzeCalls.Add(1)
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return &rig.Analysis{
		Status:    rig.StatusSuccess,
		ImageType: "character",
		Anchors:   []rig.Anchor{{ID: "head", X: 0.5, Y: 0.2, Type: rig.Root}},
		Bones:     []rig.Bone{{ID: "neck", From: "head", To: "head"}},
	}, nil
}

func (f *fakeOps) Refine(_ context.Context, imagePath string, anchors []rig.Anchor) (*rig.Refinement, error) {
	if f.refineErr != nil {
		return nil, f.refineErr
	}
	out := make([]rig.CorrectedAnchor, len(anchors))
	for i, a := range anchors {
		out[i] = rig.CorrectedAnchor{ID: a.ID, X: a.X, Y: a.Y}
	}
	return &rig.Refinement{Status: rig.StatusSuccess, Anchors: out}, nil
}

func (f *fakeOps) Regenerate(_ context.Context, imagePath string, anchors []rig.Anchor, bones []rig.Bone) (*rig.AnimationSet, error) {
	return &rig.AnimationSet{Status: rig.StatusSuccess, Animations: []rig.Animation{{Name: "Sway"}}}, nil
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestDetectEndpoint(t *testing.T) {
	ops := &fakeOps{}
	s := NewServer(context.Background(), ops)

	rec := postJSON(t, s, "/api/detect", `{"image": "/tmp/cat.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got rig.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rig.StatusSuccess, got.Status)
	assert.Equal(t, "character", got.ImageType)
}

func TestDetectCachesPerImage(t *testing.T) {
	ops := &fakeOps{}
	s := NewServer(context.Background(), ops)

	for range 3 {
		rec := postJSON(t, s, "/api/detect", `{"image": "/tmp/cat.png"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int32(1), ops.analyzeCalls.Load())

	rec := postJSON(t, s, "/api/detect", `{"image": "/tmp/cat.png", "force": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), ops.analyzeCalls.Load(), "force bypasses the cache")
}

func TestDetectErrorPayload(t *testing.T) {
	ops := &fakeOps{analyzeErr: rig.ErrNoAnchors}
	s := NewServer(context.Background(), ops)

	rec := postJSON(t, s, "/api/detect", `{"image": "/tmp/cat.png"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var got rig.Failure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rig.StatusError, got.Status)
	assert.Equal(t, "AI did not detect any anchor points", got.Message)
}

func TestDetectRequiresImage(t *testing.T) {
	s := NewServer(context.Background(), &fakeOps{})
	rec := postJSON(t, s, "/api/detect", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefineEndpoint(t *testing.T) {
	s := NewServer(context.Background(), &fakeOps{})

	rec := postJSON(t, s, "/api/refine", `{"image": "/tmp/cat.png", "anchors": [{"id": "head", "x": 0.5, "y": 0.2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got rig.Refinement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Anchors, 1)
	assert.Equal(t, "head", got.Anchors[0].ID)
}

func TestRefineErrorPayload(t *testing.T) {
	s := NewServer(context.Background(), &fakeOps{refineErr: errors.New("No anchors provided")})

	rec := postJSON(t, s, "/api/refine", `{"image": "/tmp/cat.png", "anchors": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No anchors provided")
}

func TestRegenerateEndpoint(t *testing.T) {
	s := NewServer(context.Background(), &fakeOps{})

	rec := postJSON(t, s, "/api/regenerate", `{"image": "/tmp/cat.png", "anchors": [{"id": "head"}], "bones": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got rig.AnimationSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Animations, 1)
	assert.Equal(t, "Sway", got.Animations[0].Name)
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(context.Background(), &fakeOps{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
