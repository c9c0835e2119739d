package image

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysterie/creditgate/internal/module/ledger"
)

func setupImageRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/v1"))
	return router
}

func TestHandler_Generate(t *testing.T) {
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, nil, 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader("a cozy living room"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ImageURL []string `json:"imageUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.ImageURL, 4)
}

func TestHandler_Generate_AllBranchesFailStillOK(t *testing.T) {
	gen := &mockGenerator{errs: []error{assert.AnError, assert.AnError, assert.AnError, assert.AnError}}
	svc := NewService(gen, &mockPublisher{}, &mockAnalyzer{}, nil, 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader("prompt"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imageUrl":[]}`, w.Body.String())
}

func TestHandler_Analyze(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 1})
	analyzer := &mockAnalyzer{result: "Two doors, one window."}
	svc := NewService(&mockGenerator{}, &mockPublisher{}, analyzer, ledger.NewService(repo, nil, nil), 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis?email=a@b.com", strings.NewReader("aW1hZ2U="))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"analysis":"Two doors, one window."}`, w.Body.String())
}

func TestHandler_Analyze_MissingImage(t *testing.T) {
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, nil, 4, nil)
	router := setupImageRouter(svc)

	// The image check comes before the email check.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing 'image' in request body"}`, w.Body.String())
}

func TestHandler_Analyze_MissingEmail(t *testing.T) {
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, nil, 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis", strings.NewReader("aW1hZ2U="))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing email parameter"}`, w.Body.String())
}

func TestHandler_Analyze_UserNotFound(t *testing.T) {
	repo := newMockLedgerRepo()
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, ledger.NewService(repo, nil, nil), 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis?email=ghost@b.com", strings.NewReader("aW1hZ2U="))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User does not exist"}`, w.Body.String())
}

func TestHandler_Analyze_NoCredit(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 0})
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, ledger.NewService(repo, nil, nil), 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis?email=a@b.com", strings.NewReader("aW1hZ2U="))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"No image credits available"}`, w.Body.String())
}

func TestHandler_Analyze_VendorError(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 1})
	analyzer := &mockAnalyzer{err: assert.AnError}
	svc := NewService(&mockGenerator{}, &mockPublisher{}, analyzer, ledger.NewService(repo, nil, nil), 4, nil)
	router := setupImageRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/analysis?email=a@b.com", strings.NewReader("aW1hZ2U="))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
