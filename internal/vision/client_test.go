package vision

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		resp, _ := json.Marshal(map[string]interface{}{
			"labels": []Label{
				{Label: "person", Confidence: 0.92, Page: 1},
			},
		})
		w.Write(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	labels, err := client.LabelDocument("resume.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, "person", labels[0].Label)
	assert.InDelta(t, 0.92, labels[0].Confidence, 1e-9)
}

func TestLabelDocument_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.LabelDocument("resume.pdf", strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vision service error: 500")
}

func TestLabelDocument_NotConfigured(t *testing.T) {
	client := NewClient("", time.Second)
	assert.False(t, client.Configured())

	_, err := client.LabelDocument("resume.pdf", strings.NewReader("data"))
	require.Error(t, err)

	var nilClient *Client
	assert.False(t, nilClient.Configured())
}
