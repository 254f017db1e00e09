package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helenopaiva/congresscal/internal/config"
)

const eventsJSON = `{
	"generated_at": "2026-05-01T06:00:00+00:00",
	"events": [
		{"id": "asa-2026", "series": "ASA", "type": "congress",
		 "start_date": "2026-10-01", "end_date": "2026-10-05"}
	]
}`

const stringsJSON = `{"type.congress": {"en": "Congress", "pt": "Congresso"}}`

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events.json":
			w.Write([]byte(eventsJSON))
		case "/strings.json":
			w.Write([]byte(stringsJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(config.SnapshotConfig{
		EventsURL:  srv.URL + "/events.json",
		StringsURL: srv.URL + "/strings.json",
		Timeout:    5 * time.Second,
	}, "en")

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Events.Events, 1)
	assert.Equal(t, "asa-2026", snap.Events.Events[0].ID)
	assert.Equal(t, "2026-05-01T06:00:00+00:00", snap.Events.GeneratedAt)
	assert.Equal(t, "Congresso", snap.Strings.Lookup("type.congress", "pt", ""))
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestFetchLocalFiles(t *testing.T) {
	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.json")
	stringsPath := filepath.Join(dir, "strings.json")
	require.NoError(t, os.WriteFile(eventsPath, []byte(eventsJSON), 0644))
	require.NoError(t, os.WriteFile(stringsPath, []byte(stringsJSON), 0644))

	client := NewClient(config.SnapshotConfig{
		EventsURL:  eventsPath,
		StringsURL: stringsPath,
		Timeout:    5 * time.Second,
	}, "en")

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Events.Events, 1)
}

func TestFetchFailsWhenEitherSourceFails(t *testing.T) {
	tests := []struct {
		name          string
		eventsStatus  int
		stringsStatus int
	}{
		{"events down", http.StatusInternalServerError, http.StatusOK},
		{"strings down", http.StatusOK, http.StatusNotFound},
		{"both down", http.StatusBadGateway, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/events.json":
					w.WriteHeader(tt.eventsStatus)
					if tt.eventsStatus == http.StatusOK {
						w.Write([]byte(eventsJSON))
					}
				case "/strings.json":
					w.WriteHeader(tt.stringsStatus)
					if tt.stringsStatus == http.StatusOK {
						w.Write([]byte(stringsJSON))
					}
				}
			}))
			defer srv.Close()

			client := NewClient(config.SnapshotConfig{
				EventsURL:  srv.URL + "/events.json",
				StringsURL: srv.URL + "/strings.json",
				Timeout:    5 * time.Second,
			}, "en")

			_, err := client.Fetch(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestFetchMalformedDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer srv.Close()

	client := NewClient(config.SnapshotConfig{
		EventsURL:  srv.URL + "/events.json",
		StringsURL: srv.URL + "/strings.json",
		Timeout:    5 * time.Second,
	}, "en")

	_, err := client.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
